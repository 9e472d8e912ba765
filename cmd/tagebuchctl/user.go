package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/exguesich/tagebuch-app/internal/service"
)

func init() {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var username, email, password string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long:  "Create a user account directly in the database, bypassing the registration form.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			authSvc := service.NewAuthService(repo)
			user, err := authSvc.Register(cmd.Context(), service.RegisterInput{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Printf("created user %d (%s)\n", user.ID, user.Username)
			return nil
		},
	}
	createCmd.Flags().StringVar(&username, "username", "", "username")
	createCmd.Flags().StringVar(&email, "email", "", "email address")
	createCmd.Flags().StringVar(&password, "password", "", "password")
	createCmd.MarkFlagRequired("username")
	createCmd.MarkFlagRequired("email")
	createCmd.MarkFlagRequired("password")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			users, err := repo.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(users))
			for _, u := range users {
				rows = append(rows, []interface{}{u.ID, u.Username, u.Email, u.CreatedAt.Format("2006-01-02 15:04")})
			}
			renderTable([]string{"ID", "Username", "Email", "Created"}, rows)
			return nil
		},
	}

	userCmd.AddCommand(createCmd, listCmd)
	rootCmd.AddCommand(userCmd)
}
