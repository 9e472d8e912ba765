package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage diary categories",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			categories, err := repo.ListCategories(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(categories))
			for _, c := range categories {
				rows = append(rows, []interface{}{c.ID, c.Name, c.Description})
			}
			renderTable([]string{"ID", "Name", "Beschreibung"}, rows)
			return nil
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories",
		Long:  "Insert the default category set. Does nothing when categories already exist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.SeedCategories(); err != nil {
				return err
			}
			fmt.Println("categories seeded")
			return nil
		},
	}

	categoryCmd.AddCommand(listCmd, seedCmd)
	rootCmd.AddCommand(categoryCmd)

	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage login sessions",
	}

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.DeleteExpiredSessions(cmd.Context(), time.Now()); err != nil {
				return err
			}
			fmt.Println("expired sessions deleted")
			return nil
		},
	}

	sessionCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(sessionCmd)
}
