// Package main is the tagebuchctl admin CLI. It talks to the
// application database directly and covers the chores that have no
// place in the web UI: creating users, inspecting data, seeding
// categories and pruning stale sessions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exguesich/tagebuch-app/internal/config"
	"github.com/exguesich/tagebuch-app/internal/repository"
)

var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "tagebuchctl",
	Short: "Administration CLI for the Tagebuch application",
	Long: `tagebuchctl manages the Tagebuch database from the command line.
It opens the same database the web server uses, selected via --database
or the DATABASE_URL environment variable.`,
	SilenceUsage: true,
}

// openRepository connects to the configured database. The --database
// flag wins over the environment.
func openRepository() (*repository.Repository, error) {
	url := databaseURL
	if url == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		url = cfg.DatabaseURL
	}
	return repository.New(url)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database", "", "database URL or SQLite path (defaults to DATABASE_URL)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
