package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/qrmenu/config"
	"github.com/shashiranjanraj/qrmenu/database/seeders"
	"github.com/shashiranjanraj/qrmenu/pkg/database"
	"github.com/shashiranjanraj/qrmenu/pkg/migration"
)

// withDB loads config, connects, runs fn and closes the pool.
func withDB(fn func() error) error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close(database.DB) //nolint:errcheck
	return fn()
}

// qrmenu migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func() error {
			out := cmd.OutOrStdout()
			n, err := migration.New(database.DB, out).Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d migration(s) applied\n", n)
			return nil
		})
	},
}

// qrmenu migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func() error {
			out := cmd.OutOrStdout()
			n, err := migration.New(database.DB, out).Rollback()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d migration(s) rolled back\n", n)
			return nil
		})
	},
}

// qrmenu migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func() error {
			_, err := migration.New(database.DB, cmd.OutOrStdout()).Status()
			return err
		})
	},
}

// qrmenu seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func() error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Running seeders…")
			return seeders.RunAll(cmd.Context(), database.DB, out)
		})
	},
}
