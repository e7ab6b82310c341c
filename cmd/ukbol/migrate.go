package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ukbol/internal/db"
)

func newMigrateCmd(defaultDatabaseURL string) *cobra.Command {
	var databaseURL string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the taxonomy database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("a database URL is required (--database-url or DATABASE_URL)")
			}
			if err := db.RunMigrations(databaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully")
			return nil
		},
	}
	migrateCmd.Flags().StringVar(&databaseURL, "database-url", defaultDatabaseURL, "Postgres connection string")

	return migrateCmd
}
