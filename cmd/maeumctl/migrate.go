package main

import (
	"fmt"
	"strconv"

	"github.com/maeumssi/maeumssi/migrations"
	"github.com/maeumssi/maeumssi/pkg/migration"
	"github.com/spf13/cobra"
)

// migrateCmd manages the server's schema directly. It needs database access,
// not an API token.
func (c *cli) migrateCmd() *cobra.Command {
	var dbURL, dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect or change the database schema version",
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&dbURL, "database-url", c.cfg.Database.URL(), "postgres URL (DB_* settings)")
	flags.StringVar(&dir, "dir", c.cfg.Server.MigrationsPath, "migrations directory or source URL; empty uses the built-in set")

	open := func() (*migration.Migrator, error) {
		mc := migration.Config{Dir: dir, DatabaseURL: dbURL, Logger: c.log}
		if dir == "" {
			mc.Source = migrations.FS
		}
		return migration.Open(mc)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				from, to, err := m.Up()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d -> %d\n", from, to)
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				return m.Down()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if dirty {
					fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty)\n", v)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Mark a version as applied and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("version %q is not a number", args[0])
				}
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				return m.Force(version)
			},
		},
	)
	return cmd
}
