package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(env Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database schema migrations",
	}

	run := func(fn func(m Migrator, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) (err error) {
			if env.Migrator == nil {
				return fmt.Errorf("migrations are not available for this database driver")
			}
			m, err := env.Migrator(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := m.Close(); err == nil {
					err = cerr
				}
			}()
			return fn(m, cmd)
		}
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(m Migrator, cmd *cobra.Command) error {
			if err := m.Up(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		}),
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(m Migrator, cmd *cobra.Command) error {
			if err := m.Down(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back.")
			return nil
		}),
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: run(func(m Migrator, cmd *cobra.Command) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			suffix := ""
			if dirty {
				suffix = " (dirty)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d%s\n", v, suffix)
			return nil
		}),
	}

	cmd.AddCommand(up, down, version)
	return cmd
}
