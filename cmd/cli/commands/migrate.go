package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Migrator == nil {
				fmt.Printf("\n✓ Storage %q has no schema to migrate\n\n", app.Cfg.Storage)
				return nil
			}

			if err := app.Migrator.RunMigrations(app.Ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Printf("\n✓ Migrations applied\n\n")
			return nil
		},
	}
}
