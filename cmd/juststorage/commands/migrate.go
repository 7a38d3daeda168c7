package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/cli/output"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/cli/prompt"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog/postgres"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/spf13/cobra"
)

var migrateYes bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage catalog schema migrations",
	Long: `Manage the PostgreSQL catalog schema.

The serve command runs migrations automatically on startup; these
subcommands exist for pre-migrated deployments and operations work.

Examples:
  # Apply all pending migrations
  juststorage migrate up

  # Show the current schema version
  juststorage migrate status

  # Roll back one migration (destructive)
  juststorage migrate down`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.MustLoad(GetConfigFile())
		if err != nil {
			return err
		}
		if err := InitLogger(cfg); err != nil {
			return err
		}

		if err := postgres.MigrateUp(cmd.Context(), cfg.Catalog.URL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migrations applied.")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.MustLoad(GetConfigFile())
		if err != nil {
			return err
		}
		if err := InitLogger(cfg); err != nil {
			return err
		}

		ok, err := prompt.ConfirmWithForce("Rolling back a migration can drop data. Continue", migrateYes)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}

		if err := postgres.MigrateDown(cmd.Context(), cfg.Catalog.URL); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		fmt.Println("Rolled back one migration.")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.MustLoad(GetConfigFile())
		if err != nil {
			return err
		}
		if err := InitLogger(cfg); err != nil {
			return err
		}

		version, dirty, applied, err := postgres.MigrationVersion(cmd.Context(), cfg.Catalog.URL)
		if err != nil {
			return fmt.Errorf("failed to read migration state: %w", err)
		}

		current := "none"
		if applied {
			current = strconv.FormatUint(uint64(version), 10)
		}
		return output.SimpleTable(os.Stdout, [][2]string{
			{"Version", current},
			{"Dirty", strconv.FormatBool(dirty)},
		})
	},
}

func init() {
	migrateDownCmd.Flags().BoolVarP(&migrateYes, "yes", "y", false, "Skip the confirmation prompt")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}
