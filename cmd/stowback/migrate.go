package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback/config"
	"github.com/sagarc03/stowback/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or check the job ledger schema",
	Long: `Create the job ledger table and its indexes if they are missing, then
validate the schema. The server does the same on start-up when the ledger is
enabled; this command lets the schema be prepared ahead of time.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var migrateCheckOnly bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateCheckOnly, "check", false, "only validate the schema, do not create anything")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := database.Open(ctx, cfg.Database.Config)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err = db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if !migrateCheckOnly {
		if err = db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("database migration complete", "type", cfg.Database.Type, "table", cfg.Database.Tables.Jobs)
	}

	if err = db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("schema is valid", "type", cfg.Database.Type, "table", cfg.Database.Tables.Jobs)
	return nil
}
