package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "stowback",
	Short:   "Back up and restore filesystem paths to object storage",
	Long: `stowback archives files and directory trees into tar streams, optionally
gzip-compressed, and stores them in a filesystem, S3-compatible or Stowry
backend. The same archives can be restored in merge or replace mode.

Run "stowback serve" for the HTTP API, or use the archive and restore
subcommands to run a job directly on this host.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	flags.String("storage-backend", "", "storage backend: filesystem, s3, stowry (env: STOWBACK_STORAGE_BACKEND)")
	flags.String("storage-container", "", "bucket, directory or prefix holding archives (env: STOWBACK_STORAGE_CONTAINER)")
	flags.String("storage-path", "", "base directory of the filesystem backend (env: STOWBACK_STORAGE_PATH)")
	flags.String("db-type", "", "job ledger database type: sqlite, postgres (env: STOWBACK_DATABASE_TYPE)")
	flags.String("db-dsn", "", "job ledger connection string (env: STOWBACK_DATABASE_DSN)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env: STOWBACK_LOG_LEVEL)")
	flags.String("log-format", "", "log format: text, json (env: STOWBACK_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
