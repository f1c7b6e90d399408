package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/config"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <path> [path...]",
	Short: "Restore paths from the configured store",
	Long: `Restore one or more previously archived paths on this host.

Directories are merged by default: existing entries the archive does not
mention are kept. With --replace the directory is emptied first.

Examples:
  stowback restore /etc/nginx
  stowback restore --replace /srv/www`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRestore,
}

var restoreReplace bool

func init() {
	restoreCmd.Flags().BoolVar(&restoreReplace, "replace", false, "empty target directories before extracting")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	mode := stowback.ModeMerge
	if restoreReplace {
		mode = stowback.ModeReplace
	}

	service, cleanup, err := newService(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	enc := json.NewEncoder(os.Stdout)
	failed := 0

	for _, arg := range args {
		p, absErr := absPath(arg)
		if absErr != nil {
			return absErr
		}

		job, jobErr := service.Restore(ctx, p, mode)
		if jobErr != nil {
			failed++
		}
		_ = enc.Encode(job)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d restores failed", failed, len(args))
	}
	return nil
}
