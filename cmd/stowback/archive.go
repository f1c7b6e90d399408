package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback/config"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <path> [path...]",
	Short: "Archive paths to the configured store",
	Long: `Archive one or more files or directories on this host, without going
through the HTTP server. Relative paths are resolved against the working
directory. A trailing slash marks the path as a directory.

Examples:
  stowback archive /etc/nginx/
  stowback archive --compress /var/lib/app /srv/www`,
	Args: cobra.MinimumNArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().Bool("compress", false, "gzip archives before upload (env: STOWBACK_ARCHIVE_COMPRESS)")
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

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

		job, jobErr := service.Archive(ctx, p)
		if jobErr != nil {
			failed++
		}
		_ = enc.Encode(job)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d archives failed", failed, len(args))
	}
	return nil
}

// absPath makes p absolute and keeps a trailing slash, which marks directory intent.
func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}

	if len(p) > 0 && os.IsPathSeparator(p[len(p)-1]) {
		abs += string(filepath.Separator)
	}
	return abs, nil
}
