package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/config"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [id]",
	Short: "Show recorded jobs",
	Long: `List jobs recorded in the job ledger, newest first, or show a single job
by id. Requires database.enabled.

Examples:
  stowback jobs --prefix /srv --limit 20
  stowback jobs 0b8f4a5e-3c7d-4f58-9f2b-0e1b2c3d4e5f`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

var (
	jobsPrefix string
	jobsLimit  int
	jobsCursor string
)

func init() {
	jobsCmd.Flags().StringVar(&jobsPrefix, "prefix", "", "only jobs whose source path starts with this prefix")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 50, "maximum number of jobs to show")
	jobsCmd.Flags().StringVar(&jobsCursor, "cursor", "", "continue from a previous listing")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if !cfg.Database.Enabled {
		return fmt.Errorf("jobs: %w: set database.enabled", stowback.ErrJobsDisabled)
	}

	ctx := cmd.Context()

	service, cleanup, err := newService(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if len(args) == 1 {
		id, parseErr := uuid.Parse(args[0])
		if parseErr != nil {
			return fmt.Errorf("invalid job id %q: %w", args[0], parseErr)
		}

		job, getErr := service.GetJob(ctx, id)
		if getErr != nil {
			return getErr
		}
		return enc.Encode(job)
	}

	list, err := service.ListJobs(ctx, stowback.JobQuery{
		PathPrefix: jobsPrefix,
		Limit:      jobsLimit,
		Cursor:     jobsCursor,
	})
	if err != nil {
		return err
	}

	return enc.Encode(list)
}
