package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback/clientcli"
)

var (
	jobsPrefix string
	jobsLimit  int
	jobsAll    bool
	jobsCursor string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [id]",
	Short: "List recorded jobs or show one",
	Long: `List archive and restore jobs recorded by the server, newest first.

With an id, shows that job. Requires the server to run with a job ledger.

Examples:
  stowback-cli jobs
  stowback-cli jobs --prefix /srv/photos --limit 10
  stowback-cli jobs --all
  stowback-cli jobs 5f0c3c2e-8a53-4cb2-9d34-0c8f1c1e8b7a`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().StringVar(&jobsPrefix, "prefix", "", "filter by source path prefix")
	jobsCmd.Flags().IntVarP(&jobsLimit, "limit", "l", 50, "max results per page (max: 1000)")
	jobsCmd.Flags().BoolVar(&jobsAll, "all", false, "fetch all pages")
	jobsCmd.Flags().StringVar(&jobsCursor, "cursor", "", "pagination cursor")
}

func runJobs(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		job, err := client.GetJob(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return getFormatter().FormatJob(os.Stdout, job)
	}

	list, err := client.ListJobs(cmd.Context(), clientcli.ListJobsOptions{
		Prefix: jobsPrefix,
		Limit:  jobsLimit,
		Cursor: jobsCursor,
		All:    jobsAll,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatJobList(os.Stdout, list)
}
