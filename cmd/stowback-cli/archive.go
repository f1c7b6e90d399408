package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback/clientcli"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <path> [path...]",
	Short: "Archive server paths to the object store",
	Long: `Archive one or more paths on the server.

Each path is packed on the server and uploaded under a name derived from the
path, replacing any earlier archive of the same path.

Examples:
  stowback-cli archive /etc/nginx/nginx.conf
  stowback-cli archive /srv/photos/ /srv/docs/
  stowback-cli --json archive /srv/photos/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runArchive,
}

func runArchive(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Archive(cmd.Context(), args)
	if err != nil {
		return err
	}

	return reportJobs(results)
}

// reportJobs prints results and turns any failure into a non-zero exit.
func reportJobs(results []clientcli.JobResult) error {
	if err := getFormatter().FormatJobs(os.Stdout, results); err != nil {
		return err
	}
	if clientcli.HasFailures(results) {
		return &exitError{code: 1}
	}
	return nil
}
