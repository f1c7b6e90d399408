package main

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback/clientcli"
)

var (
	restoreReplace bool
	restoreYes     bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore <path> [path...]",
	Short: "Restore server paths from their archives",
	Long: `Restore one or more paths on the server from their stored archives.

Directories are merged by default: entries in the archive overwrite their
counterparts and everything else in the directory is left alone. With
--replace the directory is emptied first, which deletes anything the archive
does not contain. Replace asks for confirmation unless --yes is given.

Examples:
  stowback-cli restore /srv/photos/
  stowback-cli restore /srv/photos/ --replace --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreReplace, "replace", false, "empty directories before extracting")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "skip the replace confirmation")
}

func runRestore(cmd *cobra.Command, args []string) error {
	if restoreReplace && !restoreYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Replace deletes anything not in the archive under %s. Continue", strings.Join(args, ", ")),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			return handlePromptError(err)
		}
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Restore(cmd.Context(), args, clientcli.RestoreOptions{Replace: restoreReplace})
	if err != nil {
		return err
	}

	return reportJobs(results)
}
