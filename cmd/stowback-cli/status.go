package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the server is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		if err := client.Health(cmd.Context()); err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("%s is up\n", client.Endpoint())
		}
		return nil
	},
}
