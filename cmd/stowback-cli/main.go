package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback/clientcli"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	server      string
	timeout     time.Duration
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "stowback-cli",
	Version: version,
	Short:   "Client for a stowback backup server",
	Long: `stowback-cli drives a remote stowback server.

Paths are absolute paths on the server's filesystem. End a path with a
slash to mark it as a directory:

  stowback-cli archive /srv/photos/
  stowback-cli restore /srv/photos/ --replace
  stowback-cli jobs --prefix /srv/photos`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.stowback/config.yaml, env: STOWBACK_CLI_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: STOWBACK_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL (default: http://localhost:5708, env: STOWBACK_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (default: 30m, env: STOWBACK_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}

	_ = getFormatter().FormatError(os.Stderr, err)
	os.Exit(1)
}

// exitError is returned when we want to exit with a specific code
// but the failure has already been reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// getConfigPath resolves the profile file: flag, then environment, then default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile file, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	explicitFile := cfgFile != "" || clientcli.ConfigPathFromEnv() != ""
	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	if configPath := getConfigPath(); configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err != nil && (explicitFile || name != ""):
			return nil, err
		case err == nil:
			p, profileErr := file.GetProfile(name)
			if profileErr != nil && (name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		}
	}

	envConfig, err := clientcli.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	configs = append(configs, envConfig, &clientcli.Config{Endpoint: server, Timeout: timeout})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}
