// Package cmd implements the mirrorsync command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/mirrorsync/pkg/logging"
)

// VersionInfo carries build metadata into the version output.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// NewRootCmd builds the root command and wires in the subcommands.
func NewRootCmd(info VersionInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "mirrorsync",
		Short: "Mirror tracker issues into a workspace",
		Long: `mirrorsync reconciles issues from a source-of-truth tracker into a
mirror workspace. Each run is one pass: fetch both sides, create items
for new issues and overwrite items for existing ones. The tracker always
wins.

Credentials are read from the TRACKER_TOKEN and WORKSPACE_API_KEY
environment variables, or from a .env file in the working directory.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			loadEnvFiles()
			viper.AutomaticEnv()
			configureLogging()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "mirrorsync.yaml", "path to the config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (auto, console, json)")

	root.AddCommand(newSyncCmd())
	root.AddCommand(newFieldsCmd())
	root.AddCommand(newVersionCmd(info))

	return root
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context, info VersionInfo) error {
	root := NewRootCmd(info)
	if err := root.ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("Command failed")
		return err
	}
	return nil
}

// loadEnvFiles loads .env files from the working directory when present.
// Missing files are fine; the environment may already carry everything.
func loadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			if err := godotenv.Load(name); err != nil {
				logging.Warn().Err(err).Str("file", name).Msg("Failed to load env file")
			}
		}
	}
}

func configureLogging() {
	cfg := logging.DefaultConfig()
	if logLevel != "" {
		cfg.Level = logLevel
	}
	if logFormat != "" {
		cfg.Format = logFormat
	}
	logging.Configure(cfg)
}
