// Package cli wires the ctapred pipeline commands: flag registration,
// configuration loading, logger and transcript setup, and subcommand mounting.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/ctapred/internal/config"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/internal/infrastructure/storage/parquet"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// configPath is the global --config flag value.
var configPath string

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctapred",
		Short: "ctapred: predict protein targets for compounds by fingerprint similarity",
		Long: "ctapred is a batch pipeline that predicts likely protein targets for\n" +
			"chemical compounds by k-nearest-neighbor similarity voting over a curated\n" +
			"compound-target activity reference dataset.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file path (YAML)")
	pf.String("data", "", "directory holding the persistent stores (default: Data)")
	pf.String("input", "", "directory holding QueryList<N>_smiles.csv files (default: input)")
	pf.String("output", "", "directory receiving predictions and transcripts (default: output)")
	pf.Int("workers", 0, "worker pool size; 0 means all available cores")
	pf.BoolP("verbose", "v", false, "report individual structure-processing failures")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (console, json)")

	cmd.AddCommand(
		NewGenerateCmd(),
		NewPredictCmd(),
		NewUpdateCmd(),
	)

	return cmd
}

// Execute is the entry point for the CLI application.  It installs signal
// handling so that SIGINT/SIGTERM cancel in-flight work through the context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// loadConfig merges the config file, CTAPRED_* environment variables, and the
// command's flag set into a validated Config.  cmd.Flags() includes inherited
// persistent flags, so global and subcommand flags bind in one pass.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configPath, cmd.Flags())
}

// setupRun builds the shared per-run dependencies: the structured logger
// (installed as the package default), the parquet store rooted at the data
// directory, and the append-mode run transcript in the output directory.
func setupRun(cfg *config.Config, command string) (logging.Logger, *parquet.Store, *logging.Transcript, error) {
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	logging.SetDefault(logger)

	store, err := parquet.NewStore(cfg.DataDir, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	transcript, err := logging.OpenTranscript(cfg.OutputDir, command, os.Args)
	if err != nil {
		return nil, nil, nil, err
	}

	return logger, store, transcript, nil
}
