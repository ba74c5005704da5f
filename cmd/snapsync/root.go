package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ning0612/Snapsync/internal/config"
	"github.com/Ning0612/Snapsync/internal/core/tree"
	"github.com/Ning0612/Snapsync/internal/logger"
	"github.com/Ning0612/Snapsync/internal/service"
	"github.com/Ning0612/Snapsync/internal/state"
)

var (
	flagSync     bool
	flagOutput   string
	flagState    string
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "snapsync <directory>",
	Short: "Dry-run directory sync planner",
	Long: `Snapsync captures a content-addressed snapshot of a reference directory
and later reports the create/copy/delete operations that would make a target
directory identical to it. No operation is ever executed.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.Flags().BoolVarP(&flagSync, "sync", "s", false,
		"diff the directory against the reference state instead of snapshotting it")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "",
		"file for the operation list (default: stdout)")
	rootCmd.Flags().StringVarP(&flagState, "reference-state", "r", "",
		"reference state file (default: 'state' in the current directory)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		"log level (debug|info|warn|error)")

	rootCmd.AddCommand(historyCmd)
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	if err := initLogger(cfg); err != nil {
		return err
	}
	defer logger.Shutdown()

	statePath := flagState
	if statePath == "" {
		statePath = cfg.StatePath
	}
	statePath = config.ExpandPath(statePath)

	svc := service.NewDefault(tree.Options{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
	})

	// Run history is best-effort; an unusable data dir never blocks planning
	if history, err := state.NewHistory(config.ExpandPath(cfg.DataDir)); err != nil {
		logger.Get().Warn("run history disabled", "error", err)
	} else {
		svc.SetHistory(history)
		defer history.Close()
	}

	directory := args[0]

	if !flagSync {
		return svc.Snapshot(cmd.Context(), directory, statePath)
	}

	out, closeOut, err := openOutput(flagOutput)
	if err != nil {
		return err
	}

	planErr := svc.Plan(cmd.Context(), directory, statePath, out)
	if err := closeOut(); err != nil && planErr == nil {
		return fmt.Errorf("close output: %w", err)
	}
	return planErr
}

// openOutput selects the operation list sink: a file when requested,
// stdout otherwise
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return f, f.Close, nil
}

func initLogger(cfg *config.Config) error {
	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}

	return logger.Init(logger.Config{
		Level: logger.ParseLevel(level),
		File: logger.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       config.ExpandPath(cfg.Log.File.Path),
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			MaxBackups: cfg.Log.File.MaxBackups,
			Compress:   cfg.Log.File.Compress,
		},
	})
}
