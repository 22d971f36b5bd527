package main

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	dumpConfig bool
	logger     *slog.Logger
	runID      string
)

var rootCmd = &cobra.Command{
	Use:     "ctrecon CONFIG",
	Short:   "Parallel-beam filtered back-projection CT reconstruction engine",
	Version: version,
	Long: `ctrecon streams raw, attenuation, or already-filtered projections
through bad-pixel correction, beam-power correction, ramp filtering, and
parallel back-projection into a reconstructed volume.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stdout, opts)
		runID = uuid.New().String()
		logger = slog.New(handler).With("run_id", runID)
		slog.SetDefault(logger)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconstruction(cmd.Context(), args[0], dumpConfig)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&dumpConfig, "config", false, "Resolve and print the configuration as JSON, then exit without reconstructing")
}
