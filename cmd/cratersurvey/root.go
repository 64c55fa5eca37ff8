package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cratersurvey",
		Short: "Crater detection and cross-source statistics for orbital imagery",
		Long: `cratersurvey detects roughly circular depressions in grayscale orbital
imagery tiles, estimates their geometric properties, and aggregates and
compares those estimates across imaging sources of different resolution.

Tiles are fetched and cached locally, processed in row sections through a
bounded worker pool, and detections can be exported to CSV, stored in a
SQLite catalog, or rendered as an overlay image.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewAggregateCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewMeshCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the logger for a command invocation.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
