package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"crater-survey/internal/catalog"
	"crater-survey/internal/stats"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <source-a> <source-b>",
		Short: "Compare aggregated statistics between two sources",
		Long: `Compare aggregates both sources' crater catalogs onto a common unit
system (meters) and computes, per configured metric, the difference
(B - A) and ratio (B / A). A zero-valued metric in source A reports an
infinite ratio rather than failing.

Example:
  cratersurvey compare themis hirise -c survey.yaml --csv comparison.csv`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file path")
	cmd.Flags().String("db", "", "Also read craters from a SQLite catalog")
	cmd.Flags().String("csv", "", "Write the comparison row to a CSV file")

	return cmd
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	nameA, nameB := args[0], args[1]
	for _, name := range []string{nameA, nameB} {
		if _, ok := cfg.Sources[name]; !ok {
			return fmt.Errorf("source %q not configured", name)
		}
	}

	dbPath, _ := cmd.Flags().GetString("db")
	inputs, err := buildSourceInputs(cmd.Context(), cfg, dbPath, logger)
	if err != nil {
		return err
	}

	results := stats.Aggregate(inputs)
	comparison := stats.Compare(results[nameA], results[nameB], cfg.Metrics)

	printSourceStats(comparison.A)
	printSourceStats(comparison.B)

	fmt.Printf("Comparison (%s - %s):\n", nameB, nameA)
	for _, name := range comparison.Order {
		c := comparison.Metrics[name]
		ratio := fmt.Sprintf("%.3f", c.Ratio)
		if math.IsInf(c.Ratio, 1) {
			ratio = "inf"
		}
		fmt.Printf("  %-22s diff %12.2f  ratio %s\n", name, c.Diff, ratio)
	}

	if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("failed to create CSV: %w", err)
		}
		defer f.Close()
		if err := catalog.WriteComparison(f, comparison); err != nil {
			return err
		}
		logger.Info("wrote comparison", "path", csvPath)
	}
	return nil
}
