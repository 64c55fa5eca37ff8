package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"crater-survey/internal/catalog"
	"crater-survey/internal/config"
	"crater-survey/internal/stats"
)

// NewAggregateCmd creates the aggregate command.
func NewAggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate crater catalogs into per-source statistics",
		Long: `Aggregate merges the crater catalogs of every configured source,
normalizes diameters and depths to meters, and prints per-source
descriptive statistics and crater density.

Catalogs come from the CSV files configured per source and, with --db,
from a SQLite catalog written by analyze. A source whose catalogs are
missing or empty still reports zero-valued statistics.`,
		RunE: runAggregateCmd,
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file path")
	cmd.Flags().String("db", "", "Also read craters from a SQLite catalog")

	return cmd
}

func runAggregateCmd(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no sources configured")
	}

	dbPath, _ := cmd.Flags().GetString("db")
	inputs, err := buildSourceInputs(cmd.Context(), cfg, dbPath, logger)
	if err != nil {
		return err
	}

	results := stats.Aggregate(inputs)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printSourceStats(results[name])
	}
	return nil
}

// buildSourceInputs assembles aggregation inputs from configured CSV
// catalogs and, optionally, a SQLite catalog. A catalog that fails to load
// is logged and skipped so one bad file does not abort the run.
func buildSourceInputs(ctx context.Context, cfg *config.Config, dbPath string, logger *slog.Logger) (map[string]stats.SourceInput, error) {
	var db *catalog.DB
	if dbPath != "" {
		var err error
		db, err = catalog.OpenDB(dbPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
	}

	inputs := make(map[string]stats.SourceInput, len(cfg.Sources))
	for name, src := range cfg.Sources {
		unit, err := stats.ParseUnit(src.Unit)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}

		in := stats.SourceInput{
			Unit:           unit,
			CoveredAreaKm2: src.CoveredAreaKm2,
		}
		for _, path := range src.Catalogs {
			records, err := readCraterCSV(path)
			if err != nil {
				logger.Warn("skipping catalog", "source", name, "path", path, "error", err)
				continue
			}
			logger.Info("loaded catalog", "source", name, "path", path, "craters", len(records))
			in.Tiles = append(in.Tiles, catalog.Candidates(records))
		}
		if db != nil {
			records, err := db.CratersBySource(ctx, name)
			if err != nil {
				return nil, err
			}
			if len(records) > 0 {
				logger.Info("loaded catalog", "source", name, "db", dbPath, "craters", len(records))
				in.Tiles = append(in.Tiles, catalog.Candidates(records))
			}
		}
		inputs[name] = in
	}
	return inputs, nil
}

func readCraterCSV(path string) ([]catalog.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return catalog.ReadCraters(f)
}

func printSourceStats(s stats.SourceStatistics) {
	fmt.Printf("Source %s:\n", s.Source)
	fmt.Printf("  total craters:     %d\n", s.TotalCraters)
	fmt.Printf("  mean diameter:     %.2f m\n", s.Diameter.Mean)
	fmt.Printf("  median diameter:   %.2f m\n", s.Diameter.Median)
	fmt.Printf("  min diameter:      %.2f m\n", s.Diameter.Min)
	fmt.Printf("  max diameter:      %.2f m\n", s.Diameter.Max)
	if s.Depth.Count > 0 {
		fmt.Printf("  mean depth:        %.2f m\n", s.Depth.Mean)
		fmt.Printf("  median depth:      %.2f m\n", s.Depth.Median)
	}
	fmt.Printf("  density:           %.4f craters/km2\n", s.DensityPerKm2)
}
