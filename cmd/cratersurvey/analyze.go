package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crater-survey/internal/analyze"
	"crater-survey/internal/catalog"
	"crater-survey/internal/config"
	"crater-survey/internal/pgm"
	"crater-survey/internal/render"
	"crater-survey/internal/tilestore"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [source]",
		Short: "Detect craters in one or more tiles",
		Long: `Analyze fetches (or opens) grayscale tiles, detects crater candidates in
row sections processed concurrently, and prints per-tile statistics.

Tiles come either from a local PGM file (--image) or from the tile server,
using the coordinates configured for the named source. A failed tile is
logged and skipped; the run continues with the remaining tiles.

Examples:
  # Analyze the configured tiles of the "themis" source
  cratersurvey analyze themis -c survey.yaml --csv themis_craters.csv

  # Analyze a single tile by coordinates
  cratersurvey analyze themis --lat -30 --lon 0

  # Analyze a local file and render an overlay
  cratersurvey analyze --image tile.pgm -r 0.1 --overlay detections.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file path")
	cmd.Flags().String("image", "", "Local PGM tile to analyze instead of fetching")
	cmd.Flags().Int("lat", 0, "Tile latitude band")
	cmd.Flags().Int("lon", 0, "Tile longitude")
	cmd.Flags().Float64P("resolution", "r", 0, "Ground resolution in length units per pixel")
	cmd.Flags().String("csv", "", "Write detected craters to a CSV file")
	cmd.Flags().String("db", "", "Store detected craters in a SQLite catalog")
	cmd.Flags().String("overlay", "", "Render a detection overlay PNG (single tile only)")
	cmd.Flags().Int("display-size", config.DefaultDisplaySize, "Overlay resolution in pixels")

	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sourceName := "themis"
	if len(args) == 1 {
		sourceName = args[0]
	}

	resolution, _ := cmd.Flags().GetFloat64("resolution")
	src, haveSource := cfg.Sources[sourceName]
	if resolution == 0 && haveSource {
		resolution = src.Resolution
	}
	if resolution == 0 {
		resolution = 0.1 // 100 m/px in km, the THEMIS mosaic scale
	}

	analyzer := analyze.New(cfg.AnalyzerOptions(resolution), logger)

	// Resolve the tiles to process.
	type tileRef struct {
		path     string
		lat, lon int
	}
	var tiles []tileRef

	if imagePath, _ := cmd.Flags().GetString("image"); imagePath != "" {
		lat, _ := cmd.Flags().GetInt("lat")
		lon, _ := cmd.Flags().GetInt("lon")
		tiles = append(tiles, tileRef{path: imagePath, lat: lat, lon: lon})
	} else {
		coords := src.Tiles
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
			lat, _ := cmd.Flags().GetInt("lat")
			lon, _ := cmd.Flags().GetInt("lon")
			coords = []config.TileCoord{{Lat: lat, Lon: lon}}
		}
		if len(coords) == 0 {
			return fmt.Errorf("no tiles to analyze: pass --image, --lat/--lon, or configure tiles for source %q", sourceName)
		}

		opts := []tilestore.Option{
			tilestore.WithCacheDir(cfg.DefaultCacheDir()),
			tilestore.WithLogger(logger),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, tilestore.WithBaseURL(cfg.BaseURL))
		}
		store := tilestore.New(opts...)

		for _, c := range coords {
			path, err := store.Fetch(cmd.Context(), c.Lat, c.Lon)
			if err != nil {
				logger.Warn("skipping tile: fetch failed", "lat", c.Lat, "lon", c.Lon, "error", err)
				continue
			}
			tiles = append(tiles, tileRef{path: path, lat: c.Lat, lon: c.Lon})
		}
	}

	var db *catalog.DB
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		db, err = catalog.OpenDB(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	var records []catalog.Record
	var lastResult *analyze.TileResult
	var lastPath string
	analyzed := 0
	for _, t := range tiles {
		result, err := analyzeTile(cmd.Context(), analyzer, t.path)
		if err != nil {
			logger.Warn("skipping tile: analysis failed", "path", t.path, "error", err)
			continue
		}
		analyzed++
		lastResult, lastPath = result, t.path

		printTileStats(t.lat, t.lon, result.Stats)
		for _, c := range result.Craters {
			records = append(records, catalog.Record{Candidate: c, Latitude: t.lat, Longitude: t.lon})
		}
		if db != nil {
			if err := db.SaveTile(cmd.Context(), sourceName, t.lat, t.lon, result.Craters); err != nil {
				return err
			}
		}
	}
	if analyzed == 0 {
		return fmt.Errorf("no tiles analyzed successfully")
	}

	if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
		if err := writeCraterCSV(csvPath, records); err != nil {
			return err
		}
		logger.Info("wrote crater catalog", "path", csvPath, "craters", len(records))
	}

	if overlayPath, _ := cmd.Flags().GetString("overlay"); overlayPath != "" {
		if analyzed != 1 {
			return fmt.Errorf("--overlay requires exactly one analyzed tile, got %d", analyzed)
		}
		displaySize, _ := cmd.Flags().GetInt("display-size")
		if err := writeOverlay(overlayPath, lastPath, lastResult, resolution, displaySize); err != nil {
			return err
		}
		logger.Info("wrote detection overlay", "path", overlayPath)
	}

	return nil
}

func analyzeTile(ctx context.Context, analyzer *analyze.Analyzer, path string) (*analyze.TileResult, error) {
	img, err := pgm.Open(path)
	if err != nil {
		return nil, err
	}
	return analyzer.AnalyzeTile(ctx, img)
}

func printTileStats(lat, lon int, s analyze.TileStatistics) {
	fmt.Printf("Tile lat %d lon %d:\n", lat, lon)
	fmt.Printf("  total craters:   %d\n", s.TotalCraters)
	fmt.Printf("  mean diameter:   %.2f\n", s.Diameter.Mean)
	fmt.Printf("  median diameter: %.2f\n", s.Diameter.Median)
	fmt.Printf("  min diameter:    %.2f\n", s.Diameter.Min)
	fmt.Printf("  max diameter:    %.2f\n", s.Diameter.Max)
}

func writeCraterCSV(path string, records []catalog.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV: %w", err)
	}
	defer f.Close()
	return catalog.WriteCraters(f, records)
}

func writeOverlay(outPath, tilePath string, result *analyze.TileResult, resolution float64, displaySize int) error {
	img, err := pgm.Open(tilePath)
	if err != nil {
		return err
	}
	tile, err := img.ReadAll()
	if err != nil {
		return err
	}
	overlay, err := render.Overlay(tile, result.Craters, resolution, displaySize)
	if err != nil {
		return err
	}
	return render.WritePNG(outPath, overlay)
}

// loadConfig loads the --config file or returns defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
