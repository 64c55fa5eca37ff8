// Package config loads run configuration for crater surveys from YAML
// files and provides the defaults used when no file is given.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"crater-survey/internal/analyze"
	"crater-survey/internal/detect"
)

// Default configuration values.
const (
	// DefaultSectionHeight is the number of tile rows per detection
	// section. 100 rows keeps a 10000-wide tile section around 1 MB.
	DefaultSectionHeight = 100

	// DefaultWorkers bounds concurrent section processing per tile.
	DefaultWorkers = 4

	// DefaultMinDiameter is the minimum crater diameter to keep, in the
	// source's length units.
	DefaultMinDiameter = 1.0

	// DefaultDisplaySize is the square overlay render resolution.
	DefaultDisplaySize = 1000

	// AppName is used for XDG cache/data directory paths.
	AppName = "crater-survey"
)

// TileCoord identifies a tile by latitude band and longitude.
type TileCoord struct {
	Lat int `yaml:"lat"`
	Lon int `yaml:"lon"`
}

// Source describes one imaging source: its unit convention, ground
// resolution, covered area, and where its crater records come from
// (tiles to analyze and/or pre-detected CSV catalogs).
type Source struct {
	// Unit is the length unit of the source's records: "m" or "km".
	Unit string `yaml:"unit"`

	// Resolution is the ground resolution in Unit per pixel.
	Resolution float64 `yaml:"resolution"`

	// CoveredAreaKm2 is the externally estimated surface coverage.
	CoveredAreaKm2 float64 `yaml:"covered_area_km2"`

	// Tiles lists tile coordinates to fetch and analyze.
	Tiles []TileCoord `yaml:"tiles,omitempty"`

	// Catalogs lists CSV files of already-detected craters to merge in.
	Catalogs []string `yaml:"catalogs,omitempty"`
}

// Detection holds edge-detection tuning shared by all sources.
type Detection struct {
	Sigma         float64 `yaml:"sigma"`
	LowThreshold  float64 `yaml:"low_threshold"`
	HighThreshold float64 `yaml:"high_threshold"`
	MinDiameter   float64 `yaml:"min_diameter"`
}

// Config is the full run configuration.
type Config struct {
	// BaseURL is the tile server directory.
	BaseURL string `yaml:"base_url,omitempty"`

	// CacheDir overrides the tile cache location.
	CacheDir string `yaml:"cache_dir,omitempty"`

	SectionHeight int    `yaml:"section_height"`
	Workers       int    `yaml:"workers"`
	Normalization string `yaml:"normalization"` // "local" or "global"

	Detection Detection `yaml:"detection"`

	Sources map[string]Source `yaml:"sources,omitempty"`

	// Metrics lists the metric names compared between sources.
	Metrics []string `yaml:"metrics,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	p := detect.DefaultParams()
	return &Config{
		SectionHeight: DefaultSectionHeight,
		Workers:       DefaultWorkers,
		Normalization: "local",
		Detection: Detection{
			Sigma:         p.Sigma,
			LowThreshold:  p.LowThreshold,
			HighThreshold: p.HighThreshold,
			MinDiameter:   DefaultMinDiameter,
		},
		Metrics: []string{
			"total_craters",
			"mean_diameter_m",
			"median_diameter_m",
			"mean_depth_m",
			"crater_density_km2",
		},
	}
}

// Load reads a YAML configuration file, filling defaults for absent keys.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SectionHeight <= 0 {
		return fmt.Errorf("config: section_height must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive")
	}
	if c.Normalization != "local" && c.Normalization != "global" {
		return fmt.Errorf("config: normalization must be %q or %q", "local", "global")
	}
	for name, src := range c.Sources {
		if len(src.Tiles) > 0 && src.Resolution <= 0 {
			return fmt.Errorf("config: source %s: resolution must be positive", name)
		}
	}
	return nil
}

// AnalyzerOptions converts the configuration into analyzer options for a
// source with the given ground resolution.
func (c *Config) AnalyzerOptions(resolution float64) analyze.Options {
	norm := analyze.NormalizeLocal
	if c.Normalization == "global" {
		norm = analyze.NormalizeGlobal
	}
	params := detect.DefaultParams()
	params.Sigma = c.Detection.Sigma
	params.LowThreshold = c.Detection.LowThreshold
	params.HighThreshold = c.Detection.HighThreshold
	params.MinDiameter = c.Detection.MinDiameter
	params.Resolution = resolution

	return analyze.Options{
		SectionHeight: c.SectionHeight,
		Workers:       c.Workers,
		Normalization: norm,
		Detect:        params,
	}
}

// DefaultCacheDir returns the tile cache directory: the configured one, or
// the XDG cache location.
func (c *Config) DefaultCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return filepath.Join(xdg.CacheHome, AppName, "tiles")
}
