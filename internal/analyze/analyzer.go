// Package analyze partitions tiles into sections, runs crater detection
// across them concurrently, and computes per-tile statistics.
package analyze

import (
	"context"
	"fmt"
	"log/slog"

	"crater-survey/internal/detect"
	"crater-survey/internal/pgm"
	"crater-survey/internal/stats"

	"golang.org/x/sync/errgroup"
)

// Normalization selects how section intensities are normalized before edge
// detection.
type Normalization int

const (
	// NormalizeLocal stretches each section by its own min/max. Parallelizes
	// without a prepass but edge sensitivity varies with local contrast.
	NormalizeLocal Normalization = iota

	// NormalizeGlobal runs a strip-wise prepass over the whole tile and
	// stretches every section by the tile-wide range.
	NormalizeGlobal
)

func (n Normalization) String() string {
	if n == NormalizeGlobal {
		return "global"
	}
	return "local"
}

// Options configures tile analysis.
type Options struct {
	// SectionHeight is the number of rows per section. The last section of
	// a tile may be shorter.
	SectionHeight int

	// Workers bounds the number of concurrently processed sections.
	Workers int

	// Normalization selects section-local or tile-global intensity
	// normalization.
	Normalization Normalization

	// Detect holds the per-section detection parameters.
	Detect detect.Params
}

// DefaultOptions returns analysis defaults: 100-row sections, 4 workers,
// section-local normalization.
func DefaultOptions() Options {
	return Options{
		SectionHeight: 100,
		Workers:       4,
		Normalization: NormalizeLocal,
		Detect:        detect.DefaultParams(),
	}
}

// TileStatistics aggregates over all candidates of one tile. Recomputed
// from the candidate set, never mutated in place. Summaries are in the
// tile's length units; an empty set yields all zeros.
type TileStatistics struct {
	TotalCraters int           `json:"total_craters"`
	Diameter     stats.Summary `json:"diameter"`
	Depth        stats.Summary `json:"depth"`
}

// TileResult holds one tile's merged candidates and statistics.
type TileResult struct {
	Craters []detect.Candidate `json:"craters"`
	Stats   TileStatistics     `json:"stats"`
	Width   int                `json:"width"`
	Height  int                `json:"height"`
}

// Analyzer runs sectioned crater detection over tiles.
type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Analyzer. A nil logger falls back to slog.Default().
func New(opts Options, logger *slog.Logger) *Analyzer {
	if opts.SectionHeight <= 0 {
		opts.SectionHeight = DefaultOptions().SectionHeight
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{opts: opts, logger: logger}
}

// AnalyzeTile partitions the tile's rows into consecutive non-overlapping
// sections covering the full height exactly once, detects craters in each
// section through a bounded worker pool, and merges the results.
//
// Sections are independent; each worker reads its own strip and no mutable
// state is shared. The merge is a join barrier: statistics are computed
// only after every section has returned. The first section failure is
// propagated after in-flight work drains; no partial results are returned.
func (a *Analyzer) AnalyzeTile(ctx context.Context, img *pgm.Image) (*TileResult, error) {
	params := a.opts.Detect
	if a.opts.Normalization == NormalizeGlobal {
		rng, err := a.tileRange(img)
		if err != nil {
			return nil, err
		}
		params.Norm = &rng
	}

	startRows := sectionStarts(img.Height, a.opts.SectionHeight)
	a.logger.Debug("analyzing tile",
		"path", img.Path,
		"size", fmt.Sprintf("%dx%d", img.Width, img.Height),
		"sections", len(startRows),
		"workers", a.opts.Workers,
		"normalization", a.opts.Normalization.String(),
	)

	// One result slot per section; slots are written by exactly one
	// goroutine each, so no lock is needed.
	results := make([][]detect.Candidate, len(startRows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, startRow := range startRows {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			sec, err := img.ReadSection(startRow, a.opts.SectionHeight)
			if err != nil {
				return fmt.Errorf("section at row %d: %w", startRow, err)
			}
			craters, err := detect.DetectSection(sec, params)
			if err != nil {
				return fmt.Errorf("section at row %d: %w", startRow, err)
			}
			results[i] = craters
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var craters []detect.Candidate
	for _, r := range results {
		craters = append(craters, r...)
	}

	return &TileResult{
		Craters: craters,
		Stats:   Statistics(craters),
		Width:   img.Width,
		Height:  img.Height,
	}, nil
}

// Statistics computes per-tile descriptive statistics over a candidate
// set. An empty set yields zero-valued statistics.
func Statistics(craters []detect.Candidate) TileStatistics {
	var diameters, depths []float64
	for _, c := range craters {
		diameters = append(diameters, c.Diameter)
		if c.Depth != nil {
			depths = append(depths, *c.Depth)
		}
	}
	return TileStatistics{
		TotalCraters: len(craters),
		Diameter:     stats.Summarize(diameters),
		Depth:        stats.Summarize(depths),
	}
}

// tileRange scans the tile strip-wise for its global intensity range.
func (a *Analyzer) tileRange(img *pgm.Image) (detect.Range, error) {
	rng := detect.Range{Min: 255, Max: 0}
	for _, startRow := range sectionStarts(img.Height, a.opts.SectionHeight) {
		sec, err := img.ReadSection(startRow, a.opts.SectionHeight)
		if err != nil {
			return rng, fmt.Errorf("normalization prepass at row %d: %w", startRow, err)
		}
		r := detect.SectionRange(sec)
		if r.Min < rng.Min {
			rng.Min = r.Min
		}
		if r.Max > rng.Max {
			rng.Max = r.Max
		}
	}
	return rng, nil
}

// sectionStarts returns the starting rows of consecutive non-overlapping
// sections covering [0, height) exactly once.
func sectionStarts(height, sectionHeight int) []int {
	var starts []int
	for row := 0; row < height; row += sectionHeight {
		starts = append(starts, row)
	}
	return starts
}
