package stats

import (
	"crater-survey/internal/detect"
)

// SourceInput is one imaging source's contribution to aggregation: the
// candidate sets of its tiles, the length unit those records use, and the
// externally estimated covered area.
type SourceInput struct {
	// Tiles holds one candidate set per analyzed tile.
	Tiles [][]detect.Candidate

	// Unit is the length unit of the candidates' diameter/depth values.
	Unit Unit

	// CoveredAreaKm2 is the total surface area the tiles cover. It is an
	// external input estimated from tile geometry, not derived from the
	// candidates.
	CoveredAreaKm2 float64
}

// SourceStatistics aggregates all candidates attributed to one source.
// Diameter and depth summaries are in meters regardless of the source's
// input unit. Depth is summarized over the candidates that carry one.
type SourceStatistics struct {
	Source        string  `json:"source"`
	TotalCraters  int     `json:"total_craters"`
	Diameter      Summary `json:"diameter_m"`
	Depth         Summary `json:"depth_m"`
	DensityPerKm2 float64 `json:"crater_density_km2"`
}

// MetricNames lists the named metrics every SourceStatistics exposes, in
// export order.
var MetricNames = []string{
	"total_craters",
	"mean_diameter_m",
	"median_diameter_m",
	"min_diameter_m",
	"max_diameter_m",
	"mean_depth_m",
	"median_depth_m",
	"min_depth_m",
	"max_depth_m",
	"crater_density_km2",
}

// Metrics returns the named-metric view used by comparison and export.
func (s SourceStatistics) Metrics() map[string]float64 {
	return map[string]float64{
		"total_craters":      float64(s.TotalCraters),
		"mean_diameter_m":    s.Diameter.Mean,
		"median_diameter_m":  s.Diameter.Median,
		"min_diameter_m":     s.Diameter.Min,
		"max_diameter_m":     s.Diameter.Max,
		"mean_depth_m":       s.Depth.Mean,
		"median_depth_m":     s.Depth.Median,
		"min_depth_m":        s.Depth.Min,
		"max_depth_m":        s.Depth.Max,
		"crater_density_km2": s.DensityPerKm2,
	}
}

// Aggregate merges each source's tile-level candidate sets, normalizes
// lengths to meters, and computes per-source statistics.
//
// A source with no candidates yields zero-valued statistics rather than
// being omitted, so comparison can still reference it by name. A declared
// covered area of zero reports density 0, not a division error.
func Aggregate(inputs map[string]SourceInput) map[string]SourceStatistics {
	out := make(map[string]SourceStatistics, len(inputs))
	for name, in := range inputs {
		var diameters, depths []float64
		total := 0
		for _, tile := range in.Tiles {
			for _, c := range tile {
				total++
				diameters = append(diameters, in.Unit.Meters(c.Diameter))
				if c.Depth != nil {
					depths = append(depths, in.Unit.Meters(*c.Depth))
				}
			}
		}

		density := 0.0
		if in.CoveredAreaKm2 > 0 {
			density = float64(total) / in.CoveredAreaKm2
		}

		out[name] = SourceStatistics{
			Source:        name,
			TotalCraters:  total,
			Diameter:      Summarize(diameters),
			Depth:         Summarize(depths),
			DensityPerKm2: density,
		}
	}
	return out
}
