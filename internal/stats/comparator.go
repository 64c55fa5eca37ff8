package stats

import (
	"fmt"
	"math"
)

// MetricComparison holds the pairwise comparison of one metric between two
// sources: Diff = B - A and Ratio = B / A.
type MetricComparison struct {
	Diff  float64 `json:"diff"`
	Ratio float64 `json:"ratio"`
}

// ComparisonResult holds the aggregated statistics of two sources plus the
// per-metric diff/ratio fields, computed over the metrics present in both.
type ComparisonResult struct {
	A SourceStatistics `json:"a"`
	B SourceStatistics `json:"b"`

	// Metrics maps metric name to its comparison. Order preserves the
	// metric list passed to Compare, filtered to metrics both sides have.
	Metrics map[string]MetricComparison `json:"metrics"`
	Order   []string                    `json:"-"`
}

// Ratio returns b/a with the zero-denominator convention used throughout
// the comparison layer: 0/0 is 0 (both sources empty on the metric) and
// x/0 for positive x is +Inf, never a division error.
func Ratio(a, b float64) float64 {
	if a == 0 {
		if b == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return b / a
}

// Compare computes per-metric differences and ratios between two sources'
// aggregated statistics (B relative to A). Metric names missing from either
// side are skipped silently; heterogeneous sources rarely overlap fully.
func Compare(a, b SourceStatistics, metrics []string) ComparisonResult {
	am, bm := a.Metrics(), b.Metrics()

	result := ComparisonResult{
		A:       a,
		B:       b,
		Metrics: make(map[string]MetricComparison, len(metrics)),
	}
	for _, name := range metrics {
		av, aok := am[name]
		bv, bok := bm[name]
		if !aok || !bok {
			continue
		}
		result.Metrics[name] = MetricComparison{
			Diff:  bv - av,
			Ratio: Ratio(av, bv),
		}
		result.Order = append(result.Order, name)
	}
	return result
}

// Row flattens both sources' statistics and the diff/ratio fields into one
// named-column row suitable for single-row tabular export.
func (r ComparisonResult) Row() ([]string, []float64) {
	var names []string
	var values []float64

	appendStats := func(s SourceStatistics) {
		m := s.Metrics()
		for _, name := range MetricNames {
			names = append(names, fmt.Sprintf("%s_%s", s.Source, name))
			values = append(values, m[name])
		}
	}
	appendStats(r.A)
	appendStats(r.B)

	for _, name := range r.Order {
		c := r.Metrics[name]
		names = append(names, name+"_diff", name+"_ratio")
		values = append(values, c.Diff, c.Ratio)
	}
	return names, values
}
