package stats

import (
	"math"
	"testing"

	"crater-survey/internal/detect"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty sample yields zeros", func(t *testing.T) {
		t.Parallel()
		s := Summarize(nil)
		if s != (Summary{}) {
			t.Errorf("got %+v, expected zero summary", s)
		}
	})

	t.Run("descriptive stats", func(t *testing.T) {
		t.Parallel()
		s := Summarize([]float64{4, 1, 3, 2, 5})
		if s.Count != 5 {
			t.Errorf("got count %d, expected 5", s.Count)
		}
		if s.Mean != 3 {
			t.Errorf("got mean %g, expected 3", s.Mean)
		}
		if s.Median != 3 {
			t.Errorf("got median %g, expected 3", s.Median)
		}
		if s.Min != 1 || s.Max != 5 {
			t.Errorf("got min %g max %g, expected 1 and 5", s.Min, s.Max)
		}
	})

	t.Run("input left unsorted", func(t *testing.T) {
		t.Parallel()
		values := []float64{9, 1, 5}
		Summarize(values)
		if values[0] != 9 || values[2] != 5 {
			t.Errorf("input mutated: %v", values)
		}
	})
}

func TestUnit(t *testing.T) {
	t.Parallel()

	t.Run("kilometers to meters", func(t *testing.T) {
		t.Parallel()
		if got := Kilometers.Meters(1.5); got != 1500 {
			t.Errorf("got %g, expected 1500", got)
		}
	})

	t.Run("meters pass through", func(t *testing.T) {
		t.Parallel()
		if got := Meters.Meters(42); got != 42 {
			t.Errorf("got %g, expected 42", got)
		}
	})

	t.Run("parse", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"km", "kilometers"} {
			u, err := ParseUnit(name)
			if err != nil || u != Kilometers {
				t.Errorf("ParseUnit(%q) = %v, %v", name, u, err)
			}
		}
		if _, err := ParseUnit("furlongs"); err == nil {
			t.Error("expected error for unknown unit")
		}
	})
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	t.Run("unit normalization and density", func(t *testing.T) {
		t.Parallel()
		// One source in km with area 100, one in m with declared area 0.
		inputs := map[string]SourceInput{
			"themis": {
				Tiles: [][]detect.Candidate{
					{{Diameter: 1.2}},
				},
				Unit:           Kilometers,
				CoveredAreaKm2: 100,
			},
			"hirise": {
				Tiles: [][]detect.Candidate{
					{{Diameter: 35}},
				},
				Unit:           Meters,
				CoveredAreaKm2: 0,
			},
		}
		out := Aggregate(inputs)

		themis := out["themis"]
		if themis.TotalCraters != 1 {
			t.Errorf("got %d craters, expected 1", themis.TotalCraters)
		}
		if themis.Diameter.Mean != 1200 {
			t.Errorf("got mean %g m, expected 1200", themis.Diameter.Mean)
		}
		if themis.DensityPerKm2 != 0.01 {
			t.Errorf("got density %g, expected 0.01", themis.DensityPerKm2)
		}

		hirise := out["hirise"]
		if hirise.Diameter.Mean != 35 {
			t.Errorf("got mean %g m, expected 35", hirise.Diameter.Mean)
		}
		if hirise.DensityPerKm2 != 0 {
			t.Errorf("got density %g, expected 0 for zero area", hirise.DensityPerKm2)
		}
	})

	t.Run("empty source yields zero stats", func(t *testing.T) {
		t.Parallel()
		out := Aggregate(map[string]SourceInput{
			"empty": {Unit: Meters, CoveredAreaKm2: 50},
		})
		s, ok := out["empty"]
		if !ok {
			t.Fatal("empty source omitted from output")
		}
		if s.TotalCraters != 0 || s.Diameter.Mean != 0 || s.DensityPerKm2 != 0 {
			t.Errorf("got %+v, expected zero stats", s)
		}
	})

	t.Run("depth aggregated across tiles", func(t *testing.T) {
		t.Parallel()
		d1, d2 := 0.5, 1.5
		out := Aggregate(map[string]SourceInput{
			"src": {
				Tiles: [][]detect.Candidate{
					{{Diameter: 1, Depth: &d1}},
					{{Diameter: 2, Depth: &d2}, {Diameter: 3}},
				},
				Unit: Kilometers,
			},
		})
		s := out["src"]
		if s.TotalCraters != 3 {
			t.Errorf("got %d craters, expected 3", s.TotalCraters)
		}
		if s.Depth.Count != 2 || s.Depth.Mean != 1000 {
			t.Errorf("got depth %+v, expected count 2 mean 1000", s.Depth)
		}
	})
}

func TestRatio(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		a, b float64
		want float64
	}{
		{"plain division", 2, 5, 2.5},
		{"zero denominator", 0, 5, math.Inf(1)},
		{"both zero", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Ratio(tc.a, tc.b)
			if got != tc.want && !(math.IsInf(tc.want, 1) && math.IsInf(got, 1)) {
				t.Errorf("Ratio(%g, %g) = %g, expected %g", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	a := SourceStatistics{Source: "a", TotalCraters: 0}
	b := SourceStatistics{Source: "b", TotalCraters: 5}

	t.Run("diff and infinite ratio sentinel", func(t *testing.T) {
		t.Parallel()
		r := Compare(a, b, []string{"total_craters"})
		c, ok := r.Metrics["total_craters"]
		if !ok {
			t.Fatal("metric missing from result")
		}
		if c.Diff != 5 {
			t.Errorf("got diff %g, expected 5", c.Diff)
		}
		if !math.IsInf(c.Ratio, 1) {
			t.Errorf("got ratio %g, expected +Inf", c.Ratio)
		}
	})

	t.Run("unknown metrics skipped silently", func(t *testing.T) {
		t.Parallel()
		r := Compare(a, b, []string{"total_craters", "no_such_metric"})
		if len(r.Metrics) != 1 {
			t.Errorf("got %d metrics, expected 1", len(r.Metrics))
		}
		if len(r.Order) != 1 || r.Order[0] != "total_craters" {
			t.Errorf("got order %v, expected [total_craters]", r.Order)
		}
	})
}

func TestComparisonRow(t *testing.T) {
	t.Parallel()
	a := SourceStatistics{Source: "themis", TotalCraters: 2}
	b := SourceStatistics{Source: "hirise", TotalCraters: 4}
	r := Compare(a, b, []string{"total_craters", "mean_diameter_m"})

	names, values := r.Row()
	if len(names) != len(values) {
		t.Fatalf("names/values mismatch: %d vs %d", len(names), len(values))
	}
	// Both sources' full metric sets plus diff+ratio per compared metric.
	want := 2*len(MetricNames) + 2*len(r.Order)
	if len(names) != want {
		t.Errorf("got %d columns, expected %d", len(names), want)
	}
	if names[0] != "themis_total_craters" || values[0] != 2 {
		t.Errorf("got first column %s=%g", names[0], values[0])
	}
}
