package stats

import "fmt"

// Unit is a length unit convention carried by a source's crater records.
// The canonical unit for aggregation and comparison is meters.
type Unit int

const (
	Meters Unit = iota
	Kilometers
)

func (u Unit) String() string {
	switch u {
	case Meters:
		return "m"
	case Kilometers:
		return "km"
	default:
		return "unknown"
	}
}

// ParseUnit parses a unit name ("m", "meters", "km", "kilometers").
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "m", "meters":
		return Meters, nil
	case "km", "kilometers":
		return Kilometers, nil
	default:
		return Meters, fmt.Errorf("stats: unknown unit %q", s)
	}
}

// Meters converts a value in this unit to meters.
func (u Unit) Meters(v float64) float64 {
	if u == Kilometers {
		return v * 1000
	}
	return v
}
