// Package detect finds crater candidates in grayscale tile sections using
// edge detection and contour analysis.
package detect

import (
	"crater-survey/pkg/geometry"
)

// Candidate is one detected crater. Coordinates are in the full tile's
// pixel frame (section row offsets already applied). Immutable once
// emitted.
type Candidate struct {
	// Diameter in length units, derived from the rasterized contour area
	// assuming a circular shape.
	Diameter float64 `json:"diameter"`

	// Depth in length units. Detection cannot measure depth from a single
	// intensity image, so it is only present on candidates imported from
	// external catalogs.
	Depth *float64 `json:"depth,omitempty"`

	// Circularity is 4*pi*area/perimeter^2, 1.0 for a perfect circle.
	Circularity float64 `json:"circularity"`

	// Center is the mean contour coordinate.
	Center geometry.PointInt `json:"center"`

	// Confidence is min(1, circularity).
	Confidence float64 `json:"confidence"`
}

// Params configures crater detection for one section.
type Params struct {
	// Sigma is the Gaussian smoothing scale applied before edge detection.
	Sigma float64

	// BlurKernel is the (odd) Gaussian kernel size. Derived from Sigma by
	// DefaultParams; kept explicit so callers can override.
	BlurKernel int

	// LowThreshold and HighThreshold are the Canny hysteresis thresholds
	// on the normalized [0,1] intensity scale.
	LowThreshold  float64
	HighThreshold float64

	// Resolution is the ground resolution in length units per pixel.
	Resolution float64

	// MinDiameter is the minimum crater diameter to keep, in length units.
	// Smaller candidates are discarded, never stored.
	MinDiameter float64

	// Norm fixes the normalization range instead of using the section's
	// own min/max. Set by the analyzer's global-normalization prepass.
	Norm *Range
}

// Range is an intensity range used for normalization.
type Range struct {
	Min uint8
	Max uint8
}

// DefaultParams returns the detection parameters tuned for 100 m/px
// THEMIS-style tiles: sigma 2 smoothing, 0.1/0.3 hysteresis, 1 unit
// minimum diameter.
func DefaultParams() Params {
	return Params{
		Sigma:         2,
		BlurKernel:    13, // 2*ceil(3*sigma)+1
		LowThreshold:  0.1,
		HighThreshold: 0.3,
		Resolution:    0.1,
		MinDiameter:   1.0,
	}
}

// WithResolution returns a copy of the params with the ground resolution set.
func (p Params) WithResolution(res float64) Params {
	p.Resolution = res
	return p
}
