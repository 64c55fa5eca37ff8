package detect

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"crater-survey/internal/pgm"
	"crater-survey/pkg/geometry"

	"gocv.io/x/gocv"
)

// DetectSection detects crater candidates in one tile section.
//
// The section is min/max-normalized, edge-filtered with Gaussian blur +
// Canny, and the external contours of the edge map are rasterized to masks
// for area/perimeter measurement. Emitted centers are shifted by the
// section's StartRow so all coordinates are in full-tile space.
//
// A section with a degenerate intensity range (constant value) yields no
// candidates. Contours whose mask resolves to zero area or perimeter are
// skipped.
func DetectSection(sec *pgm.Section, params Params) ([]Candidate, error) {
	if params.Resolution <= 0 {
		return nil, fmt.Errorf("detect: invalid resolution %g", params.Resolution)
	}

	norm, ok := normalize(sec, params.Norm)
	if !ok {
		// Constant section: nothing to detect, not an error.
		return nil, nil
	}

	src, err := gocv.NewMatFromBytes(sec.Height, sec.Width, gocv.MatTypeCV8UC1, norm)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap section: %w", err)
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := params.BlurKernel
	if k%2 == 0 {
		k++
	}
	gocv.GaussianBlur(src, &blurred, image.Point{k, k}, params.Sigma, params.Sigma, gocv.BorderDefault)

	// Hysteresis thresholds are specified on the normalized [0,1] scale;
	// Canny operates on the stretched 8-bit data.
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(params.LowThreshold*255), float32(params.HighThreshold*255))

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	var craters []Candidate
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		// Rasterize the contour interior and measure the region.
		mask := gocv.NewMatWithSize(sec.Height, sec.Width, gocv.MatTypeCV8U)
		gocv.DrawContours(&mask, contours, i, white, -1)
		area := float64(gocv.CountNonZero(mask))
		mask.Close()

		perimeter := gocv.ArcLength(contour, true)
		if area == 0 || perimeter == 0 {
			continue
		}

		diameter := geometry.DiameterFromArea(area) * params.Resolution
		if diameter < params.MinDiameter {
			continue
		}

		circ := geometry.Circularity(area, perimeter)
		center := contourCentroid(contour)
		craters = append(craters, Candidate{
			Diameter:    diameter,
			Circularity: circ,
			Center: geometry.PointInt{
				X: center.X,
				Y: center.Y + sec.StartRow,
			},
			Confidence: math.Min(1, circ),
		})
	}
	return craters, nil
}

// normalize stretches the section's samples onto [0,255] using the given
// range, or the section's own min/max when rng is nil. Returns false for a
// degenerate (zero-width) range.
func normalize(sec *pgm.Section, rng *Range) ([]uint8, bool) {
	lo, hi := uint8(255), uint8(0)
	if rng != nil {
		lo, hi = rng.Min, rng.Max
	} else {
		for _, v := range sec.Pix {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if hi <= lo {
		return nil, false
	}

	span := float64(hi - lo)
	out := make([]uint8, len(sec.Pix))
	for i, v := range sec.Pix {
		switch {
		case v <= lo:
			out[i] = 0
		case v >= hi:
			out[i] = 255
		default:
			out[i] = uint8(float64(v-lo) / span * 255)
		}
	}
	return out, true
}

// SectionRange scans a section for its min/max intensity. Used by the
// analyzer's global-normalization prepass.
func SectionRange(sec *pgm.Section) Range {
	lo, hi := uint8(255), uint8(0)
	for _, v := range sec.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return Range{Min: lo, Max: hi}
}

// contourCentroid returns the mean contour coordinate as pixel-space ints.
func contourCentroid(contour gocv.PointVector) geometry.PointInt {
	pts := make([]geometry.Point2D, 0, contour.Size())
	for j := 0; j < contour.Size(); j++ {
		p := contour.At(j)
		pts = append(pts, geometry.Point2D{X: float64(p.X), Y: float64(p.Y)})
	}
	return geometry.Centroid(pts).ToInt()
}
