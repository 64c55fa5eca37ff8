// Package render draws detection overlays: the tile resized to a fixed
// display resolution with every candidate stroked as a circle.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"

	"crater-survey/internal/analyze"
	"crater-survey/internal/detect"
	"crater-survey/internal/pgm"
)

// DefaultDisplaySize is the square overlay resolution.
const DefaultDisplaySize = 1000

// Overlay renders a tile at displaySize x displaySize with candidate
// circles drawn over it. Circle radii are recovered from the candidate
// diameter at the given ground resolution and mapped through the tile's
// display transform; stroke intensity follows detection confidence.
func Overlay(tile *pgm.Section, craters []detect.Candidate, resolution float64, displaySize int) (*image.RGBA, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("render: invalid resolution %g", resolution)
	}
	if displaySize <= 0 {
		displaySize = DefaultDisplaySize
	}

	gray := &image.Gray{
		Pix:    tile.Pix,
		Stride: tile.Width,
		Rect:   image.Rect(0, 0, tile.Width, tile.Height),
	}

	dst := image.NewRGBA(image.Rect(0, 0, displaySize, displaySize))
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, gray, gray.Rect, xdraw.Src, nil)

	tr := analyze.NewDisplayTransform(tile.Width, tile.Height, displaySize)
	for _, c := range craters {
		center := tr.Apply(c.Center)
		// Pixel radius in the full tile frame, scaled onto the display.
		radius := c.Diameter / (2 * resolution) * tr.ScaleX
		strokeCircle(dst, center.X, center.Y, radius, craterColor(c.Confidence))
	}
	return dst, nil
}

// WritePNG writes an overlay image to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create overlay: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return nil
}

// craterColor maps confidence onto stroke intensity: confident detections
// draw in full red, weak ones fade out.
func craterColor(confidence float64) color.RGBA {
	v := uint8(math.Min(1, math.Max(0.2, confidence)) * 255)
	return color.RGBA{R: v, A: 255}
}

// strokeCircle draws a one-pixel circle outline by parametric stepping.
func strokeCircle(img *image.RGBA, cx, cy, r float64, c color.RGBA) {
	if r <= 0 {
		return
	}
	steps := int(math.Ceil(2 * math.Pi * r))
	if steps < 8 {
		steps = 8
	}
	for i := 0; i < steps; i++ {
		t := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Round(cx + r*math.Cos(t)))
		y := int(math.Round(cy + r*math.Sin(t)))
		if image.Pt(x, y).In(img.Rect) {
			img.SetRGBA(x, y, c)
		}
	}
}
