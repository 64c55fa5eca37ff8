package analyze

import "crater-survey/pkg/geometry"

// DisplayTransform maps full-tile pixel coordinates onto a fixed square
// display resolution: display = pixel * (displaySize / tileDimension).
// It is a pure function of the tile dimensions; visualization consumers
// apply it when drawing candidates over a resized tile.
type DisplayTransform struct {
	ScaleX float64
	ScaleY float64
}

// NewDisplayTransform builds the transform for a tile of the given
// dimensions rendered at displaySize x displaySize.
func NewDisplayTransform(tileWidth, tileHeight, displaySize int) DisplayTransform {
	return DisplayTransform{
		ScaleX: float64(displaySize) / float64(tileWidth),
		ScaleY: float64(displaySize) / float64(tileHeight),
	}
}

// Apply maps a pixel coordinate to display coordinates.
func (t DisplayTransform) Apply(p geometry.PointInt) geometry.Point2D {
	return geometry.Point2D{
		X: float64(p.X) * t.ScaleX,
		Y: float64(p.Y) * t.ScaleY,
	}
}
