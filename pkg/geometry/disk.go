package geometry

import "math"

// Centroid returns the mean coordinate of a set of points.
// Returns the zero point for an empty set.
func Centroid(points []Point2D) Point2D {
	if len(points) == 0 {
		return Point2D{}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Point2D{X: sx / n, Y: sy / n}
}

// DiameterFromArea returns the diameter of a circle with the given area.
func DiameterFromArea(area float64) float64 {
	if area <= 0 {
		return 0
	}
	return math.Sqrt(4 * area / math.Pi)
}

// Circularity returns 4*pi*area / perimeter^2.
// A perfect circle scores 1.0; irregular shapes score lower.
// Returns 0 if the perimeter is zero.
func Circularity(area, perimeter float64) float64 {
	if perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}
