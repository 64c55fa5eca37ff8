package geometry

import (
	"math"
	"testing"
)

func TestCentroid(t *testing.T) {
	t.Parallel()

	t.Run("empty set yields zero point", func(t *testing.T) {
		t.Parallel()
		got := Centroid(nil)
		if got.X != 0 || got.Y != 0 {
			t.Errorf("got %+v, expected zero point", got)
		}
	})

	t.Run("mean of square corners", func(t *testing.T) {
		t.Parallel()
		pts := []Point2D{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
		got := Centroid(pts)
		if got.X != 1 || got.Y != 1 {
			t.Errorf("got %+v, expected (1,1)", got)
		}
	})
}

func TestDiameterFromArea(t *testing.T) {
	t.Parallel()

	t.Run("round trip with circle area", func(t *testing.T) {
		t.Parallel()
		c := Circle{Radius: 20}
		got := DiameterFromArea(c.Area())
		if math.Abs(got-40) > 1e-9 {
			t.Errorf("got %g, expected 40", got)
		}
	})

	t.Run("non-positive area yields zero", func(t *testing.T) {
		t.Parallel()
		if got := DiameterFromArea(0); got != 0 {
			t.Errorf("got %g, expected 0", got)
		}
		if got := DiameterFromArea(-5); got != 0 {
			t.Errorf("got %g, expected 0", got)
		}
	})
}

func TestCircularity(t *testing.T) {
	t.Parallel()

	t.Run("perfect circle scores one", func(t *testing.T) {
		t.Parallel()
		r := 10.0
		got := Circularity(math.Pi*r*r, 2*math.Pi*r)
		if math.Abs(got-1) > 1e-9 {
			t.Errorf("got %g, expected 1", got)
		}
	})

	t.Run("square scores below circle", func(t *testing.T) {
		t.Parallel()
		got := Circularity(100, 40) // 10x10 square
		if got >= 1 {
			t.Errorf("got %g, expected < 1", got)
		}
		if math.Abs(got-math.Pi/4) > 1e-9 {
			t.Errorf("got %g, expected pi/4", got)
		}
	})

	t.Run("zero perimeter guarded", func(t *testing.T) {
		t.Parallel()
		if got := Circularity(100, 0); got != 0 {
			t.Errorf("got %g, expected 0", got)
		}
	})
}

func TestDisplayScaling(t *testing.T) {
	t.Parallel()
	p := Point2D{X: 3, Y: 4}
	if d := p.Distance(Point2D{}); math.Abs(d-5) > 1e-9 {
		t.Errorf("got %g, expected 5", d)
	}
	scaled := p.Scale(2)
	if scaled.X != 6 || scaled.Y != 8 {
		t.Errorf("got %+v, expected (6,8)", scaled)
	}
}
