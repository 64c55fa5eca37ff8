package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"crater-survey/internal/detect"
	"crater-survey/internal/pgm"
	"crater-survey/pkg/geometry"
)

func flatTile(t *testing.T, width, height int, v uint8) *pgm.Section {
	t.Helper()
	sec := pgm.NewSection(width, height, 0)
	for i := range sec.Pix {
		sec.Pix[i] = v
	}
	return sec
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	craters := []detect.Candidate{
		{Diameter: 4, Center: geometry.PointInt{X: 100, Y: 100}, Confidence: 0.9},
	}

	t.Run("display resolution", func(t *testing.T) {
		t.Parallel()
		img, err := Overlay(flatTile(t, 200, 200, 128), craters, 0.1, 500)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if img.Rect.Dx() != 500 || img.Rect.Dy() != 500 {
			t.Errorf("got %dx%d, expected 500x500", img.Rect.Dx(), img.Rect.Dy())
		}
	})

	t.Run("circle stroked in red", func(t *testing.T) {
		t.Parallel()
		img, err := Overlay(flatTile(t, 200, 200, 128), craters, 0.1, 200)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Radius 20 px around (100,100) at 1:1 display scale.
		c := img.RGBAAt(120, 100)
		if c.R <= c.G {
			t.Errorf("got %+v at rim, expected red stroke", c)
		}
	})

	t.Run("candidates outside bounds tolerated", func(t *testing.T) {
		t.Parallel()
		far := []detect.Candidate{
			{Diameter: 4, Center: geometry.PointInt{X: 1000, Y: 1000}, Confidence: 1},
		}
		if _, err := Overlay(flatTile(t, 100, 100, 50), far, 0.1, 100); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid resolution rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := Overlay(flatTile(t, 10, 10, 0), nil, 0, 100); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestWritePNG(t *testing.T) {
	t.Parallel()
	img, err := Overlay(flatTile(t, 50, 50, 200), nil, 0.1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "overlay.png")
	if err := WritePNG(path, img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode written PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 100 {
		t.Errorf("got width %d, expected 100", decoded.Bounds().Dx())
	}
}
