// Package mesh converts heightmap tiles into 3D terrain meshes for
// downstream visualization tooling.
package mesh

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"

	"crater-survey/internal/pgm"
)

// Options configures terrain mesh generation.
type Options struct {
	// Step downsamples the heightmap by this factor before meshing.
	// A 4096-wide tile at Step 8 produces a 512-wide vertex grid.
	Step int

	// XYScale is the horizontal distance between adjacent vertices.
	XYScale float64

	// ZScale converts an 8-bit height sample to a vertical coordinate.
	ZScale float64
}

// DefaultOptions returns meshing defaults.
func DefaultOptions() Options {
	return Options{
		Step:    8,
		XYScale: 1.0,
		ZScale:  0.1,
	}
}

// Mesh is a triangulated terrain surface.
type Mesh struct {
	// Vertices are (x, y, z) triples.
	Vertices [][3]float64

	// Faces index into Vertices, zero-based, three per triangle.
	Faces [][3]int

	// Columns and Rows are the vertex grid dimensions.
	Columns int
	Rows    int
}

// FromHeightmap builds a terrain mesh from a heightmap tile. The vertex
// grid is centered on the origin; each heightmap quad becomes two
// triangles.
func FromHeightmap(tile *pgm.Section, opts Options) (*Mesh, error) {
	if opts.Step <= 0 {
		opts.Step = 1
	}
	cols := tile.Width / opts.Step
	rows := tile.Height / opts.Step
	if cols < 2 || rows < 2 {
		return nil, fmt.Errorf("mesh: heightmap %dx%d too small for step %d", tile.Width, tile.Height, opts.Step)
	}

	small := downsample(tile, cols, rows)

	m := &Mesh{
		Vertices: make([][3]float64, 0, cols*rows),
		Columns:  cols,
		Rows:     rows,
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m.Vertices = append(m.Vertices, [3]float64{
				(float64(x) - float64(cols)/2) * opts.XYScale,
				(float64(y) - float64(rows)/2) * opts.XYScale,
				float64(small.GrayAt(x, y).Y) * opts.ZScale,
			})
		}
	}

	for y := 0; y < rows-1; y++ {
		for x := 0; x < cols-1; x++ {
			i := y*cols + x
			m.Faces = append(m.Faces,
				[3]int{i, i + 1, i + cols},
				[3]int{i + 1, i + cols + 1, i + cols},
			)
		}
	}
	return m, nil
}

// WriteOBJ writes the mesh in Wavefront OBJ format.
func (m *Mesh) WriteOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(bw, "v %g %g %g\n", v[0], v[1], v[2]); err != nil {
			return fmt.Errorf("failed to write vertex: %w", err)
		}
	}
	for _, f := range m.Faces {
		// OBJ indices are one-based.
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1); err != nil {
			return fmt.Errorf("failed to write face: %w", err)
		}
	}
	return bw.Flush()
}

// WriteOBJFile writes the mesh to an OBJ file at path.
func (m *Mesh) WriteOBJFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mesh file: %w", err)
	}
	defer f.Close()
	return m.WriteOBJ(f)
}

// downsample resamples the tile onto a cols x rows grayscale grid.
func downsample(tile *pgm.Section, cols, rows int) *image.Gray {
	src := &image.Gray{
		Pix:    tile.Pix,
		Stride: tile.Width,
		Rect:   image.Rect(0, 0, tile.Width, tile.Height),
	}
	dst := image.NewGray(image.Rect(0, 0, cols, rows))
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
	return dst
}
