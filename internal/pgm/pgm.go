// Package pgm provides binary PGM (P5) reading with strip-wise section
// access, so large orbital tiles can be processed without loading the whole
// raster into memory.
package pgm

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Magic is the header identifier for binary (raw) PGM files.
const Magic = "P5"

// FormatError reports a malformed or unsupported PGM header.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("pgm: %s: %s", e.Path, e.Reason)
}

// Image is a handle to a PGM file. Opening an Image parses the header only;
// pixel data is read on demand through ReadSection.
type Image struct {
	Path   string
	Width  int
	Height int
	MaxVal int

	// dataOffset is the file offset of the first pixel byte.
	dataOffset int64
}

// Section is a contiguous horizontal strip of an image. StartRow is the
// strip's first row in the full image's coordinate frame. Pix holds
// row-major samples, len = Width*Height.
type Section struct {
	Width    int
	Height   int
	StartRow int
	Pix      []uint8
}

// At returns the sample at (x, y) in section-local coordinates.
func (s *Section) At(x, y int) uint8 {
	return s.Pix[y*s.Width+x]
}

// Set writes the sample at (x, y) in section-local coordinates.
func (s *Section) Set(x, y int, v uint8) {
	s.Pix[y*s.Width+x] = v
}

// NewSection allocates a zeroed section.
func NewSection(width, height, startRow int) *Section {
	return &Section{
		Width:    width,
		Height:   height,
		StartRow: startRow,
		Pix:      make([]uint8, width*height),
	}
}

// Open parses the header of a PGM file and returns a handle to it.
// Only 8-bit single-channel P5 files are supported.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	magic, err := readToken(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if magic != Magic {
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("bad magic %q, want %q", magic, Magic)}
	}

	var dims [3]int
	for i := range dims {
		tok, err := readToken(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		if _, err := fmt.Sscanf(tok, "%d", &dims[i]); err != nil {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("non-numeric header field %q", tok)}
		}
	}
	width, height, maxVal := dims[0], dims[1], dims[2]
	if width <= 0 || height <= 0 {
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("invalid dimensions %dx%d", width, height)}
	}
	if maxVal <= 0 || maxVal > 255 {
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unsupported max value %d", maxVal)}
	}

	// File offset of the first pixel byte: current position minus what is
	// still buffered.
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to locate pixel data: %w", err)
	}
	offset := pos - int64(r.Buffered())

	return &Image{
		Path:       path,
		Width:      width,
		Height:     height,
		MaxVal:     maxVal,
		dataOffset: offset,
	}, nil
}

// ReadSection reads a horizontal strip of rows [startRow, startRow+rows),
// clipped to the image height. Memory use is proportional to the strip
// size, not the image size. Returns an error if the file is truncated
// relative to its declared dimensions.
func (img *Image) ReadSection(startRow, rows int) (*Section, error) {
	if startRow < 0 || startRow >= img.Height {
		return nil, fmt.Errorf("pgm: start row %d outside image height %d", startRow, img.Height)
	}
	if startRow+rows > img.Height {
		rows = img.Height - startRow
	}
	if rows <= 0 {
		return nil, fmt.Errorf("pgm: empty section request at row %d", startRow)
	}

	f, err := os.Open(img.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	offset := img.dataOffset + int64(startRow)*int64(img.Width)
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to row %d: %w", startRow, err)
	}

	sec := NewSection(img.Width, rows, startRow)
	if _, err := io.ReadFull(f, sec.Pix); err != nil {
		return nil, fmt.Errorf("truncated pixel data at row %d: %w", startRow, err)
	}
	return sec, nil
}

// ReadAll reads the entire image as one section. Intended for small tiles
// (rendering, mesh export); detection should use ReadSection strips.
func (img *Image) ReadAll() (*Section, error) {
	return img.ReadSection(0, img.Height)
}

// readToken reads the next whitespace-delimited header token, skipping
// '#' comment lines as the format allows.
func readToken(r *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		switch {
		case b == '#' && len(tok) == 0:
			if _, err := r.ReadString('\n'); err != nil {
				return "", err
			}
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}
