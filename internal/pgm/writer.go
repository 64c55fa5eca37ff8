package pgm

import (
	"bufio"
	"fmt"
	"os"
)

// Write writes a section to path as a binary PGM file. The section's
// StartRow is ignored; the output image is exactly the section's extent.
func Write(path string, sec *Section) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "%s\n%d %d\n255\n", Magic, sec.Width, sec.Height); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(sec.Pix); err != nil {
		return fmt.Errorf("failed to write pixel data: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush image: %w", err)
	}
	return nil
}
