// Package catalog persists crater records: flat CSV interchange between
// pipeline stages and a SQLite catalog for multi-run storage.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"crater-survey/internal/detect"
	"crater-survey/internal/stats"
	"crater-survey/pkg/geometry"
)

// Record is one crater row with the latitude/longitude tags of the tile it
// was detected in.
type Record struct {
	detect.Candidate
	Latitude  int `json:"latitude"`
	Longitude int `json:"longitude"`
}

// craterHeader is the canonical column order for crater CSV files.
var craterHeader = []string{
	"diameter", "depth", "circularity",
	"center_x", "center_y", "confidence",
	"latitude", "longitude",
}

// columnAliases maps legacy unit-suffixed column names onto canonical ones,
// so catalogs produced by earlier tooling still load.
var columnAliases = map[string]string{
	"diameter_km": "diameter",
	"diameter_m":  "diameter",
	"depth_km":    "depth",
	"depth_m":     "depth",
	"center_col":  "center_x",
	"center_row":  "center_y",
}

// WriteCraters writes records as CSV. Absent depths are written as empty
// cells.
func WriteCraters(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(craterHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		depth := ""
		if r.Depth != nil {
			depth = formatFloat(*r.Depth)
		}
		row := []string{
			formatFloat(r.Diameter),
			depth,
			formatFloat(r.Circularity),
			strconv.Itoa(r.Center.X),
			strconv.Itoa(r.Center.Y),
			formatFloat(r.Confidence),
			strconv.Itoa(r.Latitude),
			strconv.Itoa(r.Longitude),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCraters reads crater records from CSV. Only the diameter column is
// required; optional columns (depth in particular) are tolerated as absent
// or empty, and unknown columns are ignored.
func ReadCraters(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		col[name] = i
	}
	if _, ok := col["diameter"]; !ok {
		return nil, fmt.Errorf("catalog: missing diameter column")
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		var rec Record
		rec.Diameter, err = floatField(row, col, "diameter")
		if err != nil {
			return nil, fmt.Errorf("catalog: line %d: %w", line, err)
		}
		if v, ok := optionalFloat(row, col, "depth"); ok {
			rec.Depth = &v
		}
		if v, ok := optionalFloat(row, col, "circularity"); ok {
			rec.Circularity = v
		}
		if v, ok := optionalFloat(row, col, "confidence"); ok {
			rec.Confidence = v
		}
		cx, _ := optionalFloat(row, col, "center_x")
		cy, _ := optionalFloat(row, col, "center_y")
		rec.Center = geometry.PointInt{X: int(cx), Y: int(cy)}
		lat, _ := optionalFloat(row, col, "latitude")
		lon, _ := optionalFloat(row, col, "longitude")
		rec.Latitude, rec.Longitude = int(lat), int(lon)

		records = append(records, rec)
	}
	return records, nil
}

// Candidates strips the coordinate tags, returning the bare candidate set.
func Candidates(records []Record) []detect.Candidate {
	out := make([]detect.Candidate, len(records))
	for i, r := range records {
		out[i] = r.Candidate
	}
	return out
}

// WriteComparison writes a comparison result as a single-row CSV: every
// source's aggregate statistics plus the diff/ratio fields.
func WriteComparison(w io.Writer, result stats.ComparisonResult) error {
	names, values := result.Row()
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = formatFloat(v)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func floatField(row []string, col map[string]int, name string) (float64, error) {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return 0, fmt.Errorf("missing %s value", name)
	}
	v, err := strconv.ParseFloat(row[i], 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", name, row[i])
	}
	return v, nil
}

func optionalFloat(row []string, col map[string]int, name string) (float64, bool) {
	i, ok := col[name]
	if !ok || i >= len(row) || row[i] == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(row[i], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
