package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"crater-survey/internal/detect"
	"crater-survey/pkg/geometry"
)

// DB is a SQLite-backed crater catalog. One database file holds the
// detections of any number of sources and tiles.
type DB struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS craters (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source      TEXT    NOT NULL,
	latitude    INTEGER NOT NULL,
	longitude   INTEGER NOT NULL,
	diameter    REAL    NOT NULL,
	depth       REAL,
	circularity REAL    NOT NULL,
	center_x    INTEGER NOT NULL,
	center_y    INTEGER NOT NULL,
	confidence  REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_craters_source ON craters(source);
CREATE INDEX IF NOT EXISTS idx_craters_tile   ON craters(source, latitude, longitude);
`

// OpenDB opens or creates a catalog database at path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	// SQLite supports a single writer; one connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the catalog.
func (c *DB) Close() error {
	return c.db.Close()
}

// SaveTile stores one tile's candidates for a source, replacing any rows
// previously stored for the same (source, lat, lon). Re-running an analysis
// therefore never duplicates records.
func (c *DB) SaveTile(ctx context.Context, source string, lat, lon int, craters []detect.Candidate) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM craters WHERE source = ? AND latitude = ? AND longitude = ?",
		source, lat, lon); err != nil {
		return fmt.Errorf("failed to clear tile rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO craters
			(source, latitude, longitude, diameter, depth, circularity, center_x, center_y, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, cr := range craters {
		var depth sql.NullFloat64
		if cr.Depth != nil {
			depth = sql.NullFloat64{Float64: *cr.Depth, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			source, lat, lon,
			cr.Diameter, depth, cr.Circularity,
			cr.Center.X, cr.Center.Y, cr.Confidence); err != nil {
			return fmt.Errorf("failed to insert crater: %w", err)
		}
	}
	return tx.Commit()
}

// CratersBySource returns all stored records for a source. A source with no
// rows yields an empty slice, not an error.
func (c *DB) CratersBySource(ctx context.Context, source string) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT latitude, longitude, diameter, depth, circularity, center_x, center_y, confidence
		FROM craters WHERE source = ? ORDER BY id`, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query craters: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var depth sql.NullFloat64
		var cx, cy int
		if err := rows.Scan(&rec.Latitude, &rec.Longitude, &rec.Diameter, &depth,
			&rec.Circularity, &cx, &cy, &rec.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan crater: %w", err)
		}
		if depth.Valid {
			d := depth.Float64
			rec.Depth = &d
		}
		rec.Center = geometry.PointInt{X: cx, Y: cy}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Sources lists the distinct source names in the catalog.
func (c *DB) Sources(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT DISTINCT source FROM craters ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}
