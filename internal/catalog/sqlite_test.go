package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"crater-survey/internal/detect"
	"crater-survey/pkg/geometry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "craters.db"))
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDBSaveAndQuery(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	depth := 0.4
	craters := []detect.Candidate{
		{Diameter: 1.2, Circularity: 0.9, Center: geometry.PointInt{X: 10, Y: 20}, Confidence: 0.9},
		{Diameter: 3.4, Depth: &depth, Circularity: 0.7, Center: geometry.PointInt{X: 55, Y: 60}, Confidence: 0.7},
	}
	if err := db.SaveTile(ctx, "themis", -30, 60, craters); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := db.CratersBySource(ctx, "themis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, expected 2", len(records))
	}
	if records[0].Latitude != -30 || records[0].Longitude != 60 {
		t.Errorf("got tags %d/%d, expected -30/60", records[0].Latitude, records[0].Longitude)
	}
	if records[0].Depth != nil {
		t.Errorf("got depth %v, expected absent", *records[0].Depth)
	}
	if records[1].Depth == nil || *records[1].Depth != 0.4 {
		t.Errorf("got depth %v, expected 0.4", records[1].Depth)
	}
	if records[1].Center != (geometry.PointInt{X: 55, Y: 60}) {
		t.Errorf("got center %+v", records[1].Center)
	}
}

func TestDBSaveTileIdempotent(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	craters := []detect.Candidate{{Diameter: 2, Circularity: 0.8, Confidence: 0.8}}
	for i := 0; i < 3; i++ {
		if err := db.SaveTile(ctx, "themis", -30, 0, craters); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	records, err := db.CratersBySource(ctx, "themis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records after re-saves, expected 1", len(records))
	}
}

func TestDBUnknownSource(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	records, err := db.CratersBySource(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, expected 0", len(records))
	}
}

func TestDBSources(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	crater := []detect.Candidate{{Diameter: 1}}
	if err := db.SaveTile(ctx, "themis", -30, 0, crater); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveTile(ctx, "hirise", 0, 0, crater); err != nil {
		t.Fatal(err)
	}

	sources, err := db.Sources(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 2 || sources[0] != "hirise" || sources[1] != "themis" {
		t.Errorf("got %v, expected [hirise themis]", sources)
	}
}
