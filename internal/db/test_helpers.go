package db

import (
	"path/filepath"
	"testing"
	"time"
)

// Helper function for creating pointer values
func strPtr(s string) *string {
	return &s
}

// newTestDB creates a fully migrated database under a per-test temp
// directory. The handle is closed automatically when the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_terrain.db")
	database, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database
}

// recordTestLoad inserts a successful load record with representative grid
// numbers and returns it.
func recordTestLoad(t *testing.T, database *DB, id, name string, loadedAt time.Time) *LoadRecord {
	t.Helper()

	rec := &LoadRecord{
		ID:          id,
		Name:        name,
		Source:      "upload",
		Outcome:     LoadOutcomeOK,
		Columns:     10,
		Rows:        5,
		XMin:        0,
		XMax:        90,
		YMin:        0,
		YMax:        40,
		MinHeight:   100,
		MaxHeight:   300,
		HeightRange: 200,
		ValidCells:  48,
		NullCells:   2,
		DurationMs:  12,
		LoadedAt:    loadedAt,
	}

	if err := database.RecordLoad(rec); err != nil {
		t.Fatalf("RecordLoad failed: %v", err)
	}

	return rec
}
