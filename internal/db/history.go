package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Outcomes recorded in load_history.
const (
	LoadOutcomeOK    = "ok"
	LoadOutcomeError = "error"
)

// LoadRecord is one row of the load audit trail. Successful loads carry
// the header and height summary of the grid that became current; failed
// loads carry the error fields and zeroed grid numbers. Samples are never
// stored.
type LoadRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Outcome     string    `json:"outcome"`
	ErrorKind   *string   `json:"error_kind,omitempty"`
	ErrorDetail *string   `json:"error_detail,omitempty"`
	Columns     int       `json:"columns"`
	Rows        int       `json:"rows"`
	XMin        float64   `json:"x_min"`
	XMax        float64   `json:"x_max"`
	YMin        float64   `json:"y_min"`
	YMax        float64   `json:"y_max"`
	MinHeight   float64   `json:"min_height"`
	MaxHeight   float64   `json:"max_height"`
	HeightRange float64   `json:"height_range"`
	ValidCells  int       `json:"valid_cells"`
	NullCells   int       `json:"null_cells"`
	DurationMs  int64     `json:"duration_ms"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// RecordLoad inserts a load record. LoadedAt defaults to the current time
// when unset.
func (db *DB) RecordLoad(rec *LoadRecord) error {
	if rec.LoadedAt.IsZero() {
		rec.LoadedAt = time.Now()
	}

	query := `
		INSERT INTO load_history (
			id, name, source, outcome, error_kind, error_detail,
			column_count, row_count, x_min, x_max, y_min, y_max,
			min_height, max_height, height_range, valid_cells, null_cells,
			duration_ms, loaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(
		query,
		rec.ID,
		rec.Name,
		rec.Source,
		rec.Outcome,
		rec.ErrorKind,
		rec.ErrorDetail,
		rec.Columns,
		rec.Rows,
		rec.XMin,
		rec.XMax,
		rec.YMin,
		rec.YMax,
		rec.MinHeight,
		rec.MaxHeight,
		rec.HeightRange,
		rec.ValidCells,
		rec.NullCells,
		rec.DurationMs,
		rec.LoadedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record load: %w", err)
	}

	return nil
}

// GetLoadRecord retrieves a load record by ID
func (db *DB) GetLoadRecord(id string) (*LoadRecord, error) {
	query := `
		SELECT
			id, name, source, outcome, error_kind, error_detail,
			column_count, row_count, x_min, x_max, y_min, y_max,
			min_height, max_height, height_range, valid_cells, null_cells,
			duration_ms, loaded_at
		FROM load_history
		WHERE id = ?
	`

	var rec LoadRecord
	var loadedAtUnix int64

	err := db.QueryRow(query, id).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Source,
		&rec.Outcome,
		&rec.ErrorKind,
		&rec.ErrorDetail,
		&rec.Columns,
		&rec.Rows,
		&rec.XMin,
		&rec.XMax,
		&rec.YMin,
		&rec.YMax,
		&rec.MinHeight,
		&rec.MaxHeight,
		&rec.HeightRange,
		&rec.ValidCells,
		&rec.NullCells,
		&rec.DurationMs,
		&loadedAtUnix,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("load record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get load record: %w", err)
	}

	rec.LoadedAt = time.Unix(loadedAtUnix, 0)

	return &rec, nil
}

// LoadHistory retrieves the most recent load records, newest first.
func (db *DB) LoadHistory(limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			id, name, source, outcome, error_kind, error_detail,
			column_count, row_count, x_min, x_max, y_min, y_max,
			min_height, max_height, height_range, valid_cells, null_cells,
			duration_ms, loaded_at
		FROM load_history
		ORDER BY loaded_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query load history: %w", err)
	}
	defer rows.Close()

	var records []LoadRecord
	for rows.Next() {
		var rec LoadRecord
		var loadedAtUnix int64

		err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Source,
			&rec.Outcome,
			&rec.ErrorKind,
			&rec.ErrorDetail,
			&rec.Columns,
			&rec.Rows,
			&rec.XMin,
			&rec.XMax,
			&rec.YMin,
			&rec.YMax,
			&rec.MinHeight,
			&rec.MaxHeight,
			&rec.HeightRange,
			&rec.ValidCells,
			&rec.NullCells,
			&rec.DurationMs,
			&loadedAtUnix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan load record: %w", err)
		}

		rec.LoadedAt = time.Unix(loadedAtUnix, 0)

		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating load history: %w", err)
	}

	return records, nil
}

// LoadCounts returns how many loads were recorded in total and how many
// succeeded and failed.
func (db *DB) LoadCounts() (total, succeeded, failed int, err error) {
	err = db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0)
		FROM load_history
	`, LoadOutcomeOK, LoadOutcomeError).Scan(&total, &succeeded, &failed)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count loads: %w", err)
	}

	return total, succeeded, failed, nil
}
