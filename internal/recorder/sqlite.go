package recorder

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"tepsim/internal/flowsheet"
)

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	step      INTEGER NOT NULL,
	sensor_id TEXT    NOT NULL,
	value     REAL    NOT NULL,
	units     TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_readings_step ON readings(step);
CREATE INDEX IF NOT EXISTS idx_readings_sensor ON readings(sensor_id);
`

// SQLite persists readings to a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and ensures the
// readings schema exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Record inserts one step's readings in a single transaction.
func (s *SQLite) Record(ctx context.Context, step int, readings []flowsheet.Reading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO readings (step, sensor_id, value, units) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, step, r.SensorID, r.Value, r.Units); err != nil {
			return fmt.Errorf("failed to insert reading for %s: %w", r.SensorID, err)
		}
	}
	return tx.Commit()
}

// Readings returns every reading recorded for one sensor in step order.
func (s *SQLite) Readings(ctx context.Context, sensorID string) ([]flowsheet.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, sensor_id, value, units FROM readings WHERE sensor_id = ? ORDER BY step`, sensorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var out []flowsheet.Reading
	for rows.Next() {
		var step int
		var r flowsheet.Reading
		if err := rows.Scan(&step, &r.SensorID, &r.Value, &r.Units); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StepCount returns the number of distinct recorded steps.
func (s *SQLite) StepCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT step) FROM readings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count steps: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }
