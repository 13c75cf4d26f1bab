package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/neelabalan/growatt-dashboard/pkg/models"
)

// SQLiteStore writes samples to the local SQLite file the dashboard
// reads. Timestamps are stored as unix seconds; re-written samples
// replace the previous value for the same timestamp.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens the database file and initializes the schema
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{conn: conn}
	if err := store.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// initSchema creates the pac and kwh tables the dashboard queries
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pac (
		timestamp INTEGER PRIMARY KEY,
		watt REAL NOT NULL,
		plant_id TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS kwh (
		timestamp INTEGER PRIMARY KEY,
		kilowatthour REAL NOT NULL,
		plant_id TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_pac_plant ON pac(plant_id);
	CREATE INDEX IF NOT EXISTS idx_kwh_plant ON kwh(plant_id);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// WritePower upserts power samples into the pac table
func (s *SQLiteStore) WritePower(ctx context.Context, plantID string, samples []models.PowerSample) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO pac (timestamp, watt, plant_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx, sample.Time.Unix(), sample.Watts, plantID); err != nil {
			return fmt.Errorf("inserting power sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing power samples: %w", err)
	}
	return nil
}

// WriteEnergy upserts energy samples into the kwh table
func (s *SQLiteStore) WriteEnergy(ctx context.Context, plantID string, samples []models.EnergySample) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO kwh (timestamp, kilowatthour, plant_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx, sample.Time.Unix(), sample.KilowattHours, plantID); err != nil {
			return fmt.Errorf("inserting energy sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing energy samples: %w", err)
	}
	return nil
}

// TableStats summarizes one table for the stats command
type TableStats struct {
	Rows   int64
	Oldest time.Time
	Newest time.Time
}

// PowerStats reports row count and time range of the pac table
func (s *SQLiteStore) PowerStats(ctx context.Context) (*TableStats, error) {
	return s.tableStats(ctx, "pac")
}

// EnergyStats reports row count and time range of the kwh table
func (s *SQLiteStore) EnergyStats(ctx context.Context) (*TableStats, error) {
	return s.tableStats(ctx, "kwh")
}

func (s *SQLiteStore) tableStats(ctx context.Context, table string) (*TableStats, error) {
	query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(MIN(timestamp), 0), COALESCE(MAX(timestamp), 0) FROM %s`, table)

	var stats TableStats
	var oldest, newest int64
	if err := s.conn.QueryRowContext(ctx, query).Scan(&stats.Rows, &oldest, &newest); err != nil {
		return nil, fmt.Errorf("querying %s stats: %w", table, err)
	}

	if stats.Rows > 0 {
		stats.Oldest = time.Unix(oldest, 0)
		stats.Newest = time.Unix(newest, 0)
	}
	return &stats, nil
}
