package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fuzzydedup/internal/dedupe"
	"github.com/fuzzydedup/internal/tabular"
)

// Store persists completed deduplication runs. The engine itself never
// touches the database; callers opt in after a run finishes, so an
// aborted run leaves nothing behind.
type Store struct {
	db *sql.DB
}

// New creates a store over an open database connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Run describes one completed deduplication run.
type Run struct {
	ID             string    `json:"run_id"`
	SourceName     string    `json:"source_name"`
	RecordCount    int       `json:"record_count"`
	Threshold      float64   `json:"threshold"`
	PrefixLength   int       `json:"prefix_length"`
	GroupCount     int       `json:"group_count"`
	GroupedRecords int       `json:"grouped_records"`
	Comparisons    int       `json:"comparisons"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Init creates the schema if it does not exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS dedupe_run (
			run_id          UUID PRIMARY KEY,
			source_name     TEXT NOT NULL,
			record_count    INTEGER NOT NULL,
			threshold       DOUBLE PRECISION NOT NULL,
			prefix_length   INTEGER NOT NULL,
			group_count     INTEGER NOT NULL,
			grouped_records INTEGER NOT NULL,
			comparisons     INTEGER NOT NULL,
			started_at      TIMESTAMPTZ NOT NULL,
			completed_at    TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create dedupe_run table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS dedupe_assignment (
			run_id         UUID NOT NULL REFERENCES dedupe_run(run_id) ON DELETE CASCADE,
			record_idx     INTEGER NOT NULL,
			group_id       INTEGER NOT NULL,
			duplicate_rows TEXT NOT NULL,
			PRIMARY KEY (run_id, record_idx)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create dedupe_assignment table: %w", err)
	}

	return nil
}

// SaveRun writes a run and its assignments in one transaction. A fresh
// run id is generated when the run does not carry one.
func (s *Store) SaveRun(run *Run, assignments []dedupe.Assignment) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO dedupe_run (
			run_id, source_name, record_count, threshold, prefix_length,
			group_count, grouped_records, comparisons, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.ID, run.SourceName, run.RecordCount, run.Threshold, run.PrefixLength,
		run.GroupCount, run.GroupedRecords, run.Comparisons, run.StartedAt, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO dedupe_assignment (run_id, record_idx, group_id, duplicate_rows)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare assignment insert: %w", err)
	}
	defer stmt.Close()

	for idx, a := range assignments {
		if _, err := stmt.Exec(run.ID, idx, a.GroupID, tabular.FormatRows(a.DuplicateRows)); err != nil {
			return fmt.Errorf("failed to insert assignment %d: %w", idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(id string) (*Run, error) {
	run := &Run{}
	err := s.db.QueryRow(`
		SELECT run_id, source_name, record_count, threshold, prefix_length,
		       group_count, grouped_records, comparisons, started_at, completed_at
		FROM dedupe_run WHERE run_id = $1
	`, id).Scan(&run.ID, &run.SourceName, &run.RecordCount, &run.Threshold,
		&run.PrefixLength, &run.GroupCount, &run.GroupedRecords, &run.Comparisons,
		&run.StartedAt, &run.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT run_id, source_name, record_count, threshold, prefix_length,
		       group_count, grouped_records, comparisons, started_at, completed_at
		FROM dedupe_run
		ORDER BY completed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SourceName, &run.RecordCount, &run.Threshold,
			&run.PrefixLength, &run.GroupCount, &run.GroupedRecords, &run.Comparisons,
			&run.StartedAt, &run.CompletedAt); err != nil {
			continue
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stats summarizes all persisted runs.
type Stats struct {
	RunCount       int `json:"run_count"`
	RecordCount    int `json:"record_count"`
	GroupCount     int `json:"group_count"`
	GroupedRecords int `json:"grouped_records"`
}

// GetStats aggregates run totals for the stats endpoint.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(record_count), 0),
		       COALESCE(SUM(group_count), 0),
		       COALESCE(SUM(grouped_records), 0)
		FROM dedupe_run
	`).Scan(&stats.RunCount, &stats.RecordCount, &stats.GroupCount, &stats.GroupedRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate run stats: %w", err)
	}
	return stats, nil
}
