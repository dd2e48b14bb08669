package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prospect-scout/internal/types"
)

// CreateRun records the start of a scan run and returns its ID
func (db *DB) CreateRun(ctx context.Context, source string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO scan_runs (source) VALUES ($1) RETURNING id`,
		source,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun stores the final counters for a scan run
func (db *DB) CompleteRun(ctx context.Context, summary *types.RunSummary) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE scan_runs
		 SET items_scanned = $1, discoveries_created = $2, duplicates_skipped = $3,
		     auto_promoted = $4, errors = $5, completed_at = NOW()
		 WHERE id = $6`,
		summary.ItemsScanned, summary.DiscoveriesCreated, summary.DuplicatesSkipped,
		summary.AutoPromoted, summary.Errors, summary.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a scan run by ID. Returns (nil, nil) when absent.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*types.RunSummary, error) {
	var run types.RunSummary
	err := db.pool.QueryRow(ctx,
		`SELECT id, source, items_scanned, discoveries_created, duplicates_skipped, auto_promoted, errors, started_at, completed_at
		 FROM scan_runs WHERE id = $1`,
		runID,
	).Scan(&run.RunID, &run.Source, &run.ItemsScanned, &run.DiscoveriesCreated,
		&run.DuplicatesSkipped, &run.AutoPromoted, &run.Errors, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves recent scan runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]types.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, source, items_scanned, discoveries_created, duplicates_skipped, auto_promoted, errors, started_at, completed_at
		 FROM scan_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunSummary
	for rows.Next() {
		var run types.RunSummary
		if err := rows.Scan(&run.RunID, &run.Source, &run.ItemsScanned, &run.DiscoveriesCreated,
			&run.DuplicatesSkipped, &run.AutoPromoted, &run.Errors, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
