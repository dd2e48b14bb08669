package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prospect-scout/internal/types"
)

// InsertDiscovery stores a new discovery. The (company_domain, source_ref)
// pair is unique: a repeat sighting from the same source is skipped and
// reported via created=false rather than an error.
func (db *DB) InsertDiscovery(ctx context.Context, d *types.Discovery) (created bool, err error) {
	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO discoveries (source_kind, source_ref, company_domain, trigger_text, matched_keywords, tags, confidence_score, status, discovered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 ON CONFLICT (company_domain, source_ref) DO NOTHING
		 RETURNING id`,
		d.SourceKind, d.SourceRef, d.CompanyDomain, d.TriggerText,
		d.MatchedKeywords, d.Tags, d.ConfidenceScore, d.Status,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert discovery: %w", err)
	}
	d.ID = id
	return true, nil
}

// HasDiscoveryForDomain reports whether any discovery exists for a company
// domain, regardless of source. Used to mark later sightings of a known
// company as duplicates.
func (db *DB) HasDiscoveryForDomain(ctx context.Context, companyDomain string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM discoveries WHERE company_domain = $1)`,
		companyDomain,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check discoveries for %s: %w", companyDomain, err)
	}
	return exists, nil
}

// GetDiscovery retrieves a discovery by ID. Returns (nil, nil) when absent.
func (db *DB) GetDiscovery(ctx context.Context, id uuid.UUID) (*types.Discovery, error) {
	var d types.Discovery
	err := db.pool.QueryRow(ctx,
		`SELECT id, source_kind, source_ref, company_domain, trigger_text, matched_keywords, tags, confidence_score, status, discovered_at
		 FROM discoveries WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.SourceKind, &d.SourceRef, &d.CompanyDomain, &d.TriggerText,
		&d.MatchedKeywords, &d.Tags, &d.ConfidenceScore, &d.Status, &d.DiscoveredAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get discovery: %w", err)
	}
	return &d, nil
}

// DiscoveryFilters holds optional filters for listing discoveries
type DiscoveryFilters struct {
	Status        types.DiscoveryStatus
	MinConfidence int
	Limit         int
}

// ListDiscoveries retrieves discoveries with optional filters, newest first.
func (db *DB) ListDiscoveries(ctx context.Context, filters DiscoveryFilters) ([]types.Discovery, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, source_kind, source_ref, company_domain, trigger_text, matched_keywords, tags, confidence_score, status, discovered_at
		FROM discoveries WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}
	if filters.MinConfidence > 0 {
		query += fmt.Sprintf(" AND confidence_score >= $%d", argNum)
		args = append(args, filters.MinConfidence)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY discovered_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list discoveries: %w", err)
	}
	defer rows.Close()

	var discoveries []types.Discovery
	for rows.Next() {
		var d types.Discovery
		if err := rows.Scan(&d.ID, &d.SourceKind, &d.SourceRef, &d.CompanyDomain, &d.TriggerText,
			&d.MatchedKeywords, &d.Tags, &d.ConfidenceScore, &d.Status, &d.DiscoveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan discovery: %w", err)
		}
		discoveries = append(discoveries, d)
	}
	return discoveries, nil
}

// UpdateDiscoveryStatus moves a discovery to a new lifecycle state. The
// caller is responsible for validating the transition first.
func (db *DB) UpdateDiscoveryStatus(ctx context.Context, id uuid.UUID, status types.DiscoveryStatus) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE discoveries SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update discovery status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("discovery not found: %s", id)
	}
	return nil
}
