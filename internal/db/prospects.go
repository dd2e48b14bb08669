package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prospect-scout/internal/types"
)

// CreateProspect stores a new prospect for a team. At most one prospect
// exists per (team_id, company_domain): a second creation attempt is an
// idempotent no-op and returns the existing row.
func (db *DB) CreateProspect(ctx context.Context, p *types.Prospect) (created bool, err error) {
	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO prospects (team_id, company_domain, fit_score, fit_tags, connection_score, has_warm_intro, priority_score, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (team_id, company_domain) DO NOTHING
		 RETURNING id, created_at`,
		p.TeamID, p.CompanyDomain, p.FitScore, p.FitTags,
		p.ConnectionScore, p.HasWarmIntro, p.PriorityScore, p.Status,
	).Scan(&id, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			existing, gerr := db.GetProspectByDomain(ctx, p.TeamID, p.CompanyDomain)
			if gerr != nil {
				return false, gerr
			}
			if existing != nil {
				*p = *existing
			}
			return false, nil
		}
		return false, fmt.Errorf("failed to create prospect: %w", err)
	}
	p.ID = id
	return true, nil
}

const prospectColumns = `id, team_id, company_domain, fit_score, fit_tags, connection_score, has_warm_intro, priority_score, status, reviewed_at, user_override, created_at`

func scanProspect(row pgx.Row) (*types.Prospect, error) {
	var p types.Prospect
	err := row.Scan(&p.ID, &p.TeamID, &p.CompanyDomain, &p.FitScore, &p.FitTags,
		&p.ConnectionScore, &p.HasWarmIntro, &p.PriorityScore, &p.Status,
		&p.ReviewedAt, &p.UserOverride, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProspect retrieves a prospect by ID. Returns (nil, nil) when absent.
func (db *DB) GetProspect(ctx context.Context, id uuid.UUID) (*types.Prospect, error) {
	p, err := scanProspect(db.pool.QueryRow(ctx,
		`SELECT `+prospectColumns+` FROM prospects WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prospect: %w", err)
	}
	return p, nil
}

// GetProspectByDomain retrieves a team's prospect for a company domain.
func (db *DB) GetProspectByDomain(ctx context.Context, teamID, companyDomain string) (*types.Prospect, error) {
	p, err := scanProspect(db.pool.QueryRow(ctx,
		`SELECT `+prospectColumns+` FROM prospects WHERE team_id = $1 AND company_domain = $2`,
		teamID, companyDomain))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prospect by domain: %w", err)
	}
	return p, nil
}

// ProspectFilters holds optional filters for listing prospects
type ProspectFilters struct {
	TeamID string
	Status types.ProspectStatus
	Limit  int
}

// ListProspects retrieves prospects ordered by priority score, highest first.
func (db *DB) ListProspects(ctx context.Context, filters ProspectFilters) ([]types.Prospect, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.TeamID != "" {
		query += fmt.Sprintf(" AND team_id = $%d", argNum)
		args = append(args, filters.TeamID)
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY priority_score DESC, created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prospects: %w", err)
	}
	defer rows.Close()

	var prospects []types.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prospect: %w", err)
		}
		prospects = append(prospects, *p)
	}
	return prospects, nil
}

// UpdateProspectConnection stores the aggregated relationship result for a
// prospect: paths as JSON, the normalized connection score, the warm-intro
// flag, and the recomputed priority.
func (db *DB) UpdateProspectConnection(ctx context.Context, id uuid.UUID, conns types.CompanyConnections, priorityScore float64) error {
	pathsJSON, err := json.Marshal(conns.Paths)
	if err != nil {
		return fmt.Errorf("failed to marshal connection paths: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE prospects
		 SET connection_score = $1, has_warm_intro = $2, priority_score = $3, connection_paths = $4, updated_at = NOW()
		 WHERE id = $5`,
		conns.ConnectionScore, conns.HasWarmIntro, priorityScore, pathsJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update prospect connection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("prospect not found: %s", id)
	}
	return nil
}

// GetProspectPaths retrieves the stored introduction paths for a prospect.
func (db *DB) GetProspectPaths(ctx context.Context, id uuid.UUID) ([]types.ConnectionPath, error) {
	var pathsJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT connection_paths FROM prospects WHERE id = $1`, id,
	).Scan(&pathsJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prospect paths: %w", err)
	}
	if len(pathsJSON) == 0 {
		return nil, nil
	}

	var paths []types.ConnectionPath
	if err := json.Unmarshal(pathsJSON, &paths); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection paths: %w", err)
	}
	return paths, nil
}

// UpdateProspectReview writes the review-facing fields of a prospect:
// status, reviewed timestamp, and the user override verdict. A nil
// reviewedAt or userOverride clears the column.
func (db *DB) UpdateProspectReview(ctx context.Context, id uuid.UUID, status types.ProspectStatus, reviewedAt *time.Time, userOverride *bool) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE prospects SET status = $1, reviewed_at = $2, user_override = $3, updated_at = NOW() WHERE id = $4`,
		status, reviewedAt, userOverride, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update prospect review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("prospect not found: %s", id)
	}
	return nil
}
