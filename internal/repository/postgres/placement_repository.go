package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/domain"
	placementsvc "github.com/vmplace/vmplace/internal/services/placement"
)

// Ensure PlacementRepository implements the service interface.
var _ placementsvc.PlacementRepository = (*PlacementRepository)(nil)

// PlacementRepository implements the placement record repository using
// PostgreSQL.
type PlacementRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPlacementRepository creates a new PostgreSQL placement repository.
func NewPlacementRepository(db *DB, logger *zap.Logger) *PlacementRepository {
	return &PlacementRepository{
		db:     db,
		logger: logger.With(zap.String("repository", "placement")),
	}
}

// Create stores one placement decision.
func (r *PlacementRepository) Create(ctx context.Context, p *domain.Placement) (*domain.Placement, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	weightsJSON, err := json.Marshal(p.Weights)
	if err != nil {
		return nil, fmt.Errorf("marshal weights: %w", err)
	}

	query := `
		INSERT INTO placements (id, run_id, vm_id, assigned_host, score, feasible, weights)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err = r.db.pool.QueryRow(ctx, query,
		p.ID,
		p.RunID,
		p.VMID,
		nullString(p.AssignedHost),
		p.Score,
		p.Feasible,
		weightsJSON,
	).Scan(&p.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create placement", zap.Error(err), zap.String("vm_id", p.VMID))
		return nil, fmt.Errorf("create placement: %w", err)
	}

	clone := *p
	return &clone, nil
}

// ListByRunID returns all placements of one run, oldest first.
func (r *PlacementRepository) ListByRunID(ctx context.Context, runID string) ([]*domain.Placement, error) {
	query := `
		SELECT id, run_id, vm_id, assigned_host, score, feasible, weights, created_at
		FROM placements
		WHERE run_id = $1
		ORDER BY created_at
	`
	return r.query(ctx, query, runID)
}

// ListRecent returns up to limit placements, newest first.
func (r *PlacementRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Placement, error) {
	query := `
		SELECT id, run_id, vm_id, assigned_host, score, feasible, weights, created_at
		FROM placements
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.query(ctx, query, limit)
}

func (r *PlacementRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Placement, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var result []*domain.Placement
	for rows.Next() {
		var (
			p            domain.Placement
			assignedHost *string
			weightsJSON  []byte
		)
		if err := rows.Scan(&p.ID, &p.RunID, &p.VMID, &assignedHost, &p.Score, &p.Feasible, &weightsJSON, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		if assignedHost != nil {
			p.AssignedHost = *assignedHost
		}
		if err := json.Unmarshal(weightsJSON, &p.Weights); err != nil {
			return nil, fmt.Errorf("unmarshal weights: %w", err)
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

// nullString converts an empty string to a NULL-able pointer.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
