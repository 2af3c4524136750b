package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/domain"
	placementsvc "github.com/vmplace/vmplace/internal/services/placement"
)

// Ensure HostRepository implements the service interface.
var _ placementsvc.HostRepository = (*HostRepository)(nil)

// HostRepository implements the host repository using PostgreSQL. The
// position column preserves insertion order across round trips so the
// placement tie-break stays stable.
type HostRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewHostRepository creates a new PostgreSQL host repository.
func NewHostRepository(db *DB, logger *zap.Logger) *HostRepository {
	return &HostRepository{
		db:     db,
		logger: logger.With(zap.String("repository", "host")),
	}
}

// List returns all hosts in stored order.
func (r *HostRepository) List(ctx context.Context) ([]domain.Host, error) {
	query := `
		SELECT id, cpu_capacity, ram_capacity, energy, cost
		FROM hosts
		ORDER BY position
	`

	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list hosts", zap.Error(err))
		return nil, fmt.Errorf("list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []domain.Host
	for rows.Next() {
		var h domain.Host
		if err := rows.Scan(&h.ID, &h.CPUCapacity, &h.RAMCapacity, &h.Energy, &h.Cost); err != nil {
			return nil, fmt.Errorf("scan host: %w", err)
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

// Get retrieves a host by ID.
func (r *HostRepository) Get(ctx context.Context, id string) (domain.Host, error) {
	query := `
		SELECT id, cpu_capacity, ram_capacity, energy, cost
		FROM hosts
		WHERE id = $1
	`

	var h domain.Host
	err := r.db.pool.QueryRow(ctx, query, id).Scan(&h.ID, &h.CPUCapacity, &h.RAMCapacity, &h.Energy, &h.Cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Host{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Host{}, fmt.Errorf("get host %s: %w", id, err)
	}
	return h, nil
}

// Replace swaps the stored host set atomically, preserving order.
func (r *HostRepository) Replace(ctx context.Context, hosts []domain.Host) error {
	for _, h := range hosts {
		if err := h.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace hosts: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM hosts`); err != nil {
		return fmt.Errorf("clear hosts: %w", err)
	}

	query := `
		INSERT INTO hosts (id, cpu_capacity, ram_capacity, energy, cost, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, h := range hosts {
		if _, err := tx.Exec(ctx, query, h.ID, h.CPUCapacity, h.RAMCapacity, h.Energy, h.Cost, i); err != nil {
			r.logger.Error("Failed to store host", zap.Error(err), zap.String("host_id", h.ID))
			return fmt.Errorf("store host %s: %w", h.ID, err)
		}
	}

	return tx.Commit(ctx)
}
