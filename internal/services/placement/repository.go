// Package placement provides the greedy placement orchestration service.
package placement

import (
	"context"

	"github.com/vmplace/vmplace/internal/domain"
)

// HostRepository defines the host data access needed by the placement service.
type HostRepository interface {
	// List returns all hosts in stable insertion order.
	List(ctx context.Context) ([]domain.Host, error)

	// Get retrieves a host by ID.
	Get(ctx context.Context, id string) (domain.Host, error)

	// Replace persists the host set, including remaining capacities,
	// in the given order.
	Replace(ctx context.Context, hosts []domain.Host) error
}

// PlacementRepository defines the placement record data access needed
// by the placement service.
type PlacementRepository interface {
	// Create stores one placement decision.
	Create(ctx context.Context, p *domain.Placement) (*domain.Placement, error)

	// ListByRunID returns all placements of one run, oldest first.
	ListByRunID(ctx context.Context, runID string) ([]*domain.Placement, error)

	// ListRecent returns up to limit placements, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.Placement, error)
}
