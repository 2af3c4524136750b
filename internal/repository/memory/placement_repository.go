package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmplace/vmplace/internal/domain"
	placementsvc "github.com/vmplace/vmplace/internal/services/placement"
)

// Ensure PlacementRepository implements the service interface.
var _ placementsvc.PlacementRepository = (*PlacementRepository)(nil)

// PlacementRepository is an in-memory implementation of the placement
// record repository.
type PlacementRepository struct {
	mu   sync.RWMutex
	data map[string]*domain.Placement
}

// NewPlacementRepository creates a new in-memory placement repository.
func NewPlacementRepository() *PlacementRepository {
	return &PlacementRepository{
		data: make(map[string]*domain.Placement),
	}
}

// Create stores a new placement record.
func (r *PlacementRepository) Create(ctx context.Context, p *domain.Placement) (*domain.Placement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	stored := *p
	r.data[stored.ID] = &stored

	out := stored
	return &out, nil
}

// ListByRunID returns all placements of one run, oldest first.
func (r *PlacementRepository) ListByRunID(ctx context.Context, runID string) ([]*domain.Placement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Placement
	for _, p := range r.data {
		if p.RunID == runID {
			clone := *p
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ListRecent returns up to limit placements, newest first.
func (r *PlacementRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Placement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Placement, 0, len(r.data))
	for _, p := range r.data {
		clone := *p
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
