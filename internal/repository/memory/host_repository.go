// Package memory provides in-memory repository implementations for
// development and testing.
package memory

import (
	"context"
	"sync"

	"github.com/vmplace/vmplace/internal/domain"
	"github.com/vmplace/vmplace/internal/scenario"
	placementsvc "github.com/vmplace/vmplace/internal/services/placement"
)

// Ensure HostRepository implements the service interface.
var _ placementsvc.HostRepository = (*HostRepository)(nil)

// HostRepository is an in-memory implementation of the host repository.
// Hosts keep their insertion order, which placement tie-breaking
// depends on.
type HostRepository struct {
	mu    sync.RWMutex
	hosts []domain.Host
}

// NewHostRepository creates a new in-memory host repository.
func NewHostRepository() *HostRepository {
	return &HostRepository{}
}

// SeedDemoData loads the fixed reference scenario.
func (r *HostRepository) SeedDemoData() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts = scenario.FixedHosts()
}

// List returns all hosts in insertion order.
func (r *HostRepository) List(ctx context.Context) ([]domain.Host, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Host, len(r.hosts))
	copy(out, r.hosts)
	return out, nil
}

// Get retrieves a host by ID.
func (r *HostRepository) Get(ctx context.Context, id string) (domain.Host, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.hosts {
		if h.ID == id {
			return h, nil
		}
	}
	return domain.Host{}, domain.ErrNotFound
}

// Replace swaps the stored host set for the given one, preserving the
// given order. Used to persist remaining capacities after a run.
func (r *HostRepository) Replace(ctx context.Context, hosts []domain.Host) error {
	for _, h := range hosts {
		if err := h.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.hosts = make([]domain.Host, len(hosts))
	copy(r.hosts, hosts)
	return nil
}
