// Package hostpool holds the capacity-tracked host set for one
// placement session. Hosts live in an insertion-ordered arena (a slice
// plus an id->index map) so that candidate iteration order, and with it
// tie-breaking, is deterministic.
package hostpool

import (
	"fmt"

	"github.com/vmplace/vmplace/internal/domain"
)

// Pool owns a set of hosts for the duration of one placement run.
// It is not internally synchronized; callers serialize access.
type Pool struct {
	hosts []domain.Host
	index map[string]int
}

// New builds a pool from the given hosts, preserving order. Every host
// is validated and duplicate IDs are rejected.
func New(hosts []domain.Host) (*Pool, error) {
	p := &Pool{
		hosts: make([]domain.Host, 0, len(hosts)),
		index: make(map[string]int, len(hosts)),
	}
	for _, h := range hosts {
		if err := h.Validate(); err != nil {
			return nil, err
		}
		if _, ok := p.index[h.ID]; ok {
			return nil, fmt.Errorf("%w: host %s", domain.ErrAlreadyExists, h.ID)
		}
		p.index[h.ID] = len(p.hosts)
		p.hosts = append(p.hosts, h)
	}
	return p, nil
}

// Len returns the number of hosts in the pool.
func (p *Pool) Len() int {
	return len(p.hosts)
}

// Candidates returns the hosts in insertion order. The returned slice
// is a copy; mutating it does not affect the pool.
func (p *Pool) Candidates() []domain.Host {
	out := make([]domain.Host, len(p.hosts))
	copy(out, p.hosts)
	return out
}

// Get returns the host with the given ID.
func (p *Pool) Get(hostID string) (domain.Host, error) {
	i, ok := p.index[hostID]
	if !ok {
		return domain.Host{}, fmt.Errorf("%w: host %s", domain.ErrNotFound, hostID)
	}
	return p.hosts[i], nil
}

// Debit subtracts the given amounts from a host's remaining capacity.
// It fails without mutating anything if either capacity would go
// negative.
func (p *Pool) Debit(hostID string, cpu, ram float64) error {
	i, ok := p.index[hostID]
	if !ok {
		return fmt.Errorf("%w: host %s", domain.ErrNotFound, hostID)
	}
	h := p.hosts[i]
	if h.CPUCapacity-cpu < 0 {
		return fmt.Errorf("%w: host %s cpu %.2f < debit %.2f",
			domain.ErrCapacityExceeded, hostID, h.CPUCapacity, cpu)
	}
	if h.RAMCapacity-ram < 0 {
		return fmt.Errorf("%w: host %s ram %.2f < debit %.2f",
			domain.ErrCapacityExceeded, hostID, h.RAMCapacity, ram)
	}
	p.hosts[i].CPUCapacity -= cpu
	p.hosts[i].RAMCapacity -= ram
	return nil
}

// Snapshot returns an independent copy of the pool in its current state.
func (p *Pool) Snapshot() *Pool {
	clone := &Pool{
		hosts: make([]domain.Host, len(p.hosts)),
		index: make(map[string]int, len(p.index)),
	}
	copy(clone.hosts, p.hosts)
	for id, i := range p.index {
		clone.index[id] = i
	}
	return clone
}
