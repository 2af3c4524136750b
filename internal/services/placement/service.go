package placement

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/domain"
	"github.com/vmplace/vmplace/internal/hostpool"
	"github.com/vmplace/vmplace/internal/placement"
	"github.com/vmplace/vmplace/internal/scenario"
)

// Cache invalidates derived host state after a run. Implementations may
// be absent in development mode.
type Cache interface {
	InvalidateHosts(ctx context.Context) error
}

// Service orchestrates greedy placement rounds: it builds a pool from
// the current host set, places the incoming VMs sequentially, persists
// the decisions, and stores the drained capacities back.
//
// Debits are order-sensitive, so a mutex serializes rounds; each round
// completes fully before the next starts.
type Service struct {
	hostRepo      HostRepository
	placementRepo PlacementRepository
	engine        *placement.Engine
	generator     *scenario.Generator
	cache         Cache
	logger        *zap.Logger

	runMu sync.Mutex
}

// NewService creates a placement service. cache may be nil.
func NewService(
	hostRepo HostRepository,
	placementRepo PlacementRepository,
	engine *placement.Engine,
	generator *scenario.Generator,
	cache Cache,
	logger *zap.Logger,
) *Service {
	return &Service{
		hostRepo:      hostRepo,
		placementRepo: placementRepo,
		engine:        engine,
		generator:     generator,
		cache:         cache,
		logger:        logger.With(zap.String("component", "placement-service")),
	}
}

// RunOutcome is the result of one placement round.
type RunOutcome struct {
	RunID      string             `json:"run_id"`
	Placements []placement.Result `json:"placements"`
	Hosts      []domain.Host      `json:"hosts"`
}

// Run places the given VMs against the given hosts and persists the
// outcome. A VM without a feasible host is recorded as unplaced.
func (s *Service) Run(ctx context.Context, hosts []domain.Host, vms []domain.VMDemand, weights domain.Weights) (*RunOutcome, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	pool, err := hostpool.New(hosts)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	results, err := s.engine.PlaceAll(pool, vms, weights)
	if err != nil {
		return nil, fmt.Errorf("placement run %s: %w", runID, err)
	}

	for _, res := range results {
		record := &domain.Placement{
			RunID:        runID,
			VMID:         res.VMID,
			AssignedHost: res.HostID,
			Score:        res.Score,
			Feasible:     res.Feasible,
			Weights:      weights,
		}
		if _, err := s.placementRepo.Create(ctx, record); err != nil {
			return nil, fmt.Errorf("persist placement of %s: %w", res.VMID, err)
		}
	}

	remaining := pool.Candidates()
	if err := s.hostRepo.Replace(ctx, remaining); err != nil {
		return nil, fmt.Errorf("persist host capacities: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateHosts(ctx); err != nil {
			s.logger.Warn("Failed to invalidate host cache", zap.Error(err))
		}
	}

	placed := 0
	for _, r := range results {
		if r.Feasible {
			placed++
		}
	}
	s.logger.Info("Placement run completed",
		zap.String("run_id", runID),
		zap.Int("vms", len(vms)),
		zap.Int("placed", placed),
	)

	return &RunOutcome{RunID: runID, Placements: results, Hosts: remaining}, nil
}

// RunScenario generates a fresh random scenario of the given size and
// places it. This backs the demo placement endpoint.
func (s *Service) RunScenario(ctx context.Context, hostCount, vmCount int, weights domain.Weights) (*RunOutcome, error) {
	hosts := s.generator.Hosts(hostCount)
	vms := s.generator.VMs(vmCount)
	return s.Run(ctx, hosts, vms, weights)
}

// Hosts returns the current host set.
func (s *Service) Hosts(ctx context.Context) ([]domain.Host, error) {
	return s.hostRepo.List(ctx)
}

// IncomingVMs generates a batch of pending VM demands.
func (s *Service) IncomingVMs(n int) []domain.VMDemand {
	return s.generator.VMs(n)
}

// SimulateTelemetry generates one random telemetry sample.
func (s *Service) SimulateTelemetry() domain.TelemetrySample {
	return s.generator.TelemetrySample()
}

// History returns recent placement records.
func (s *Service) History(ctx context.Context, limit int) ([]*domain.Placement, error) {
	return s.placementRepo.ListRecent(ctx, limit)
}
