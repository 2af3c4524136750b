// Package placement implements greedy VM placement logic.
package placement

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/domain"
	"github.com/vmplace/vmplace/internal/hostpool"
)

// Engine chooses the best host for one VM given current pool state and
// caller-supplied weights. It holds no per-call state; identical inputs
// always produce identical decisions.
type Engine struct {
	logger *zap.Logger
}

// New creates a new placement engine.
func New(logger *zap.Logger) *Engine {
	return &Engine{
		logger: logger.With(zap.String("component", "placement-engine")),
	}
}

// Result is the outcome of one placement decision. When Feasible is
// false no host could fit the VM and the pool was left untouched.
type Result struct {
	VMID     string  `json:"vm_id"`
	HostID   string  `json:"host_id,omitempty"`
	Score    float64 `json:"score,omitempty"`
	Feasible bool    `json:"feasible"`
}

// Place selects the lowest-scoring feasible host for the VM, debits its
// capacity, and returns the decision. Infeasibility is a normal result
// value, not an error; errors indicate a broken pool/demand state.
func (e *Engine) Place(pool *hostpool.Pool, vm domain.VMDemand, weights domain.Weights) (Result, error) {
	if err := vm.Validate(); err != nil {
		return Result{}, err
	}

	best := Result{VMID: vm.ID}
	bestScore := 0.0

	for _, host := range pool.Candidates() {
		// Hosts that cannot fulfil the demand are skipped, not scored.
		if !host.CanFit(vm) {
			continue
		}

		cpuScore := vm.CPUDemand / host.CPUCapacity
		total := weights.CPU*cpuScore + weights.Energy*host.Energy + weights.Cost*host.Cost

		// Strict improvement only: on equal scores the host seen first
		// in pool order keeps the slot.
		if !best.Feasible || total < bestScore {
			best.HostID = host.ID
			best.Score = total
			best.Feasible = true
			bestScore = total
		}
	}

	if !best.Feasible {
		e.logger.Debug("No feasible host for VM",
			zap.String("vm_id", vm.ID),
			zap.Int("hosts_checked", pool.Len()),
		)
		return best, nil
	}

	if err := pool.Debit(best.HostID, vm.CPUDemand, vm.RAMDemand); err != nil {
		// The chosen host passed the feasibility check, so a failed
		// debit means the pool changed underneath us.
		return Result{}, fmt.Errorf("debit after placement of %s: %w", vm.ID, err)
	}

	e.logger.Debug("Placed VM",
		zap.String("vm_id", vm.ID),
		zap.String("host_id", best.HostID),
		zap.Float64("score", best.Score),
	)

	return best, nil
}

// PlaceAll places a list of VMs sequentially against one pool. Each
// decision sees the capacity effects of the previous ones; order
// matters. A VM with no feasible host is recorded and skipped, while a
// debit failure aborts the whole run.
func (e *Engine) PlaceAll(pool *hostpool.Pool, vms []domain.VMDemand, weights domain.Weights) ([]Result, error) {
	results := make([]Result, 0, len(vms))
	for _, vm := range vms {
		res, err := e.Place(pool, vm, weights)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
