package domain

import "fmt"

// VMDemand is the resource request of one incoming VM. A demand record
// is immutable once read and is consumed by exactly one placement
// decision.
type VMDemand struct {
	ID        string  `json:"vm_id"`
	CPUDemand float64 `json:"cpu_demand"`
	RAMDemand float64 `json:"ram_demand"`
}

// Validate checks that the demand record is well formed.
func (v VMDemand) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("%w: vm id is empty", ErrInvalidArgument)
	}
	if v.CPUDemand <= 0 {
		return fmt.Errorf("%w: vm %s has non-positive cpu demand", ErrInvalidArgument, v.ID)
	}
	if v.RAMDemand <= 0 {
		return fmt.Errorf("%w: vm %s has non-positive ram demand", ErrInvalidArgument, v.ID)
	}
	return nil
}

// Weights tunes the greedy placement score. The components are
// non-negative by convention and usually sum to 1, but the engine is
// deliberately weight-agnostic: callers validate, the scorer does not.
type Weights struct {
	CPU    float64 `json:"cpu"`
	Energy float64 `json:"energy"`
	Cost   float64 `json:"cost"`
}

// DefaultWeights returns the conventional weighting used when the
// caller does not supply one.
func DefaultWeights() Weights {
	return Weights{CPU: 0.4, Energy: 0.3, Cost: 0.3}
}
