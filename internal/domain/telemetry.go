package domain

import (
	"fmt"
	"math"
)

// TelemetrySample is one raw measurement of a running VM, the input to
// the model-assisted placement path.
type TelemetrySample struct {
	VM        string  `json:"vm"`
	CPU       float64 `json:"cpu"`        // percent
	Memory    float64 `json:"memory"`     // GB
	NetworkIO float64 `json:"network_io"` // GB/s
	Power     float64 `json:"power"`      // watts
}

// Validate rejects malformed telemetry at the construction boundary so
// that scoring never has to re-check its inputs.
func (s TelemetrySample) Validate() error {
	if s.VM == "" {
		return fmt.Errorf("%w: vm label is empty", ErrInvalidArgument)
	}
	for name, v := range map[string]float64{
		"cpu":        s.CPU,
		"memory":     s.Memory,
		"network_io": s.NetworkIO,
		"power":      s.Power,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidArgument, name)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidArgument, name)
		}
	}
	return nil
}

// CPUMemRatio returns cpu/memory, or 0 when memory is exactly 0. The
// same guard is shared by the feature and objective paths so the two
// always agree.
func (s TelemetrySample) CPUMemRatio() float64 {
	if s.Memory == 0 {
		return 0.0
	}
	return s.CPU / s.Memory
}

// PowerPerCPU returns power/cpu, or 0 when cpu is exactly 0.
func (s TelemetrySample) PowerPerCPU() float64 {
	if s.CPU == 0 {
		return 0.0
	}
	return s.Power / s.CPU
}

// ObjectiveWeights tunes the reported proxy-objective blend.
type ObjectiveWeights struct {
	Cost   float64 `json:"cost"`
	Energy float64 `json:"energy"`
	Load   float64 `json:"load"`
}

// IsZero reports whether no weighting was supplied.
func (w ObjectiveWeights) IsZero() bool {
	return w.Cost == 0 && w.Energy == 0 && w.Load == 0
}

// DefaultObjectiveWeights returns the weighting used when the caller
// does not supply one.
func DefaultObjectiveWeights() ObjectiveWeights {
	return ObjectiveWeights{Cost: 0.34, Energy: 0.33, Load: 0.33}
}
