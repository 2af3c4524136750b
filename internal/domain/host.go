package domain

import "fmt"

// Host represents a physical hypervisor host with remaining capacity and
// static energy/cost coefficients. Capacities only decrease while a
// placement session runs; they never grow back mid-session.
type Host struct {
	ID          string  `json:"host_id"`
	CPUCapacity float64 `json:"cpu_capacity"`
	RAMCapacity float64 `json:"ram_capacity"`
	Energy      float64 `json:"energy"`
	Cost        float64 `json:"cost"`
}

// Validate checks that the host record is well formed. Capacity may be
// zero (a full host is still a valid host) but never negative; the
// energy and cost coefficients must be positive.
func (h Host) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("%w: host id is empty", ErrInvalidArgument)
	}
	if h.CPUCapacity < 0 {
		return fmt.Errorf("%w: host %s has negative cpu capacity", ErrInvalidArgument, h.ID)
	}
	if h.RAMCapacity < 0 {
		return fmt.Errorf("%w: host %s has negative ram capacity", ErrInvalidArgument, h.ID)
	}
	if h.Energy <= 0 {
		return fmt.Errorf("%w: host %s has non-positive energy coefficient", ErrInvalidArgument, h.ID)
	}
	if h.Cost <= 0 {
		return fmt.Errorf("%w: host %s has non-positive cost coefficient", ErrInvalidArgument, h.ID)
	}
	return nil
}

// CanFit reports whether the host's remaining capacity covers the VM's
// demand. Capacity is checked, never clamped.
func (h Host) CanFit(vm VMDemand) bool {
	return h.CPUCapacity >= vm.CPUDemand && h.RAMCapacity >= vm.RAMDemand
}
