package domain

import "time"

// Placement records the outcome of one greedy placement decision.
// AssignedHost is empty when no feasible host existed for the VM.
type Placement struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id"`
	VMID         string    `json:"vm_id"`
	AssignedHost string    `json:"assigned_host,omitempty"`
	Score        float64   `json:"score,omitempty"`
	Feasible     bool      `json:"feasible"`
	Weights      Weights   `json:"weights"`
	CreatedAt    time.Time `json:"created_at"`
}
