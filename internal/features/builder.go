package features

import (
	"github.com/vmplace/vmplace/internal/domain"
)

// Feature vector layout. The order is part of the predictor contract
// and must match the layout the artifact was trained against.
const (
	IdxVM = iota
	IdxCPU
	IdxMemory
	IdxNetworkIO
	IdxPower
	IdxCPUMemRatio
	IdxPowerPerCPU

	VectorLen
)

// Names lists the feature names in vector order.
func Names() []string {
	return []string{"vm", "cpu", "memory", "network_io", "power", "cpu_mem_ratio", "power_per_cpu"}
}

// Vector builds the fixed-order feature vector for a telemetry sample.
// The derived ratios come from the shared TelemetrySample helpers, so
// the scoring path and the inference path always agree on them.
func Vector(sample domain.TelemetrySample, vocab *Vocabulary) ([]float64, error) {
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	code, err := vocab.Encode(sample.VM)
	if err != nil {
		return nil, err
	}

	vec := make([]float64, VectorLen)
	vec[IdxVM] = float64(code)
	vec[IdxCPU] = sample.CPU
	vec[IdxMemory] = sample.Memory
	vec[IdxNetworkIO] = sample.NetworkIO
	vec[IdxPower] = sample.Power
	vec[IdxCPUMemRatio] = sample.CPUMemRatio()
	vec[IdxPowerPerCPU] = sample.PowerPerCPU()
	return vec, nil
}
