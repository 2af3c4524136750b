// Package objective derives normalized proxy cost, energy, and
// load-balance scores from raw VM telemetry. The scores approximate
// placement quality directly from measurements when no richer model is
// available, and are comparable across VMs because each is bounded.
package objective

import (
	"math"

	"github.com/vmplace/vmplace/internal/domain"
)

// Calibration constants of the scoring model. Downstream consumers
// compare historical reports, so these must not drift.
const (
	costPowerFactor   = 0.12
	costCPUFactor     = 0.05
	costNetBaseline   = 1.0 // GB/s free allowance before network counts
	costNetFactor     = 0.5
	energyPowerFactor = 0.9
	energyCPUFactor   = 0.2
	costScale         = 200.0
	energyScale       = 300.0
	loadScale         = 100.0
)

// Breakdown is the reported objective set for one telemetry sample.
// Proxies are rounded to 2 decimals, the weighted score to 3.
type Breakdown struct {
	Cost          float64                 `json:"cost"`
	Energy        float64                 `json:"energy"`
	LoadBalance   float64                 `json:"loadBalance"`
	WeightedScore float64                 `json:"weightedScore"`
	Weights       domain.ObjectiveWeights `json:"weights"`
}

// Evaluator computes objective breakdowns. It is stateless; evaluating
// the same sample twice yields the same breakdown.
type Evaluator struct{}

// NewEvaluator creates an objective evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate turns a telemetry sample into the three proxy objectives and
// their weighted blend. Zero-value weights fall back to the defaults.
func (e *Evaluator) Evaluate(sample domain.TelemetrySample, weights domain.ObjectiveWeights) (Breakdown, error) {
	if err := sample.Validate(); err != nil {
		return Breakdown{}, err
	}
	if weights.IsZero() {
		weights = domain.DefaultObjectiveWeights()
	}

	proxyCost := sample.Power*costPowerFactor +
		sample.CPU*costCPUFactor +
		math.Max(0, sample.NetworkIO-costNetBaseline)*costNetFactor
	proxyEnergy := sample.Power*energyPowerFactor + sample.CPU*energyCPUFactor

	// Memory is capped at 100 before differencing, treating a GB figure
	// as a percentage-like quantity. That unit mismatch is inherited
	// from the calibrated formula and kept for output compatibility.
	mem := math.Min(sample.Memory, 100)
	proxyLoad := 100 - math.Min(100, math.Abs(sample.CPU-mem))

	proxyCost = round2(proxyCost)
	proxyEnergy = round2(proxyEnergy)
	proxyLoad = round2(proxyLoad)

	normCost := math.Min(1.0, proxyCost/costScale)
	normEnergy := math.Min(1.0, proxyEnergy/energyScale)
	// Inverted: poor load balance contributes positively to badness.
	normLoad := 1.0 - math.Min(1.0, proxyLoad/loadScale)

	weighted := weights.Cost*normCost + weights.Energy*normEnergy + weights.Load*normLoad

	return Breakdown{
		Cost:          proxyCost,
		Energy:        proxyEnergy,
		LoadBalance:   proxyLoad,
		WeightedScore: round3(weighted),
		Weights:       weights,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
