package objective

import (
	"errors"
	"testing"

	"github.com/vmplace/vmplace/internal/domain"
)

func TestEvaluate_WorkedExample(t *testing.T) {
	// cpu=50, memory=16, network_io=1.0, power=150:
	// cost = 150*0.12 + 50*0.05 = 20.5 (network at the baseline adds 0)
	// energy = 150*0.9 + 50*0.2 = 145.0
	// load = 100 - min(100, |50-16|) = 66
	sample := domain.TelemetrySample{VM: "VM1", CPU: 50, Memory: 16, NetworkIO: 1.0, Power: 150}

	got, err := NewEvaluator().Evaluate(sample, domain.ObjectiveWeights{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if got.Cost != 20.5 {
		t.Errorf("Cost = %v, want 20.5", got.Cost)
	}
	if got.Energy != 145.0 {
		t.Errorf("Energy = %v, want 145.0", got.Energy)
	}
	if got.LoadBalance != 66 {
		t.Errorf("LoadBalance = %v, want 66", got.LoadBalance)
	}
	if got.WeightedScore != 0.307 {
		t.Errorf("WeightedScore = %v, want 0.307", got.WeightedScore)
	}
	if got.Weights != domain.DefaultObjectiveWeights() {
		t.Errorf("Weights = %+v, want defaults", got.Weights)
	}
}

func TestEvaluate_NetworkAboveBaselineCounts(t *testing.T) {
	sample := domain.TelemetrySample{VM: "VM1", CPU: 50, Memory: 16, NetworkIO: 3.0, Power: 150}
	got, err := NewEvaluator().Evaluate(sample, domain.ObjectiveWeights{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	// 20.5 + (3.0-1.0)*0.5 = 21.5
	if got.Cost != 21.5 {
		t.Errorf("Cost = %v, want 21.5", got.Cost)
	}
}

func TestEvaluate_MemoryCappedAt100(t *testing.T) {
	// memory=128 GB behaves like 100 in the load-balance formula.
	sample := domain.TelemetrySample{VM: "VM1", CPU: 30, Memory: 128, NetworkIO: 0.5, Power: 120}
	got, err := NewEvaluator().Evaluate(sample, domain.ObjectiveWeights{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	// 100 - min(100, |30-100|) = 30
	if got.LoadBalance != 30 {
		t.Errorf("LoadBalance = %v, want 30", got.LoadBalance)
	}
}

func TestEvaluate_NormalizationSaturates(t *testing.T) {
	sample := domain.TelemetrySample{VM: "VM1", CPU: 100, Memory: 100, NetworkIO: 50, Power: 5000}
	got, err := NewEvaluator().Evaluate(sample, domain.ObjectiveWeights{Cost: 1, Energy: 0, Load: 0})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	// Both proxies far beyond their scales: norm_cost is clamped to 1.
	if got.WeightedScore != 1.0 {
		t.Errorf("WeightedScore = %v, want 1.0 (saturated)", got.WeightedScore)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	sample := domain.TelemetrySample{VM: "VM1", CPU: 42, Memory: 12, NetworkIO: 2.5, Power: 210}
	w := domain.ObjectiveWeights{Cost: 0.5, Energy: 0.25, Load: 0.25}

	ev := NewEvaluator()
	first, err := ev.Evaluate(sample, w)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := ev.Evaluate(sample, w)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if got != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestEvaluate_ExplicitWeightsKept(t *testing.T) {
	sample := domain.TelemetrySample{VM: "VM1", CPU: 50, Memory: 16, NetworkIO: 1.0, Power: 150}
	w := domain.ObjectiveWeights{Cost: 1, Energy: 0, Load: 0}
	got, err := NewEvaluator().Evaluate(sample, w)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	// weighted = 1 * min(1, 20.5/200) = 0.1025 -> 0.103 after rounding
	if got.WeightedScore != 0.103 {
		t.Errorf("WeightedScore = %v, want 0.103", got.WeightedScore)
	}
	if got.Weights != w {
		t.Errorf("Weights = %+v, want %+v", got.Weights, w)
	}
}

func TestEvaluate_MalformedTelemetryRejected(t *testing.T) {
	_, err := NewEvaluator().Evaluate(domain.TelemetrySample{VM: "", CPU: 1, Memory: 1, NetworkIO: 1, Power: 1}, domain.ObjectiveWeights{})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Evaluate() error = %v, want ErrInvalidArgument", err)
	}

	_, err = NewEvaluator().Evaluate(domain.TelemetrySample{VM: "VM1", CPU: -5, Memory: 1, NetworkIO: 1, Power: 1}, domain.ObjectiveWeights{})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Evaluate() negative cpu error = %v, want ErrInvalidArgument", err)
	}
}
