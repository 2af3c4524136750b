package features

import (
	"errors"
	"math"
	"testing"

	"github.com/vmplace/vmplace/internal/domain"
)

func testVocab(t *testing.T) *Vocabulary {
	t.Helper()
	v, err := NewVocabulary([]string{"VM1", "VM2", "VM3"})
	if err != nil {
		t.Fatalf("NewVocabulary() error = %v", err)
	}
	return v
}

func TestVocabulary_EncodeDecodeRoundTrip(t *testing.T) {
	v := testVocab(t)
	for i, label := range v.Classes() {
		code, err := v.Encode(label)
		if err != nil {
			t.Fatalf("Encode(%s) error = %v", label, err)
		}
		if code != i {
			t.Errorf("Encode(%s) = %d, want %d", label, code, i)
		}
		back, err := v.Decode(code)
		if err != nil {
			t.Fatalf("Decode(%d) error = %v", code, err)
		}
		if back != label {
			t.Errorf("Decode(%d) = %s, want %s", code, back, label)
		}
	}
}

func TestVocabulary_UnknownLabel(t *testing.T) {
	v := testVocab(t)
	if _, err := v.Encode("VM99"); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("Encode(VM99) error = %v, want ErrUnknownCategory", err)
	}
	if _, err := v.Decode(17); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("Decode(17) error = %v, want ErrUnknownCategory", err)
	}
}

func TestVocabulary_DuplicateLabelRejected(t *testing.T) {
	if _, err := NewVocabulary([]string{"VM1", "VM1"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("NewVocabulary() error = %v, want ErrAlreadyExists", err)
	}
}

func TestVector_FixedOrder(t *testing.T) {
	sample := domain.TelemetrySample{VM: "VM2", CPU: 50, Memory: 16, NetworkIO: 1.5, Power: 150}
	vec, err := Vector(sample, testVocab(t))
	if err != nil {
		t.Fatalf("Vector() error = %v", err)
	}

	want := []float64{1, 50, 16, 1.5, 150, 50.0 / 16.0, 3.0}
	if len(vec) != VectorLen {
		t.Fatalf("Vector() len = %d, want %d", len(vec), VectorLen)
	}
	for i := range want {
		if vec[i] != want[i] {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], want[i])
		}
	}
}

func TestVector_DivisionGuards(t *testing.T) {
	v := testVocab(t)

	vec, err := Vector(domain.TelemetrySample{VM: "VM1", CPU: 0, Memory: 16, NetworkIO: 1, Power: 100}, v)
	if err != nil {
		t.Fatalf("Vector() error = %v", err)
	}
	if vec[IdxPowerPerCPU] != 0.0 {
		t.Errorf("power_per_cpu with cpu=0 = %v, want 0.0", vec[IdxPowerPerCPU])
	}

	vec, err = Vector(domain.TelemetrySample{VM: "VM1", CPU: 40, Memory: 0, NetworkIO: 1, Power: 100}, v)
	if err != nil {
		t.Fatalf("Vector() error = %v", err)
	}
	if vec[IdxCPUMemRatio] != 0.0 {
		t.Errorf("cpu_mem_ratio with memory=0 = %v, want 0.0", vec[IdxCPUMemRatio])
	}

	for i, f := range vec {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Errorf("vec[%d] = %v, want finite", i, f)
		}
	}
}

func TestVector_UnknownVMRejected(t *testing.T) {
	_, err := Vector(domain.TelemetrySample{VM: "VM99", CPU: 10, Memory: 10, NetworkIO: 1, Power: 100}, testVocab(t))
	if !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("Vector() error = %v, want ErrUnknownCategory", err)
	}
}

func TestScaler_TransformInverseRoundTrip(t *testing.T) {
	mean := []float64{1, 50, 16, 1.2, 180, 4.1, 3.3}
	std := []float64{0.8, 22, 9, 0.9, 60, 2.2, 1.4}
	sc, err := NewScaler(mean, std)
	if err != nil {
		t.Fatalf("NewScaler() error = %v", err)
	}

	raw := []float64{2, 71, 8, 0.4, 240, 8.875, 3.38}
	scaled, err := sc.Transform(raw)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	back, err := sc.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform() error = %v", err)
	}
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("round trip [%d] = %v, want %v", i, back[i], raw[i])
		}
	}
}

func TestScaler_ZeroStddevCentersOnly(t *testing.T) {
	mean := []float64{0, 10, 0, 0, 0, 0, 0}
	std := []float64{1, 0, 1, 1, 1, 1, 1}
	sc, err := NewScaler(mean, std)
	if err != nil {
		t.Fatalf("NewScaler() error = %v", err)
	}

	raw := []float64{0, 25, 0, 0, 0, 0, 0}
	scaled, err := sc.Transform(raw)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if scaled[1] != 15 {
		t.Errorf("zero-stddev feature = %v, want centered value 15", scaled[1])
	}
}

func TestScaler_LengthMismatch(t *testing.T) {
	sc := IdentityScaler()
	if _, err := sc.Transform([]float64{1, 2, 3}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Transform() error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewScaler([]float64{1}, []float64{1}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("NewScaler() error = %v, want ErrInvalidArgument", err)
	}
}
