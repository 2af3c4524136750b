package features

import (
	"fmt"

	"github.com/vmplace/vmplace/internal/domain"
)

// Scaler standardizes feature vectors with externally trained per-feature
// mean and standard deviation. Features with zero deviation pass
// through centered only, matching the training-side behaviour.
type Scaler struct {
	mean []float64
	std  []float64
}

// NewScaler builds a scaler from per-feature parameters.
func NewScaler(mean, std []float64) (*Scaler, error) {
	if len(mean) != VectorLen || len(std) != VectorLen {
		return nil, fmt.Errorf("%w: scaler params have %d/%d entries, want %d",
			domain.ErrInvalidArgument, len(mean), len(std), VectorLen)
	}
	for i, s := range std {
		if s < 0 {
			return nil, fmt.Errorf("%w: negative stddev for feature %d", domain.ErrInvalidArgument, i)
		}
	}
	sc := &Scaler{
		mean: make([]float64, VectorLen),
		std:  make([]float64, VectorLen),
	}
	copy(sc.mean, mean)
	copy(sc.std, std)
	return sc, nil
}

// IdentityScaler returns a scaler that leaves vectors unchanged.
func IdentityScaler() *Scaler {
	mean := make([]float64, VectorLen)
	std := make([]float64, VectorLen)
	for i := range std {
		std[i] = 1
	}
	sc, _ := NewScaler(mean, std)
	return sc
}

// Transform standardizes a raw feature vector.
func (sc *Scaler) Transform(raw []float64) ([]float64, error) {
	if len(raw) != VectorLen {
		return nil, fmt.Errorf("%w: vector has %d features, want %d",
			domain.ErrInvalidArgument, len(raw), VectorLen)
	}
	out := make([]float64, VectorLen)
	for i, v := range raw {
		if sc.std[i] == 0 {
			out[i] = v - sc.mean[i]
			continue
		}
		out[i] = (v - sc.mean[i]) / sc.std[i]
	}
	return out, nil
}

// InverseTransform maps a standardized vector back to raw feature space.
func (sc *Scaler) InverseTransform(scaled []float64) ([]float64, error) {
	if len(scaled) != VectorLen {
		return nil, fmt.Errorf("%w: vector has %d features, want %d",
			domain.ErrInvalidArgument, len(scaled), VectorLen)
	}
	out := make([]float64, VectorLen)
	for i, v := range scaled {
		if sc.std[i] == 0 {
			out[i] = v + sc.mean[i]
			continue
		}
		out[i] = v*sc.std[i] + sc.mean[i]
	}
	return out, nil
}
