package predictor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vmplace/vmplace/internal/domain"
	"github.com/vmplace/vmplace/internal/features"
)

// Artifact is the JSON bundle produced by the offline training harness:
// the VM vocabulary, the feature scaler, the decision rules of the
// selected model, and its evaluation metrics.
type Artifact struct {
	ModelType   string        `json:"model_type"`
	VMClasses   []string      `json:"vm_classes"`
	HostClasses []string      `json:"host_classes"`
	Scaler      ScalerParams  `json:"scaler"`
	Rules       []BoundedRule `json:"rules"`
	DefaultHost string        `json:"default_host"`
	Metrics     Metrics       `json:"metrics"`
}

// ScalerParams are the per-feature standardization parameters, in
// feature-vector order.
type ScalerParams struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// BoundedRule assigns a host when both the cpu and memory features fall
// at or below its bounds. Rules are evaluated in order; the first match
// wins, and DefaultHost covers the remainder.
type BoundedRule struct {
	MaxCPU    float64 `json:"max_cpu"`
	MaxMemory float64 `json:"max_memory"`
	Host      string  `json:"host"`
}

const modelTypeThresholdRules = "threshold_rules"

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return &a, nil
}

func (a *Artifact) validate() error {
	if a.ModelType != modelTypeThresholdRules {
		return fmt.Errorf("%w: unsupported model type %q", domain.ErrInvalidArgument, a.ModelType)
	}
	if len(a.VMClasses) == 0 {
		return fmt.Errorf("%w: no vm classes", domain.ErrInvalidArgument)
	}
	if len(a.HostClasses) == 0 {
		return fmt.Errorf("%w: no host classes", domain.ErrInvalidArgument)
	}
	known := make(map[string]bool, len(a.HostClasses))
	for _, h := range a.HostClasses {
		known[h] = true
	}
	for _, r := range a.Rules {
		if !known[r.Host] {
			return fmt.Errorf("%w: rule targets unknown host %q", domain.ErrInvalidArgument, r.Host)
		}
	}
	if a.DefaultHost == "" || !known[a.DefaultHost] {
		return fmt.Errorf("%w: default host %q not in host classes", domain.ErrInvalidArgument, a.DefaultHost)
	}
	return nil
}

// Vocabulary builds the VM-label vocabulary embedded in the artifact.
func (a *Artifact) Vocabulary() (*features.Vocabulary, error) {
	return features.NewVocabulary(a.VMClasses)
}

// Model builds the runnable model embedded in the artifact.
func (a *Artifact) Model() (Model, error) {
	scaler, err := features.NewScaler(a.Scaler.Mean, a.Scaler.Std)
	if err != nil {
		return nil, err
	}
	return &thresholdModel{
		scaler:      scaler,
		rules:       a.Rules,
		defaultHost: a.DefaultHost,
		classes:     a.HostClasses,
	}, nil
}

// thresholdModel is the rule-list model family. The bounds compare raw
// cpu and memory features, so prediction works on the unscaled vector;
// the scaler is still carried for callers that need standardized space.
type thresholdModel struct {
	scaler      *features.Scaler
	rules       []BoundedRule
	defaultHost string
	classes     []string
}

func (m *thresholdModel) Transform(raw []float64) ([]float64, error) {
	return m.scaler.Transform(raw)
}

func (m *thresholdModel) Predict(vec []float64) (string, error) {
	if len(vec) != features.VectorLen {
		return "", fmt.Errorf("%w: vector has %d features, want %d",
			domain.ErrInvalidArgument, len(vec), features.VectorLen)
	}
	cpu := vec[features.IdxCPU]
	mem := vec[features.IdxMemory]
	for _, r := range m.rules {
		if cpu <= r.MaxCPU && mem <= r.MaxMemory {
			return r.Host, nil
		}
	}
	return m.defaultHost, nil
}

func (m *thresholdModel) Classes() []string {
	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}
