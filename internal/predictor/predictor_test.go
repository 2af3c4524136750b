package predictor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/domain"
	"github.com/vmplace/vmplace/internal/features"
)

const testArtifactJSON = `{
  "model_type": "threshold_rules",
  "vm_classes": ["VM1", "VM2", "VM3"],
  "host_classes": ["Host1", "Host2", "Host3"],
  "scaler": {
    "mean": [1, 50, 16, 2.5, 200, 4.0, 3.5],
    "std":  [0.8, 23, 9, 1.4, 58, 2.1, 1.6]
  },
  "rules": [
    {"max_cpu": 33, "max_memory": 11, "host": "Host1"},
    {"max_cpu": 66, "max_memory": 22, "host": "Host2"}
  ],
  "default_host": "Host3",
  "metrics": {"model_name": "Random Forest", "r2": 0.91, "mse": 0.18, "mae": 0.26}
}`

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func loadedService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(writeArtifact(t, testArtifactJSON), zap.NewNop())
	if err := svc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return svc
}

func vector(t *testing.T, vocab *features.Vocabulary, sample domain.TelemetrySample) []float64 {
	t.Helper()
	vec, err := features.Vector(sample, vocab)
	if err != nil {
		t.Fatalf("Vector() error = %v", err)
	}
	return vec
}

func TestService_LoadAndPredict(t *testing.T) {
	svc := loadedService(t)

	model, err := svc.Model()
	if err != nil {
		t.Fatalf("Model() error = %v", err)
	}
	vocab, err := svc.Vocabulary()
	if err != nil {
		t.Fatalf("Vocabulary() error = %v", err)
	}

	cases := []struct {
		name   string
		sample domain.TelemetrySample
		want   string
	}{
		{"small vm", domain.TelemetrySample{VM: "VM1", CPU: 20, Memory: 8, NetworkIO: 0.5, Power: 110}, "Host1"},
		{"medium vm", domain.TelemetrySample{VM: "VM2", CPU: 50, Memory: 16, NetworkIO: 1.0, Power: 150}, "Host2"},
		{"large vm", domain.TelemetrySample{VM: "VM3", CPU: 85, Memory: 30, NetworkIO: 4.0, Power: 280}, "Host3"},
		{"cpu small but memory large", domain.TelemetrySample{VM: "VM1", CPU: 20, Memory: 30, NetworkIO: 0.5, Power: 110}, "Host3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := model.Predict(vector(t, vocab, tc.sample))
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("Predict() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestService_MetricsAndClasses(t *testing.T) {
	svc := loadedService(t)

	m, err := svc.Metrics()
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if m.ModelName != "Random Forest" || m.R2 != 0.91 {
		t.Errorf("Metrics() = %+v", m)
	}

	model, _ := svc.Model()
	classes := model.Classes()
	want := []string{"Host1", "Host2", "Host3"}
	if len(classes) != len(want) {
		t.Fatalf("Classes() = %v", classes)
	}
	for i := range want {
		if classes[i] != want[i] {
			t.Errorf("Classes()[%d] = %s, want %s", i, classes[i], want[i])
		}
	}
}

func TestService_UnavailableBeforeLoad(t *testing.T) {
	svc := NewService("/nonexistent/model.json", zap.NewNop())

	if svc.Loaded() {
		t.Error("Loaded() = true before Load")
	}
	if _, err := svc.Model(); !errors.Is(err, domain.ErrPredictorUnavailable) {
		t.Errorf("Model() error = %v, want ErrPredictorUnavailable", err)
	}
	if _, err := svc.Vocabulary(); !errors.Is(err, domain.ErrPredictorUnavailable) {
		t.Errorf("Vocabulary() error = %v, want ErrPredictorUnavailable", err)
	}
	if _, err := svc.Metrics(); !errors.Is(err, domain.ErrPredictorUnavailable) {
		t.Errorf("Metrics() error = %v, want ErrPredictorUnavailable", err)
	}
}

func TestService_FailedReloadKeepsCurrentModel(t *testing.T) {
	path := writeArtifact(t, testArtifactJSON)
	svc := NewService(path, zap.NewNop())
	if err := svc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt artifact: %v", err)
	}
	if err := svc.Reload(); err == nil {
		t.Fatal("Reload() with corrupt artifact succeeded, want error")
	}
	if !svc.Loaded() {
		t.Error("previous model dropped after failed reload")
	}
}

func TestLoadArtifact_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"wrong model type", `{"model_type":"forest","vm_classes":["a"],"host_classes":["h"],"scaler":{"mean":[0,0,0,0,0,0,0],"std":[1,1,1,1,1,1,1]},"default_host":"h"}`},
		{"no vm classes", `{"model_type":"threshold_rules","vm_classes":[],"host_classes":["h"],"scaler":{"mean":[0,0,0,0,0,0,0],"std":[1,1,1,1,1,1,1]},"default_host":"h"}`},
		{"rule targets unknown host", `{"model_type":"threshold_rules","vm_classes":["a"],"host_classes":["h"],"scaler":{"mean":[0,0,0,0,0,0,0],"std":[1,1,1,1,1,1,1]},"rules":[{"max_cpu":1,"max_memory":1,"host":"x"}],"default_host":"h"}`},
		{"default host missing", `{"model_type":"threshold_rules","vm_classes":["a"],"host_classes":["h"],"scaler":{"mean":[0,0,0,0,0,0,0],"std":[1,1,1,1,1,1,1]},"default_host":"x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeArtifact(t, tc.content)
			if _, err := LoadArtifact(path); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("LoadArtifact() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestThresholdModel_TransformMatchesScaler(t *testing.T) {
	svc := loadedService(t)
	model, _ := svc.Model()
	vocab, _ := svc.Vocabulary()

	raw := vector(t, vocab, domain.TelemetrySample{VM: "VM2", CPU: 50, Memory: 16, NetworkIO: 1.0, Power: 150})
	scaled, err := model.Transform(raw)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	// cpu feature: (50-50)/23 = 0
	if scaled[features.IdxCPU] != 0 {
		t.Errorf("scaled cpu = %v, want 0", scaled[features.IdxCPU])
	}
	// memory feature: (16-16)/9 = 0
	if scaled[features.IdxMemory] != 0 {
		t.Errorf("scaled memory = %v, want 0", scaled[features.IdxMemory])
	}
}
