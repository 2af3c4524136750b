package inference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/domain"
	"github.com/vmplace/vmplace/internal/objective"
	"github.com/vmplace/vmplace/internal/predictor"
)

const testArtifactJSON = `{
  "model_type": "threshold_rules",
  "vm_classes": ["VM1", "VM2"],
  "host_classes": ["Host1", "Host2", "Host3"],
  "scaler": {
    "mean": [0.5, 50, 16, 2.5, 200, 4.0, 3.5],
    "std":  [0.5, 23, 9, 1.4, 58, 2.1, 1.6]
  },
  "rules": [
    {"max_cpu": 33, "max_memory": 11, "host": "Host1"},
    {"max_cpu": 66, "max_memory": 22, "host": "Host2"}
  ],
  "default_host": "Host3",
  "metrics": {"model_name": "Gradient Boosting", "r2": 0.88, "mse": 0.2, "mae": 0.3}
}`

// mapCache is a mock prediction cache.
type mapCache struct {
	data map[string]*Prediction
	gets int
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]*Prediction)}
}

func (c *mapCache) GetPrediction(ctx context.Context, key string) (*Prediction, error) {
	c.gets++
	p, ok := c.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return p, nil
}

func (c *mapCache) SetPrediction(ctx context.Context, key string, p *Prediction) error {
	c.sets++
	c.data[key] = p
	return nil
}

func loadedPredictor(t *testing.T) *predictor.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(testArtifactJSON), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	svc := predictor.NewService(path, zap.NewNop())
	if err := svc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return svc
}

func newTestService(t *testing.T, cache Cache) *Service {
	t.Helper()
	return NewService(loadedPredictor(t), objective.NewEvaluator(), cache, zap.NewNop())
}

func TestPredict_FullPipeline(t *testing.T) {
	svc := newTestService(t, nil)
	sample := domain.TelemetrySample{VM: "VM1", CPU: 50, Memory: 16, NetworkIO: 1.0, Power: 150}

	pred, err := svc.Predict(context.Background(), sample, domain.ObjectiveWeights{})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if pred.Host != "Host2" {
		t.Errorf("Host = %s, want Host2 (cpu 50, mem 16)", pred.Host)
	}
	if pred.Model != "Gradient Boosting" || pred.Confidence != 0.88 {
		t.Errorf("model info = %s/%v", pred.Model, pred.Confidence)
	}
	if pred.Objectives.Cost != 20.5 || pred.Objectives.Energy != 145.0 || pred.Objectives.LoadBalance != 66 {
		t.Errorf("Objectives = %+v", pred.Objectives)
	}
	if pred.Objectives.WeightedScore != 0.307 {
		t.Errorf("WeightedScore = %v, want 0.307", pred.Objectives.WeightedScore)
	}
	if pred.Input != sample {
		t.Errorf("Input echo = %+v, want %+v", pred.Input, sample)
	}
}

func TestPredict_UnknownVMRejected(t *testing.T) {
	svc := newTestService(t, nil)
	sample := domain.TelemetrySample{VM: "VM99", CPU: 10, Memory: 10, NetworkIO: 1, Power: 100}

	_, err := svc.Predict(context.Background(), sample, domain.ObjectiveWeights{})
	if !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("Predict() error = %v, want ErrUnknownCategory", err)
	}
}

func TestPredict_PredictorUnavailable(t *testing.T) {
	pred := predictor.NewService("", zap.NewNop())
	svc := NewService(pred, objective.NewEvaluator(), nil, zap.NewNop())

	_, err := svc.Predict(context.Background(), domain.TelemetrySample{VM: "VM1", CPU: 1, Memory: 1, NetworkIO: 1, Power: 1}, domain.ObjectiveWeights{})
	if !errors.Is(err, domain.ErrPredictorUnavailable) {
		t.Errorf("Predict() error = %v, want ErrPredictorUnavailable", err)
	}
	if svc.Ready() {
		t.Error("Ready() = true without artifact")
	}
}

func TestPredict_CacheHitSkipsPipeline(t *testing.T) {
	cache := newMapCache()
	svc := newTestService(t, cache)
	sample := domain.TelemetrySample{VM: "VM2", CPU: 20, Memory: 8, NetworkIO: 0.2, Power: 90}

	first, err := svc.Predict(context.Background(), sample, domain.ObjectiveWeights{})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	second, err := svc.Predict(context.Background(), sample, domain.ObjectiveWeights{})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets after hit = %d, want still 1", cache.sets)
	}
	if *second != *first {
		t.Errorf("cached prediction differs: %+v vs %+v", second, first)
	}
}

func TestKnownVMs(t *testing.T) {
	svc := newTestService(t, nil)
	vms, err := svc.KnownVMs()
	if err != nil {
		t.Fatalf("KnownVMs() error = %v", err)
	}
	if len(vms) != 2 || vms[0] != "VM1" || vms[1] != "VM2" {
		t.Errorf("KnownVMs() = %v", vms)
	}
}
