package predictor

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/domain"
	"github.com/vmplace/vmplace/internal/features"
)

// Service owns the loaded prediction artifact. It is constructed
// explicitly and injected where needed: loaded once at startup,
// immutable afterwards, replaced only through an explicit Reload.
type Service struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	model   Model
	vocab   *features.Vocabulary
	metrics Metrics
}

// NewService creates a predictor service for the given artifact path.
// The artifact is not loaded until Load is called.
func NewService(artifactPath string, logger *zap.Logger) *Service {
	return &Service{
		path:   artifactPath,
		logger: logger.With(zap.String("component", "predictor")),
	}
}

// Load reads the configured artifact. Called once at startup; a failed
// load leaves the service in the unavailable state rather than guessing.
func (s *Service) Load() error {
	if s.path == "" {
		return fmt.Errorf("%w: no artifact path configured", domain.ErrPredictorUnavailable)
	}

	artifact, err := LoadArtifact(s.path)
	if err != nil {
		return err
	}
	vocab, err := artifact.Vocabulary()
	if err != nil {
		return err
	}
	model, err := artifact.Model()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.model = model
	s.vocab = vocab
	s.metrics = artifact.Metrics
	s.mu.Unlock()

	s.logger.Info("Loaded prediction artifact",
		zap.String("path", s.path),
		zap.String("model", artifact.Metrics.ModelName),
		zap.Float64("r2", artifact.Metrics.R2),
		zap.Int("vm_classes", len(artifact.VMClasses)),
		zap.Int("host_classes", len(artifact.HostClasses)),
	)
	return nil
}

// Reload re-reads the artifact from disk, replacing the loaded model
// atomically. The previous model stays active if the reload fails.
func (s *Service) Reload() error {
	return s.Load()
}

// Loaded reports whether a model is available.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Model returns the loaded model.
func (s *Service) Model() (Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil, domain.ErrPredictorUnavailable
	}
	return s.model, nil
}

// Vocabulary returns the VM-label vocabulary the model was trained with.
func (s *Service) Vocabulary() (*features.Vocabulary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.vocab == nil {
		return nil, domain.ErrPredictorUnavailable
	}
	return s.vocab, nil
}

// Metrics returns the offline evaluation metrics of the loaded model.
func (s *Service) Metrics() (Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return Metrics{}, domain.ErrPredictorUnavailable
	}
	return s.metrics, nil
}
