// Package inference provides the model-assisted placement path:
// feature building, host prediction, and proxy objective reporting.
package inference

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/domain"
	"github.com/vmplace/vmplace/internal/features"
	"github.com/vmplace/vmplace/internal/objective"
	"github.com/vmplace/vmplace/internal/predictor"
)

// Cache stores prediction responses. Implementations may be absent in
// development mode.
type Cache interface {
	GetPrediction(ctx context.Context, key string) (*Prediction, error)
	SetPrediction(ctx context.Context, key string, p *Prediction) error
}

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Prediction is the model-assisted placement report for one telemetry
// sample.
type Prediction struct {
	Host       string                 `json:"host"`
	Model      string                 `json:"model"`
	Confidence float64                `json:"confidence"`
	Objectives objective.Breakdown    `json:"objectives"`
	Input      domain.TelemetrySample `json:"inputEcho"`
}

// Service runs the inference pipeline against the loaded predictor.
type Service struct {
	predictor *predictor.Service
	evaluator *objective.Evaluator
	cache     Cache
	logger    *zap.Logger
}

// NewService creates an inference service. cache may be nil.
func NewService(pred *predictor.Service, evaluator *objective.Evaluator, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		predictor: pred,
		evaluator: evaluator,
		cache:     cache,
		logger:    logger.With(zap.String("component", "inference-service")),
	}
}

// Predict derives features for the sample, predicts a host, and attaches
// the proxy objective breakdown. An unknown VM label or an unloaded
// predictor surfaces as the corresponding domain error; nothing guesses.
func (s *Service) Predict(ctx context.Context, sample domain.TelemetrySample, weights domain.ObjectiveWeights) (*Prediction, error) {
	if err := sample.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(sample, weights)
	if s.cache != nil {
		if cached, err := s.cache.GetPrediction(ctx, key); err == nil {
			return cached, nil
		} else if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("Prediction cache read failed", zap.Error(err))
		}
	}

	vocab, err := s.predictor.Vocabulary()
	if err != nil {
		return nil, err
	}
	model, err := s.predictor.Model()
	if err != nil {
		return nil, err
	}

	vec, err := features.Vector(sample, vocab)
	if err != nil {
		return nil, err
	}

	host, err := model.Predict(vec)
	if err != nil {
		return nil, fmt.Errorf("predict placement for %s: %w", sample.VM, err)
	}

	breakdown, err := s.evaluator.Evaluate(sample, weights)
	if err != nil {
		return nil, err
	}

	metrics, err := s.predictor.Metrics()
	if err != nil {
		return nil, err
	}

	pred := &Prediction{
		Host:       host,
		Model:      metrics.ModelName,
		Confidence: metrics.R2,
		Objectives: breakdown,
		Input:      sample,
	}

	if s.cache != nil {
		if err := s.cache.SetPrediction(ctx, key, pred); err != nil {
			s.logger.Warn("Prediction cache write failed", zap.Error(err))
		}
	}

	s.logger.Debug("Predicted placement",
		zap.String("vm", sample.VM),
		zap.String("host", host),
		zap.Float64("weighted_score", breakdown.WeightedScore),
	)

	return pred, nil
}

// KnownVMs returns the VM labels of the trained vocabulary.
func (s *Service) KnownVMs() ([]string, error) {
	vocab, err := s.predictor.Vocabulary()
	if err != nil {
		return nil, err
	}
	return vocab.Classes(), nil
}

// Ready reports whether the predictor artifact is loaded.
func (s *Service) Ready() bool {
	return s.predictor.Loaded()
}

func cacheKey(sample domain.TelemetrySample, weights domain.ObjectiveWeights) string {
	return fmt.Sprintf("prediction:%s:%g:%g:%g:%g:%g:%g:%g",
		sample.VM, sample.CPU, sample.Memory, sample.NetworkIO, sample.Power,
		weights.Cost, weights.Energy, weights.Load)
}
