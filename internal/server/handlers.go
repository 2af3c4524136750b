// Package server REST handlers for the placement and inference APIs.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/domain"
)

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

// writeDomainError maps domain errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownCategory):
		s.writeError(w, http.StatusBadRequest, "unknown_vm", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		s.writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, domain.ErrPredictorUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, "predictor_unavailable", "prediction model assets not loaded")
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

// healthHandler returns health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":"vmplace-controlplane"}`)
}

// readyHandler returns readiness status.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ready := true
	details := map[string]string{}

	// Check PostgreSQL
	if s.db != nil {
		if err := s.db.Health(ctx); err != nil {
			ready = false
			details["postgres"] = "unhealthy"
		} else {
			details["postgres"] = "healthy"
		}
	}

	// Check Redis
	if s.cache != nil {
		if err := s.cache.Health(ctx); err != nil {
			ready = false
			details["redis"] = "unhealthy"
		} else {
			details["redis"] = "healthy"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, map[string]interface{}{
		"ready":      ready,
		"components": details,
	})
}

// liveHandler returns liveness status.
func (s *Server) liveHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"alive":true}`)
}

// infoHandler returns API information.
func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "vmplace Control Plane",
		"version":     "0.1.0",
		"api_version": "v1",
		"description": "VM placement and prediction service",
		"infrastructure": map[string]bool{
			"postgres":  s.db != nil,
			"redis":     s.cache != nil,
			"predictor": s.predictorSvc.Loaded(),
		},
	})
}

// apiHealthHandler reports predictor readiness together with current
// system pressure.
func (s *Server) apiHealthHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.collector.Snapshot(r.Context())
	ok := s.predictorSvc.Loaded()

	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, map[string]interface{}{
		"ok":      ok,
		"status":  snap.Status(),
		"metrics": snap,
	})
}

// vmsHandler lists the VM labels known to the trained vocabulary.
func (s *Server) vmsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	vms, err := s.inferenceSvc.KnownVMs()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"vms": vms})
}

// predictRequest is the POST /api/v1/predict payload.
type predictRequest struct {
	VM        string                   `json:"vm"`
	CPU       float64                  `json:"cpu"`
	Memory    float64                  `json:"memory"`
	NetworkIO float64                  `json:"network_io"`
	Power     float64                  `json:"power"`
	Weights   *domain.ObjectiveWeights `json:"weights,omitempty"`
}

// predictHandler runs the model-assisted placement path.
func (s *Server) predictHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_payload", "invalid or missing fields: vm, cpu, memory, network_io, power")
		return
	}

	sample := domain.TelemetrySample{
		VM:        req.VM,
		CPU:       req.CPU,
		Memory:    req.Memory,
		NetworkIO: req.NetworkIO,
		Power:     req.Power,
	}
	weights := domain.ObjectiveWeights{}
	if req.Weights != nil {
		weights = *req.Weights
	}

	pred, err := s.inferenceSvc.Predict(r.Context(), sample, weights)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pred)
}

// modelMetricsHandler reports the loaded model's offline quality metrics.
func (s *Server) modelMetricsHandler(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.predictorSvc.Metrics()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, metrics)
}

// modelReloadHandler re-reads the prediction artifact from disk.
func (s *Server) modelReloadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	if err := s.predictorSvc.Reload(); err != nil {
		s.writeError(w, http.StatusInternalServerError, "reload_failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"reloaded": true})
}

// metricsHandler returns a system utilization snapshot.
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.collector.Snapshot(r.Context()))
}

// hostsHandler lists the current host set.
func (s *Server) hostsHandler(w http.ResponseWriter, r *http.Request) {
	hosts, err := s.placementSvc.Hosts(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, hosts)
}

// incomingVMsHandler returns a generated batch of pending VM demands.
func (s *Server) incomingVMsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.placementSvc.IncomingVMs(s.config.Placement.VMCount))
}

// placementResultsHandler runs one greedy placement round over a fresh
// scenario with weights taken from query parameters.
func (s *Server) placementResultsHandler(w http.ResponseWriter, r *http.Request) {
	weights := domain.Weights{
		CPU:    queryFloat(r, "cpu", s.config.Placement.WeightCPU),
		Energy: queryFloat(r, "energy", s.config.Placement.WeightEnergy),
		Cost:   queryFloat(r, "cost", s.config.Placement.WeightCost),
	}

	outcome, err := s.placementSvc.RunScenario(
		r.Context(),
		s.config.Placement.HostCount,
		s.config.Placement.VMCount,
		weights,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

// placementHistoryHandler lists recent placement decisions.
func (s *Server) placementHistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	history, err := s.placementSvc.History(r.Context(), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

// simulateVMHandler returns one random telemetry sample.
func (s *Server) simulateVMHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.placementSvc.SimulateTelemetry())
}

// queryFloat parses a float query parameter with a fallback.
func queryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
