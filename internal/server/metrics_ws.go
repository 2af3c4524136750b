package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var metricsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

const metricsStreamInterval = 2 * time.Second

// metricsStreamHandler streams system utilization snapshots over a
// WebSocket until the client disconnects.
func (s *Server) metricsStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := metricsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	s.logger.Info("Metrics stream client connected", zap.String("remote_addr", r.RemoteAddr))
	defer s.logger.Info("Metrics stream client disconnected", zap.String("remote_addr", r.RemoteAddr))

	// Drain client frames so close/ping handling keeps working.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(metricsStreamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			snap := s.collector.Snapshot(r.Context())
			if err := conn.WriteJSON(snap); err != nil {
				s.logger.Debug("Failed to send metrics snapshot", zap.Error(err))
				return
			}
		}
	}
}
