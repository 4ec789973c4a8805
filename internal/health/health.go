package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saronqw/uninews-bot/internal/adapters/upstream"
	"github.com/saronqw/uninews-bot/internal/dialog"
	"github.com/saronqw/uninews-bot/pkg/logger"
)

// Server provides health check HTTP endpoints for K8s
type Server struct {
	server    *http.Server
	upstream  *upstream.Client
	sessions  *dialog.Store
	ready     bool
	readyMu   sync.RWMutex
	startTime time.Time
}

// HealthStatus represents process health
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessStatus represents service readiness
type ReadinessStatus struct {
	Ready          bool              `json:"ready"`
	Timestamp      string            `json:"timestamp"`
	Checks         map[string]string `json:"checks"`
	ActiveSessions int               `json:"active_sessions"`
}

// NewServer creates new health check server
func NewServer(port string, upstreamClient *upstream.Client, sessions *dialog.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		upstream:  upstreamClient,
		sessions:  sessions,
		startTime: time.Now(),
	}

	mux.HandleFunc("/health", s.handleHealth)   // Liveness probe
	mux.HandleFunc("/ready", s.handleReadiness) // Readiness probe
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReadiness)

	return s
}

// Start starts the health check server
func (s *Server) Start() error {
	logger.Info("health check server starting",
		zap.String("addr", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("stopping health check server...")
	return s.server.Shutdown(ctx)
}

// SetReady marks the service as ready
func (s *Server) SetReady(ready bool) {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	s.ready = ready
}

// handleHealth handles liveness probe - /health
// Returns 200 if the process is alive, even when the upstream is down.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}

	if r.URL.Query().Get("verbose") == "true" {
		checks := make(map[string]string)
		if err := s.upstream.Health(r.Context()); err != nil {
			checks["upstream"] = "unhealthy: " + err.Error()
		} else {
			checks["upstream"] = "healthy"
		}
		status.Checks = checks
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// handleReadiness handles readiness probe - /ready
// Ready means startup finished and the upstream API answers.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	s.readyMu.RLock()
	ready := s.ready
	s.readyMu.RUnlock()

	checks := make(map[string]string)
	allHealthy := true

	if err := s.upstream.Health(r.Context()); err != nil {
		checks["upstream"] = "unhealthy: " + err.Error()
		allHealthy = false
	} else {
		checks["upstream"] = "healthy"
	}

	isReady := ready && allHealthy

	status := ReadinessStatus{
		Ready:          isReady,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Checks:         checks,
		ActiveSessions: s.sessions.Count(),
	}

	w.Header().Set("Content-Type", "application/json")
	if isReady {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}
