package healthcheck

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/internal/observer"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

// Version is reported by /health. Overridden at build time with -ldflags.
var Version = "dev"

// BackendProbe is the backend call used to decide readiness.
type BackendProbe interface {
	GetDashboardMetrics(ctx context.Context) (*model.DashboardMetrics, error)
}

// Server represents a health check HTTP server
type Server struct {
	httpServer   *http.Server
	mux          *http.ServeMux // Expose mux for adding handlers
	probe        BackendProbe
	readyTimeout time.Duration
	logger       *zap.Logger
}

// HealthResponse is the response structure for health check endpoints
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// NewServer creates a new health check server. A nil probe makes /ready
// always succeed.
func NewServer(port int, probe BackendProbe, readyTimeout time.Duration, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	server := &Server{
		httpServer: &http.Server{
			Addr:    ":" + strconv.Itoa(port),
			Handler: mux,
		},
		mux:          mux,
		probe:        probe,
		readyTimeout: readyTimeout,
		logger:       logger.Named("healthcheck"),
	}

	mux.HandleFunc("/health", server.handleHealth)
	mux.HandleFunc("/ready", server.handleReady)

	return server
}

// RegisterMetricsHandler adds the /metrics endpoint handler.
// Should only be called if metrics are enabled.
func (s *Server) RegisterMetricsHandler(handler http.Handler) {
	s.logger.Info("Registering /metrics endpoint")
	s.mux.Handle("/metrics", handler)
}

// Handler returns the server's mux.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins the HTTP server
func (s *Server) Start() {
	go func() {
		s.logger.Info("Starting health check server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Health check server error", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping health check server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles the /health endpoint for liveness probes
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, HealthResponse{
		Status:  "UP",
		Version: Version,
	})
}

// handleReady reports ready only while the lead backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	details := map[string]string{
		"timestamp": utils.FormatISO8601(utils.Now()),
	}
	if s.probe == nil {
		utils.WriteJSONResponse(w, http.StatusOK, HealthResponse{Status: "READY", Details: details})
		return
	}

	ctx := r.Context()
	if s.readyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.readyTimeout)
		defer cancel()
	}

	start := time.Now()
	_, err := s.probe.GetDashboardMetrics(ctx)
	details["backend_latency"] = time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		s.logger.Warn("Readiness probe failed", zap.Error(err))
		details["backend"] = observer.ErrorCategory(err)
		details["error"] = err.Error()
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, HealthResponse{Status: "NOT_READY", Details: details})
		return
	}

	details["backend"] = "ok"
	utils.WriteJSONResponse(w, http.StatusOK, HealthResponse{Status: "READY", Details: details})
}
