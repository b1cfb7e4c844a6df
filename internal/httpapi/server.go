package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Server serves the dashboard API.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer wraps handler in an http.Server listening on port.
func NewServer(port int, handler http.Handler, readTimeout, writeTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + strconv.Itoa(port),
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger: logger.Named("http_api"),
	}
}

// Start begins serving in the background. onFatal is called if the listener
// stops for any reason other than Stop.
func (s *Server) Start(onFatal func(error)) {
	go func() {
		s.logger.Info("Starting dashboard API server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Dashboard API server error", zap.Error(err))
			if onFatal != nil {
				onFatal(err)
			}
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping dashboard API server")
	return s.httpServer.Shutdown(ctx)
}
