package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/teemow/appointed/internal/calendar"
	"github.com/teemow/appointed/internal/config"
	"github.com/teemow/appointed/internal/instrumentation"
)

// Timeouts for the booking API server.
const (
	apiReadHeaderTimeout = 10 * time.Second
	apiWriteTimeout      = 30 * time.Second
	apiIdleTimeout       = 60 * time.Second
)

// APIServer serves the availability and booking API.
type APIServer struct {
	cfg     config.Config
	gateway calendar.Gateway
	metrics *instrumentation.Metrics
	logger  *slog.Logger
	health  *HealthChecker

	httpServer *http.Server

	// bookMu serializes validate-then-insert for the configured calendar,
	// closing the in-process race between the conflict check and event
	// creation. Cross-replica exclusivity needs an external lock.
	bookMu sync.Mutex
}

// NewAPIServer creates the booking API server. The metrics recorder may be
// the no-op zero value when instrumentation is disabled; the logger falls
// back to slog.Default when nil.
func NewAPIServer(cfg config.Config, gateway calendar.Gateway, metrics *instrumentation.Metrics, logger *slog.Logger) *APIServer {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &APIServer{
		cfg:     cfg,
		gateway: gateway,
		metrics: metrics,
		logger:  logger,
		health:  NewHealthChecker(),
	}
}

// Health returns the server's health checker.
func (s *APIServer) Health() *HealthChecker {
	return s.health
}

// Handler returns the full API handler with logging and metrics middleware
// applied.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/slots", s.handleSlots)
	mux.HandleFunc("/api/book", s.handleBook)
	s.health.RegisterHealthEndpoints(mux)

	return s.withObservability(mux)
}

// Start starts the API server in a blocking manner.
func (s *APIServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal starts the API server and closes ready once the
// listener is bound.
func (s *APIServer) StartWithReadySignal(ready chan<- struct{}) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: apiReadHeaderTimeout,
		WriteTimeout:      apiWriteTimeout,
		IdleTimeout:       apiIdleTimeout,
	}

	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}

	if ready != nil {
		close(ready)
	}

	s.logger.Info("starting booking API server",
		"addr", s.cfg.Addr(),
		"calendar", s.cfg.CalendarID,
		"timezone", s.cfg.TimeZone,
		"work_start", s.cfg.WorkStart,
		"work_end", s.cfg.WorkEnd,
		"buffer", s.cfg.Buffer.String(),
	)
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully shuts down the API server, failing readiness probes
// first so load balancers drain traffic.
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	if s.httpServer != nil {
		s.logger.Info("shutting down booking API server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// statusRecorder captures the response status code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withObservability wraps a handler with request logging and HTTP metrics.
func (s *APIServer) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, recorder.status, duration)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", duration.Milliseconds(),
		)
	})
}
