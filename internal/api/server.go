// Package api exposes the comparison engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/star/stardiff/internal/auth"
	"github.com/star/stardiff/internal/ephem"
	"github.com/star/stardiff/internal/health"
	"github.com/star/stardiff/internal/httputil"
	"github.com/star/stardiff/internal/metrics"
)

// Options configures NewServer.
type Options struct {
	Addr         string
	MaxBodyBytes int64
	MaxEpochs    int
	TrustProxy   bool
	Auth         auth.Config

	// MaxConcurrentPerIP and MaxConcurrent cap in-flight comparisons;
	// zero disables a cap.
	MaxConcurrentPerIP int
	MaxConcurrent      int

	// Pool evaluates SGP4 states for /api/v1/compare/tle.
	Pool *ephem.WorkerPool

	// Ready gates /readyz.
	Ready []health.Check
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	h := &handlers{
		logger:       logger.With("component", "api"),
		maxBodyBytes: opts.MaxBodyBytes,
		maxEpochs:    opts.MaxEpochs,
		pool:         opts.Pool,
		trustProxy:   opts.TrustProxy,
		limiter:      newInflightLimiter(opts.MaxConcurrentPerIP, opts.MaxConcurrent),
	}

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(opts.Ready...))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/modes", modesHandler)
	mux.HandleFunc("POST /api/v1/compare", h.limit(h.compareStates))
	mux.HandleFunc("POST /api/v1/compare/tle", h.limit(h.compareTLE))

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(opts.Auth)(handler)
	handler = loggingMiddleware(logger, opts.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
