package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"reqtree/internal/dragdrop"
)

// Backend is the authoritative tree the server exposes.
type Backend interface {
	dragdrop.Remote
	dragdrop.Source
}

type Options struct {
	Listen string
	// Registry collects the server's metrics and backs /metrics. Nil means a fresh
	// registry with the Go and process collectors.
	Registry *prometheus.Registry
	// RequestsPerMinute limits mutating requests per client IP. Zero disables it.
	RequestsPerMinute int
}

// Server is the HTTP API in front of a Backend.
type Server struct {
	log      logrus.FieldLogger
	backend  Backend
	opts     Options
	registry *prometheus.Registry
	metrics  *Metrics
	limiter  *IPRateLimiter
	router   chi.Router
	srv      *http.Server
}

func NewServer(log logrus.FieldLogger, backend Backend, opts Options) *Server {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	s := &Server{
		log:      log.WithField("component", "api"),
		backend:  backend,
		opts:     opts,
		registry: reg,
		metrics:  NewMetrics(reg),
	}
	if opts.RequestsPerMinute > 0 {
		s.limiter = NewIPRateLimiter(opts.RequestsPerMinute)
		s.log.WithField("rpm", opts.RequestsPerMinute).Info("Rate limiting enabled")
	}
	s.setupRouter()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Registry is where callers can register additional collectors exposed on /metrics.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.WithField("addr", s.opts.Listen).Info("Starting API server")

	if s.limiter != nil {
		go s.limiter.cleanupLoop(ctx, visitorTTL)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	s.log.Info("Stopping API server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.metrics.Middleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/workspaces/{id}/tree", s.handleGetTree)

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.Middleware)
			}
			r.Post("/folders/{id}/move", s.handleMoveFolder)
			r.Post("/leaves/{id}/move", s.handleMoveLeaf)
			r.Put("/folders/reorder", s.handleReorderFolders)
			r.Put("/leaves/reorder", s.handleReorderLeaves)
		})
	})

	s.router = r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("Handled request")
	})
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
