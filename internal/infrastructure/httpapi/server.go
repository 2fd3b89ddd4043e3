// Package httpapi exposes evaluations, agent phase reports and pending
// ideas over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ideation-orchestrator/internal/application/port/input"
	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/usecase/memory"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultAddr = ":8080"

type Config struct {
	Addr      string
	Evaluator input.Evaluator
	// Memory backs phase reports and pending ideas. Nil disables those routes.
	Memory   *memory.Service
	Gatherer prometheus.Gatherer
	Logger   output.LoggerPort
	// AccessLogJSON switches request logs to JSON lines.
	AccessLogJSON bool
}

type Server struct {
	addr   string
	router chi.Router
	jobs   *jobs
	logger output.LoggerPort
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Evaluator == nil {
		return nil, errors.New("http server requires an evaluator")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		addr:   cfg.Addr,
		jobs:   newJobs(cfg.Evaluator, cfg.Logger),
		logger: cfg.Logger,
	}

	accessLog := httplog.NewLogger("ideation", httplog.Options{JSON: cfg.AccessLogJSON, Concise: true})
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, httplog.RequestLogger(accessLog))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	h := &handlers{jobs: s.jobs, memory: cfg.Memory, logger: cfg.Logger}
	r.Route("/api", func(r chi.Router) {
		r.Post("/evaluations", h.createEvaluation)
		r.Get("/evaluations/{id}", h.getEvaluation)
		r.Post("/sessions/{id}/phases", h.reportPhase)
		r.Post("/ideas/pending", h.addPendingIdea)
	})

	s.router = r
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then drains requests and waits for running
// evaluations to stop.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.jobs.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.jobs.close()
	s.logger.Info("HTTP server stopped")
	return err
}

// Close cancels running evaluations and waits for them.
func (s *Server) Close() {
	s.jobs.close()
}
