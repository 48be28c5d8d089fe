// Package server exposes read-only diagnostics for a running simulator over
// HTTP: health, Prometheus metrics, current state and a waveform snapshot.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/analysis"
	"github.com/priyangsubanerjee/anc-simulator/internal/render"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 20 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Simulator is the view of the simulator the handlers need.
type Simulator interface {
	Running() bool
	Params() ancsim.Params
	SessionInfo() (ancsim.SessionInfo, bool)
	Taps() (render.Taps, bool)
	Measure() (analysis.Report, error)
	Spectrum() (analysis.Spectrum, error)
}

// Server serves diagnostics for one simulator.
type Server struct {
	sim    Simulator
	reg    prometheus.Gatherer
	log    *zap.Logger
	router chi.Router
}

// New builds the router. reg may be nil, in which case /metrics is not served.
func New(sim Simulator, reg prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{sim: sim, reg: reg, log: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.logging)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.health)
	if reg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	r.Get("/state", s.state)
	r.Get("/snapshot.png", s.snapshot)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("diagnostics listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())))
	})
}
