// Package ops serves the operational HTTP surface: liveness, readiness
// and Prometheus metrics. It carries no vault data.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/logging"
	"github.com/dmitrijs2005/vaultguard/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	readHeaderTimeout = 5 * time.Second
	pingTimeout       = 2 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the operational HTTP server.
type Server struct {
	address string
	logger  logging.Logger
	checks  map[string]Pinger
}

// NewServer builds a Server. checks maps a component name (e.g. "database",
// "cache") to the dependency probed by /readyz.
func NewServer(address string, logger logging.Logger, checks map[string]Pinger) *Server {
	return &Server{address: address, logger: logger, checks: checks}
}

// Router returns the chi router with all operational routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/readyz", s.ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

type readiness struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	res := readiness{Status: "ok", Components: make(map[string]string, len(s.checks))}
	code := http.StatusOK
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn(ctx, "readiness check failed", "component", name, "error", err)
			res.Components[name] = "unavailable"
			res.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		res.Components[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(res)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "ops server listening", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info(ctx, "ops server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}
