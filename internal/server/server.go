package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mroshb/hitched/pkg/logger"
)

// PingFunc reports whether a backing store is reachable.
type PingFunc func(ctx context.Context) error

const pingTimeout = 2 * time.Second

// NewRouter serves /health and /metrics. A nil ping always reports healthy.
func NewRouter(gatherer prometheus.Gatherer, ping PingFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(req.Context(), pingTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				logger.Warn("Health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}

// Server runs the operational HTTP endpoints next to the bot.
type Server struct {
	srv *http.Server
}

func New(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start listens in the background. Errors other than a clean shutdown are logged.
func (s *Server) Start() {
	go func() {
		logger.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "error", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
