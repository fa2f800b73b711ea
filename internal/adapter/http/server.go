package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/modis-choropleth/internal/adapter/chart"
	"github.com/couchcryptid/modis-choropleth/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes health, readiness and metrics endpoints plus the JSON
// control surface for the session.
type Server struct {
	httpServer *http.Server
	controller Controller
	charts     ChartRenderer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api routes.
func NewServer(addr string, controller Controller, charts ChartRenderer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		controller: controller,
		charts:     charts,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(controller))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/variables", s.handleVariables)
	mux.HandleFunc("POST /api/variable", s.handleSelectVariable)
	mux.HandleFunc("POST /api/time", s.handleScrub)
	mux.HandleFunc("POST /api/step", s.handleStep)
	mux.HandleFunc("POST /api/play", s.handlePlay)
	mux.HandleFunc("POST /api/click", s.handleClick)
	mux.HandleFunc("GET /api/hover", s.handleHover)
	mux.HandleFunc("GET /api/chart.svg", s.handleChart(chart.SVG))
	mux.HandleFunc("GET /api/chart.png", s.handleChart(chart.PNG))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, view session.View, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && !errors.Is(err, session.ErrNotReady) {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
