package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/laguna-water-quality/internal/dashboard"
	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

// Dashboard answers the query endpoints. *dashboard.Engine implements it.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Periods() (dashboard.PeriodIndex, error)
	Stations(sel dashboard.Selection) (dashboard.StationList, error)
	Series(sel dashboard.Selection) (domain.MetricSeries, error)
	KPIs(sel dashboard.Selection) (domain.AggregateResult, error)
	Histogram(sel dashboard.Selection) (dashboard.HistogramView, error)
	Markers(sel dashboard.Selection) (dashboard.MarkerView, error)
	Legend(sel dashboard.Selection) (dashboard.LegendView, error)
	SmallMultiples(sel dashboard.Selection) ([]domain.MetricSeries, error)
	IngestReport() (domain.IngestReport, error)
}

// BoundarySource supplies the lake outline as GeoJSON.
type BoundarySource interface {
	Boundary(ctx context.Context) ([]byte, error)
}

// Server exposes the dashboard API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	dash       Dashboard
	boundary   BoundarySource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api routes.
func NewServer(addr string, dash Dashboard, boundary BoundarySource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dash:     dash,
		boundary: boundary,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(dash))
	mux.Handle("GET /metrics", promhttp.Handler())
	s.routes(mux)

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
