package http

import (
	"errors"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/laguna-water-quality/internal/dashboard"
	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/metrics", func(w http.ResponseWriter, _ *http.Request) {
		sharedobs.WriteJSON(w, http.StatusOK, domain.Metrics)
	})
	mux.HandleFunc("GET /api/periods", func(w http.ResponseWriter, r *http.Request) {
		out, err := s.dash.Periods()
		s.respond(w, r, out, err)
	})
	mux.HandleFunc("GET /api/stations", query(s, s.dash.Stations))
	mux.HandleFunc("GET /api/series", query(s, s.dash.Series))
	mux.HandleFunc("GET /api/kpis", query(s, s.dash.KPIs))
	mux.HandleFunc("GET /api/histogram", query(s, s.dash.Histogram))
	mux.HandleFunc("GET /api/markers", query(s, s.dash.Markers))
	mux.HandleFunc("GET /api/legend", query(s, s.dash.Legend))
	mux.HandleFunc("GET /api/small-multiples", query(s, s.dash.SmallMultiples))
	mux.HandleFunc("GET /api/ingest-report", func(w http.ResponseWriter, r *http.Request) {
		out, err := s.dash.IngestReport()
		s.respond(w, r, out, err)
	})
	mux.HandleFunc("GET /api/boundary", s.handleBoundary)
}

// query adapts a selection-driven engine method to a handler.
func query[T any](s *Server, fn func(dashboard.Selection) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(selectionFrom(r))
		s.respond(w, r, out, err)
	}
}

func selectionFrom(r *http.Request) dashboard.Selection {
	q := r.URL.Query()
	return dashboard.Selection{
		Metric:  q.Get("metric"),
		Year:    q.Get("year"),
		Quarter: q.Get("quarter"),
		Station: q.Get("station"),
		Month:   q.Get("month"),
	}
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err == nil {
		sharedobs.WriteJSON(w, http.StatusOK, v)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dashboard.ErrNotLoaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, dashboard.ErrUnknownMetric):
		status = http.StatusBadRequest
	default:
		s.logger.Error("query failed", "path", r.URL.Path, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleBoundary(w http.ResponseWriter, r *http.Request) {
	if s.boundary == nil {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "boundary not configured"})
		return
	}
	data, err := s.boundary.Boundary(r.Context())
	if err != nil {
		s.logger.Error("boundary unavailable", "error", err)
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client went away
}
