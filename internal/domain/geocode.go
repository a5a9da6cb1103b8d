package domain

import (
	"context"
	"log/slog"
)

// DefaultSearchArea narrows place searches to the lake region.
const DefaultSearchArea = "Laguna de Bay Philippines"

// How a station location was obtained.
const (
	GeoExisting = "existing"
	GeoForward  = "forward"
	GeoNotFound = "not_found"
	GeoFailed   = "failed"
	GeoSkipped  = "skipped"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Found reports whether the provider returned a place.
func (r GeocodingResult) Found() bool {
	return r.DisplayName != "" || r.Lat != 0 || r.Lon != 0
}

// Geocoder resolves free-text place queries to coordinates.
type Geocoder interface {
	Search(ctx context.Context, query string) (GeocodingResult, error)
}

// StationQuery is the search text used to locate a monitoring station.
func StationQuery(location, area string) string {
	if area == "" {
		return location
	}
	return location + " " + area
}

// LocateStation fills in coordinates for loc by searching its location name.
// Already-located stations are returned untouched. Failures leave the
// coordinates empty and are reported through the returned source.
func LocateStation(ctx context.Context, loc StationLocation, geocoder Geocoder, area string, logger *slog.Logger) (StationLocation, string) {
	if loc.Located() {
		return loc, GeoExisting
	}
	if geocoder == nil || loc.Location == "" {
		return loc, GeoSkipped
	}

	query := StationQuery(loc.Location, area)
	result, err := geocoder.Search(ctx, query)
	if err != nil {
		logger.Warn("station geocoding failed",
			"station", loc.Station,
			"query", query,
			"error", err,
		)
		return loc, GeoFailed
	}
	if !result.Found() {
		logger.Info("station not found", "station", loc.Station, "query", query)
		return loc, GeoNotFound
	}

	loc.Lat = Coord(result.Lat)
	loc.Lon = Coord(result.Lon)
	return loc, GeoForward
}

// LocationsFor lists one location per station of records, carrying over
// known coordinates from existing by station code.
func LocationsFor(records []StationRecord, existing []StationLocation) []StationLocation {
	known := make(map[string]StationLocation, len(existing))
	for _, l := range existing {
		known[l.Station] = l
	}

	out := make([]StationLocation, 0, len(records))
	for _, r := range records {
		loc, ok := known[r.Station]
		if !ok {
			loc = StationLocation{Station: r.Station}
		}
		if loc.Location == "" {
			loc.Location = r.Location
		}
		out = append(out, loc)
	}
	return out
}
