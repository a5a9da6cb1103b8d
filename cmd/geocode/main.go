// Command geocode fills in station coordinates by searching each station's
// location name on Nominatim, and writes a station location file the
// dashboard can load. Stations that already have coordinates are kept as-is.
// Requests are spaced at least -interval apart to respect the public API's
// usage policy.
//
// Usage:
//
//	go run ./cmd/geocode \
//	  -dataset data/monitoring_stations.json \
//	  -existing data/stations_with_coords.json \
//	  -out data/stations_with_coords.json
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/laguna-water-quality/internal/adapter/nominatim"
	"github.com/couchcryptid/laguna-water-quality/internal/config"
	"github.com/couchcryptid/laguna-water-quality/internal/domain"
	"github.com/couchcryptid/laguna-water-quality/internal/observability"
)

func main() {
	dataset := flag.String("dataset", "data/monitoring_stations.json", "native dataset path")
	period := flag.String("period", domain.DefaultLayout().BaseKey, "period whose stations are geocoded")
	existing := flag.String("existing", "", "existing station location file whose coordinates are kept")
	out := flag.String("out", "stations_with_coords.json", "output path")
	area := flag.String("area", domain.DefaultSearchArea, "text appended to every search query")
	baseURL := flag.String("nominatim-url", "https://nominatim.openstreetmap.org", "Nominatim base URL")
	userAgent := flag.String("user-agent", "laguna-water-quality/1.0", "User-Agent sent with every request")
	interval := flag.Duration("interval", 1100*time.Millisecond, "minimum spacing between requests")
	flag.Parse()

	logger := observability.NewLogger(&config.Config{LogLevel: "info", LogFormat: "text"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	client := nominatim.NewClient(*baseURL, *userAgent, 10*time.Second, metrics, logger)
	g := newThrottledGeocoder(client, clockwork.NewRealClock(), *interval, metrics)

	if err := run(ctx, g, logger, *dataset, *period, *existing, *out, *area); err != nil {
		logger.Error("geocoding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, g domain.Geocoder, logger *slog.Logger, datasetPath, period, existingPath, outPath, area string) error {
	data, err := os.ReadFile(datasetPath)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	collection, err := domain.DecodeCollection(bytes.NewReader(data))
	if err != nil {
		return err
	}
	records := collection.Stations(period)
	if len(records) == 0 {
		return fmt.Errorf("period %s has no stations", period)
	}

	var known []domain.StationLocation
	if existingPath != "" {
		raw, err := os.ReadFile(existingPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read existing locations: %w", err)
		}
		if known, err = domain.DecodeStationLocations(raw); err != nil {
			return err
		}
	}

	locations := domain.LocationsFor(records, known)
	counts := map[string]int{}
	for i, loc := range locations {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		located, source := domain.LocateStation(ctx, loc, g, area, logger)
		locations[i] = located
		counts[source]++
		logger.Info("station", "station", loc.Station, "location", loc.Location, "source", source)
	}

	data, err = json.MarshalIndent(locations, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal locations: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	logger.Info("wrote station locations",
		"path", outPath,
		"stations", len(locations),
		"existing", counts[domain.GeoExisting],
		"found", counts[domain.GeoForward],
		"not_found", counts[domain.GeoNotFound],
		"failed", counts[domain.GeoFailed],
	)
	return nil
}

// newThrottledGeocoder caches results in front of a throttled inner geocoder,
// so only lookups that reach the remote service are spaced out.
func newThrottledGeocoder(inner domain.Geocoder, clock clockwork.Clock, interval time.Duration, metrics *observability.Metrics) *nominatim.CachedGeocoder {
	return nominatim.NewCachedGeocoder(&geocoder{inner: inner, clock: clock, interval: interval}, 64, metrics)
}

// geocoder spaces consecutive searches at least interval apart.
type geocoder struct {
	inner    domain.Geocoder
	clock    clockwork.Clock
	interval time.Duration
	last     time.Time
}

func (g *geocoder) Search(ctx context.Context, query string) (domain.GeocodingResult, error) {
	if !g.last.IsZero() {
		if wait := g.interval - g.clock.Since(g.last); wait > 0 {
			select {
			case <-ctx.Done():
				return domain.GeocodingResult{}, ctx.Err()
			case <-g.clock.After(wait):
			}
		}
	}
	g.last = g.clock.Now()
	return g.inner.Search(ctx, query)
}
