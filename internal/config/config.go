package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultBoundaryURL searches Nominatim for the lake outline as GeoJSON.
const DefaultBoundaryURL = "https://nominatim.openstreetmap.org/search.php?format=geojson&q=Laguna%20de%20Bay&polygon_geojson=1"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset sources.
	DatasetPath    string
	SecondaryPath  string
	LayoutPath     string
	StationsPath   string
	ReloadInterval time.Duration
	WatchFiles     bool
	CacheSize      int

	// Lake boundary lookup.
	BoundaryURL          string
	BoundaryFallbackPath string
	BoundaryTimeout      time.Duration
	BoundaryTTL          time.Duration
	BoundaryRetry        time.Duration

	// Nominatim settings shared by the boundary source and station geocoding.
	NominatimURL string
	UserAgent    string

	// Optional period-summary publishing.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaSummaryTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	reloadInterval, err := parseDuration("RELOAD_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}
	boundaryTimeout, err := parseDuration("BOUNDARY_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	boundaryTTL, err := parseDuration("BOUNDARY_TTL", "1h")
	if err != nil {
		return nil, err
	}
	boundaryRetry, err := parseDuration("BOUNDARY_RETRY", "1m")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("CACHE_SIZE", 512)
	if err != nil {
		return nil, err
	}

	watchFiles := true
	if v := os.Getenv("WATCH_FILES"); v != "" {
		watchFiles, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid WATCH_FILES: must be true or false")
		}
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid KAFKA_ENABLED: must be true or false")
		}
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetPath:    sharedcfg.EnvOrDefault("DATASET_PATH", "data/monitoring_stations.json"),
		SecondaryPath:  sharedcfg.EnvOrDefault("SECONDARY_PATH", "data/water_quality_2024_Oct-Dec.csv"),
		LayoutPath:     os.Getenv("LAYOUT_PATH"),
		StationsPath:   sharedcfg.EnvOrDefault("STATIONS_PATH", "data/stations_with_coords.json"),
		ReloadInterval: reloadInterval,
		WatchFiles:     watchFiles,
		CacheSize:      cacheSize,

		BoundaryURL:          sharedcfg.EnvOrDefault("BOUNDARY_URL", DefaultBoundaryURL),
		BoundaryFallbackPath: sharedcfg.EnvOrDefault("BOUNDARY_FALLBACK_PATH", "data/laguna_boundary.geojson"),
		BoundaryTimeout:      boundaryTimeout,
		BoundaryTTL:          boundaryTTL,
		BoundaryRetry:        boundaryRetry,

		NominatimURL: sharedcfg.EnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:    sharedcfg.EnvOrDefault("USER_AGENT", "laguna-water-quality/1.0"),

		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "water-quality-summaries"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
