// Command wqd serves the Laguna Lake water-quality dashboard API. It loads
// the monitoring dataset from disk, reloads it when the files change, and
// optionally publishes per-quarter summaries to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/laguna-water-quality/internal/adapter/file"
	httpadapter "github.com/couchcryptid/laguna-water-quality/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/laguna-water-quality/internal/adapter/kafka"
	"github.com/couchcryptid/laguna-water-quality/internal/adapter/nominatim"
	"github.com/couchcryptid/laguna-water-quality/internal/config"
	"github.com/couchcryptid/laguna-water-quality/internal/dashboard"
	"github.com/couchcryptid/laguna-water-quality/internal/observability"
	"github.com/couchcryptid/laguna-water-quality/internal/pipeline"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	layout, err := config.LoadLayout(cfg.LayoutPath)
	if err != nil {
		logger.Error("failed to load secondary layout", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	engine := dashboard.NewEngine(cfg.CacheSize, logger, metrics)
	source := file.NewSource(cfg.DatasetPath, cfg.SecondaryPath, cfg.StationsPath, clock)
	transformer := pipeline.NewTransformer(layout, logger)

	// Summary publishing is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("summary publishing enabled", "topic", cfg.KafkaSummaryTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("summary publishing disabled")
	}

	boundary := nominatim.NewBoundaryClient(nominatim.BoundaryOptions{
		URL:          cfg.BoundaryURL,
		UserAgent:    cfg.UserAgent,
		FallbackPath: cfg.BoundaryFallbackPath,
		Timeout:      cfg.BoundaryTimeout,
		TTL:          cfg.BoundaryTTL,
		RetryAfter:   cfg.BoundaryRetry,
	}, clock, metrics, logger)

	p := pipeline.New(source, transformer, engine, publisher, logger, metrics, clock, cfg.ReloadInterval)

	// File watching is feature-flagged via WATCH_FILES.
	var watcher *file.Watcher
	if cfg.WatchFiles {
		watcher, err = file.NewWatcher(logger, cfg.DatasetPath, cfg.SecondaryPath, cfg.StationsPath)
		if err != nil {
			logger.Warn("file watching unavailable, reloading on interval only", "error", err)
		} else {
			p.ReloadOn(watcher.Changes())
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, engine, boundary, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if watcher != nil {
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("file watcher error", "error", err)
			}
		}()
	}

	// Start reload pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
