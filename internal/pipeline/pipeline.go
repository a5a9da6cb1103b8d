package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/laguna-water-quality/internal/dashboard"
	"github.com/couchcryptid/laguna-water-quality/internal/domain"
	"github.com/couchcryptid/laguna-water-quality/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Extractor reads the raw inputs of one dataset load.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawBundle, error)
}

// Transformer builds a servable dataset from raw inputs.
type Transformer interface {
	Transform(ctx context.Context, bundle domain.RawBundle) (*dashboard.Dataset, error)
}

// Store receives built datasets. Swap reports whether the dataset replaced
// the one being served.
type Store interface {
	Swap(ds *dashboard.Dataset) bool
}

// Publisher forwards period summaries downstream.
type Publisher interface {
	Publish(ctx context.Context, summaries []dashboard.PeriodSummary) error
}

// Pipeline orchestrates the extract-transform-load reload loop.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	store       Store
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	interval    time.Duration
	trigger     <-chan struct{}

	// lastVersion is only touched by the Run goroutine.
	lastVersion string
}

// New creates a Pipeline with the given stages and observability. Pass a nil
// publisher to disable summary publishing.
func New(e Extractor, t Transformer, s Store, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, interval time.Duration) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		store:       s,
		publisher:   pub,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		interval:    interval,
	}
}

// ReloadOn makes Run reload whenever ch delivers, in addition to the
// interval. It must be called before Run.
func (p *Pipeline) ReloadOn(ch <-chan struct{}) {
	p.trigger = ch
}

// Run loads the dataset immediately and then once per interval, or on a
// ReloadOn signal, until the context is cancelled. Failed loads are retried with exponential backoff
// while the previous dataset stays in service.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		if err := p.Reload(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("dataset reload failed", "error", err, "retry_in", backoff)
			if !p.sleep(ctx, backoff) {
				return nil
			}
			backoff = sharedretry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		case <-p.trigger:
			p.logger.Debug("reload triggered by file change")
		}
	}
}

// Reload runs one extract-transform-load cycle. Unchanged inputs are
// detected by content version and skip the transform.
func (p *Pipeline) Reload(ctx context.Context) error {
	start := p.clock.Now()

	bundle, err := p.extractor.Extract(ctx)
	if err != nil {
		p.metrics.DatasetReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("extract: %w", err)
	}

	version := bundle.Version()
	if version == p.lastVersion {
		p.metrics.DatasetReloads.WithLabelValues("unchanged").Inc()
		p.logger.Debug("dataset unchanged", "version", version)
		return nil
	}

	ds, err := p.transformer.Transform(ctx, bundle)
	if err != nil {
		p.metrics.DatasetReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("transform: %w", err)
	}

	p.lastVersion = version
	if !p.store.Swap(ds) {
		p.metrics.DatasetReloads.WithLabelValues("unchanged").Inc()
		return nil
	}

	p.metrics.DatasetReloads.WithLabelValues("swapped").Inc()
	p.metrics.ReloadDuration.Observe(p.clock.Since(start).Seconds())
	p.recordIngest(ds.Report)
	p.publish(ctx, ds)
	return nil
}

func (p *Pipeline) recordIngest(r domain.IngestReport) {
	if r.Skipped {
		p.logger.Info("secondary source skipped", "reason", r.Reason)
		return
	}
	p.metrics.IngestRows.WithLabelValues("matched").Add(float64(r.Matched))
	p.metrics.IngestRows.WithLabelValues("synthesized").Add(float64(len(r.Synthesized)))
	p.metrics.IngestRows.WithLabelValues("unmatched").Add(float64(len(r.Unmatched)))
	if len(r.Synthesized) > 0 || len(r.Unmatched) > 0 {
		p.logger.Warn("secondary rows not aligned to base stations",
			"rows", r.Rows,
			"synthesized", r.Synthesized,
			"unmatched", r.Unmatched,
		)
	}
}

// publish sends period summaries. A failed publish does not fail the reload;
// the dataset is already being served.
func (p *Pipeline) publish(ctx context.Context, ds *dashboard.Dataset) {
	if p.publisher == nil {
		return
	}
	summaries := dashboard.Summaries(ds)
	if len(summaries) == 0 {
		return
	}
	if err := p.publisher.Publish(ctx, summaries); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish summaries failed", "error", err, "version", ds.Version)
		return
	}
	p.metrics.SummariesPublished.Add(float64(len(summaries)))
}

// sleep waits for d on the pipeline clock. Returns false if the context is
// cancelled first.
func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
