package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/laguna-water-quality/internal/observability"
)

const (
	// maxBoundaryBytes bounds the size of a remote boundary response.
	maxBoundaryBytes = 8 << 20

	defaultBoundaryRetry = time.Minute
)

// BoundaryClient serves the lake outline as GeoJSON. It prefers the remote
// search result and falls back to a bundled file when the remote is
// unreachable or returns no features. Remote results are reused for ttl and
// fallback results for retryAfter, after which the remote is tried again.
// Concurrent callers share a single in-flight lookup.
type BoundaryClient struct {
	httpClient   *http.Client
	url          string
	userAgent    string
	fallbackPath string
	ttl          time.Duration
	retryAfter   time.Duration
	clock        clockwork.Clock
	metrics      *observability.Metrics
	logger       *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	cached  []byte
	expires time.Time
}

// BoundaryOptions configures a BoundaryClient. An empty URL disables the
// remote lookup. A zero RetryAfter defaults to one minute.
type BoundaryOptions struct {
	URL          string
	UserAgent    string
	FallbackPath string
	Timeout      time.Duration
	TTL          time.Duration
	RetryAfter   time.Duration
}

// NewBoundaryClient creates a BoundaryClient.
func NewBoundaryClient(opts BoundaryOptions, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *BoundaryClient {
	retryAfter := opts.RetryAfter
	if retryAfter <= 0 {
		retryAfter = defaultBoundaryRetry
	}
	return &BoundaryClient{
		httpClient:   &http.Client{Timeout: opts.Timeout},
		url:          opts.URL,
		userAgent:    opts.UserAgent,
		fallbackPath: opts.FallbackPath,
		ttl:          opts.TTL,
		retryAfter:   retryAfter,
		clock:        clock,
		metrics:      metrics,
		logger:       logger,
	}
}

// Boundary returns the outline GeoJSON. It fails only when both the remote
// and the fallback file are unavailable, or when ctx ends while waiting for
// an in-flight lookup.
func (b *BoundaryClient) Boundary(ctx context.Context) ([]byte, error) {
	if data, ok := b.fromCache(); ok {
		b.metrics.BoundaryFetches.WithLabelValues("cache").Inc()
		return data, nil
	}

	// The shared lookup outlives any single caller; the HTTP client timeout bounds it.
	ch := b.group.DoChan("boundary", func() (any, error) {
		return b.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (b *BoundaryClient) fromCache() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cached == nil || !b.clock.Now().Before(b.expires) {
		return nil, false
	}
	return b.cached, true
}

func (b *BoundaryClient) store(data []byte, ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cached, b.expires = data, b.clock.Now().Add(ttl)
}

func (b *BoundaryClient) load(ctx context.Context) ([]byte, error) {
	// A lookup that finished just before this one started already filled the cache.
	if data, ok := b.fromCache(); ok {
		b.metrics.BoundaryFetches.WithLabelValues("cache").Inc()
		return data, nil
	}

	if b.url != "" {
		data, err := b.fetch(ctx)
		if err == nil {
			b.store(data, b.ttl)
			b.metrics.BoundaryFetches.WithLabelValues("remote").Inc()
			return data, nil
		}
		b.logger.Warn("remote boundary unavailable, using fallback", "error", err, "retry_after", b.retryAfter)
	}

	data, err := os.ReadFile(b.fallbackPath)
	if err != nil {
		return nil, fmt.Errorf("read boundary fallback: %w", err)
	}
	b.store(data, b.retryAfter)
	b.metrics.BoundaryFetches.WithLabelValues("fallback").Inc()
	return data, nil
}

func (b *BoundaryClient) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boundary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("boundary request: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBoundaryBytes))
	if err != nil {
		return nil, fmt.Errorf("read boundary: %w", err)
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode boundary: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("boundary search returned no features")
	}
	return data, nil
}

type featureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}
