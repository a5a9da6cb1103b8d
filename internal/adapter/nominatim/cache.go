package nominatim

import (
	"context"

	"github.com/couchcryptid/laguna-water-quality/internal/cache"
	"github.com/couchcryptid/laguna-water-quality/internal/domain"
	"github.com/couchcryptid/laguna-water-quality/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *cache.LRU[string, domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   cache.New[string, domain.GeocodingResult](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Search(ctx context.Context, query string) (domain.GeocodingResult, error) {
	if result, ok := c.cache.Get(query); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.Search(ctx, query)
	if err != nil {
		return result, err
	}
	// Empty results are not cached so a later run can retry them.
	if result.Found() {
		c.cache.Put(query, result)
	}
	return result, nil
}
