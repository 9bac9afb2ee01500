package cache

import (
	"context"
	"errors"
	"fmt"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/metrics"
	"travel-map-service/internal/ports"

	"github.com/rs/zerolog"
)

// CachedSource puts a CollectionCache in front of a DataSource.
//
// Cache read failures fall through to the source. Cache write failures are
// logged and never fail the fetch.
type CachedSource struct {
	source  ports.DataSource
	cache   ports.CollectionCache
	metrics *metrics.Metrics
}

var (
	_ ports.DataSource  = (*CachedSource)(nil)
	_ ports.Invalidator = (*CachedSource)(nil)
)

func NewCachedSource(source ports.DataSource, cache ports.CollectionCache, m *metrics.Metrics) *CachedSource {
	return &CachedSource{source: source, cache: cache, metrics: m}
}

func (s *CachedSource) FetchDestinations(ctx context.Context, user string) ([]domain.Destination, error) {
	return cachedFetch(ctx, s, "destinations", user, s.cache.GetDestinations, s.source.FetchDestinations, s.cache.PutDestinations)
}

func (s *CachedSource) FetchPlaces(ctx context.Context, user string) ([]domain.Place, error) {
	return cachedFetch(ctx, s, "places", user, s.cache.GetPlaces, s.source.FetchPlaces, s.cache.PutPlaces)
}

func (s *CachedSource) Invalidate(ctx context.Context, user string) error {
	return s.cache.Invalidate(ctx, user)
}

func cachedFetch[T any](
	ctx context.Context,
	s *CachedSource,
	collection string,
	user string,
	get func(context.Context, string) ([]T, error),
	fetch func(context.Context, string) ([]T, error),
	put func(context.Context, string, []T) error,
) ([]T, error) {
	logger := zerolog.Ctx(ctx)

	hit, err := get(ctx, user)
	if err == nil {
		s.metrics.ObserveCacheLookup(collection, true)
		return hit, nil
	}
	s.metrics.ObserveCacheLookup(collection, false)
	if !errors.Is(err, ports.ErrCacheMiss) {
		logger.Warn().Err(err).Str("collection", collection).Msg("cache_read_failed")
	}

	items, err := fetch(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("cached %s: %w", collection, err)
	}

	if err := put(ctx, user, items); err != nil {
		logger.Warn().Err(err).Str("collection", collection).Msg("cache_write_failed")
	}
	return items, nil
}
