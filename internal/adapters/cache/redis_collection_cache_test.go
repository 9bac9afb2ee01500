package cache

import (
	"context"
	"errors"
	"testing"
	"time"
	"travel-map-service/internal/adapters/memory"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/metrics"
	"travel-map-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCollectionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c, err := NewRedisCollectionCache(rdb, time.Minute)
	require.NoError(t, err)
	return c, mr
}

func testJournal() domain.Journal {
	return domain.Journal{
		Destinations: []domain.Destination{{PlaceID: "d1", Name: "Kyoto", CountryCode: "JP", Latitude: 35.0116, Longitude: 135.7681}},
		Places:       []domain.Place{{PlaceID: "p1", Name: "Fushimi Inari", DestinationID: "d1", Latitude: 34.9671, Longitude: 135.7727}},
	}
}

func TestRedisCacheRoundTripWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	j := testJournal()

	_, err := c.GetDestinations(ctx, "ana")
	require.ErrorIs(t, err, ports.ErrCacheMiss)

	require.NoError(t, c.PutDestinations(ctx, "ana", j.Destinations))
	require.NoError(t, c.PutPlaces(ctx, "ana", j.Places))
	assert.Equal(t, time.Minute, mr.TTL("travelmap:journal:ana:destinations"))

	dests, err := c.GetDestinations(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, j.Destinations, dests)

	places, err := c.GetPlaces(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, j.Places, places)

	mr.FastForward(2 * time.Minute)
	_, err = c.GetPlaces(ctx, "ana")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestRedisCacheInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	j := testJournal()

	require.NoError(t, c.PutDestinations(ctx, "ana", j.Destinations))
	require.NoError(t, c.PutPlaces(ctx, "ana", j.Places))
	require.NoError(t, c.PutPlaces(ctx, "bo", j.Places))

	require.NoError(t, c.Invalidate(ctx, "ana"))
	assert.False(t, mr.Exists("travelmap:journal:ana:destinations"))
	assert.False(t, mr.Exists("travelmap:journal:ana:places"))
	assert.True(t, mr.Exists("travelmap:journal:bo:places"))
}

func TestRedisCacheRejectsEmptyUser(t *testing.T) {
	c, _ := newTestCache(t)
	assert.Error(t, c.PutPlaces(context.Background(), "", nil))
	_, err := c.GetPlaces(context.Background(), "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss)
}

func TestNewRedisCollectionCacheValidates(t *testing.T) {
	_, err := NewRedisCollectionCache(nil, time.Minute)
	assert.Error(t, err)

	_, err = NewRedisCollectionCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0)
	assert.Error(t, err)

	assert.Nil(t, OpenRedis("", "", 0))
}

func TestCachedSourceServesFromCache(t *testing.T) {
	c, _ := newTestCache(t)
	src := memory.NewStaticSource(map[string]domain.Journal{"ana": testJournal()})
	cached := NewCachedSource(src, c, metrics.New())
	ctx := context.Background()

	first, err := cached.FetchDestinations(ctx, "ana")
	require.NoError(t, err)
	second, err := cached.FetchDestinations(ctx, "ana")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.Fetches("ana"))

	require.NoError(t, cached.Invalidate(ctx, "ana"))
	_, err = cached.FetchDestinations(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 2, src.Fetches("ana"))
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	c, mr := newTestCache(t)
	src := memory.NewStaticSource(nil)
	boom := errors.New("backend down")
	src.Fail("ana", boom)
	cached := NewCachedSource(src, c, nil)

	_, err := cached.FetchPlaces(context.Background(), "ana")
	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("travelmap:journal:ana:places"))
}

func TestCachedSourceFallsThroughWhenRedisFails(t *testing.T) {
	c, mr := newTestCache(t)
	src := memory.NewStaticSource(map[string]domain.Journal{"ana": testJournal()})
	cached := NewCachedSource(src, c, nil)

	mr.SetError("LOADING")
	places, err := cached.FetchPlaces(context.Background(), "ana")
	require.NoError(t, err)
	assert.Len(t, places, 1)
	assert.Equal(t, 1, src.Fetches("ana"))
}
