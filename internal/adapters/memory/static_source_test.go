package memory

import (
	"context"
	"errors"
	"testing"
	"travel-map-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSourceFetches(t *testing.T) {
	s := NewStaticSource(map[string]domain.Journal{
		"ana": {
			Destinations: []domain.Destination{{PlaceID: "d1", Name: "Lisbon"}},
			Places:       []domain.Place{{PlaceID: "p1", DestinationID: "d1"}},
		},
	})
	ctx := context.Background()

	dests, err := s.FetchDestinations(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, dests, 1)

	places, err := s.FetchPlaces(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "d1", places[0].DestinationID)
	assert.Equal(t, 2, s.Fetches("ana"))

	// Returned slices are copies.
	dests[0].Name = "changed"
	again, _ := s.FetchDestinations(ctx, "ana")
	assert.Equal(t, "Lisbon", again[0].Name)
}

func TestStaticSourceUnknownUserIsEmpty(t *testing.T) {
	s := NewStaticSource(nil)
	dests, err := s.FetchDestinations(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, dests)
	assert.Empty(t, dests)
}

func TestStaticSourceFailures(t *testing.T) {
	s := NewStaticSource(nil)
	boom := errors.New("boom")
	s.Fail("ana", boom)

	_, err := s.FetchPlaces(context.Background(), "ana")
	assert.ErrorIs(t, err, boom)

	s.Fail("ana", nil)
	_, err = s.FetchPlaces(context.Background(), "ana")
	assert.NoError(t, err)
}

func TestStaticSourceCanceledContext(t *testing.T) {
	s := NewStaticSource(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FetchDestinations(ctx, "ana")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Fetches("ana"))
}
