package services

import (
	"math"
	"testing"

	"travel-map-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journalFixture() ([]domain.Destination, domain.PlacesByDestination) {
	destinations := []domain.Destination{
		{PlaceID: "A", Name: "New York", Latitude: 40.7506, Longitude: -73.9935},
		{PlaceID: "B", Name: "Los Angeles", Latitude: 34.0522, Longitude: -118.2437},
	}
	places := domain.GroupPlacesByDestination([]domain.Place{
		{PlaceID: "p1", DestinationID: "A", Latitude: 40.7484, Longitude: -73.9857},
		{PlaceID: "p2", DestinationID: "B", Latitude: 34.1341, Longitude: -118.3215},
	})
	return destinations, places
}

func TestComputeRenderableScenario(t *testing.T) {
	destinations, places := journalFixture()

	got := ComputeRenderable(&domain.Coordinates{Lat: 40.7, Lon: -74.0}, destinations, places, DefaultPlaceCutoffMiles)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].PlaceID)

	got = ComputeRenderable(&domain.Coordinates{Lat: 0, Lon: 0}, destinations, places, DefaultPlaceCutoffMiles)
	assert.Empty(t, got)
}

func TestComputeRenderableCutoffBoundary(t *testing.T) {
	dest := domain.Destination{PlaceID: "A", Latitude: 40.7506, Longitude: -73.9935}
	places := domain.GroupPlacesByDestination([]domain.Place{{PlaceID: "p1", DestinationID: "A"}})
	center := domain.Coordinates{Lat: 42.0, Lon: -72.5}
	exact := Distance(dest.Coordinates(), center)

	got := ComputeRenderable(&center, []domain.Destination{dest}, places, exact)
	assert.Len(t, got, 1, "distance equal to cutoff is included")

	got = ComputeRenderable(&center, []domain.Destination{dest}, places, math.Nextafter(exact, 0))
	assert.Empty(t, got, "distance above cutoff is excluded")
}

func TestComputeRenderableEmptyInputs(t *testing.T) {
	_, places := journalFixture()
	centers := []*domain.Coordinates{nil, {Lat: 40.7, Lon: -74.0}, {Lat: 0, Lon: 0}}

	for _, c := range centers {
		got := ComputeRenderable(c, nil, places, DefaultPlaceCutoffMiles)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}

	destinations, _ := journalFixture()
	assert.Empty(t, ComputeRenderable(nil, destinations, places, DefaultPlaceCutoffMiles))
}

func TestComputeRenderableDestinationWithoutPlaces(t *testing.T) {
	destinations, _ := journalFixture()
	got := ComputeRenderable(&domain.Coordinates{Lat: 40.7, Lon: -74.0}, destinations, domain.PlacesByDestination{}, DefaultPlaceCutoffMiles)
	assert.Empty(t, got)
}

func TestComputeRenderableReturnsCopy(t *testing.T) {
	destinations, places := journalFixture()
	got := ComputeRenderable(&domain.Coordinates{Lat: 40.7, Lon: -74.0}, destinations, places, DefaultPlaceCutoffMiles)
	got[0].Name = "mutated"

	assert.Empty(t, places["A"][0].Name)
}

func TestNearestDestinationTieBreakIsOrderIndependent(t *testing.T) {
	east := domain.Destination{PlaceID: "b", Latitude: 0, Longitude: 1}
	west := domain.Destination{PlaceID: "a", Latitude: 0, Longitude: -1}
	center := domain.Coordinates{}

	got1, _, ok := NearestDestination(center, []domain.Destination{east, west})
	require.True(t, ok)
	got2, _, _ := NearestDestination(center, []domain.Destination{west, east})

	assert.Equal(t, "a", got1.PlaceID)
	assert.Equal(t, "a", got2.PlaceID)
}

func TestNearestDestinationSkipsNaN(t *testing.T) {
	corrupt := domain.Destination{PlaceID: "corrupt", Latitude: math.NaN(), Longitude: math.NaN()}
	far := domain.Destination{PlaceID: "far", Latitude: 10, Longitude: 10}

	got, miles, ok := NearestDestination(domain.Coordinates{}, []domain.Destination{corrupt, far})
	require.True(t, ok)
	assert.Equal(t, "far", got.PlaceID)
	assert.False(t, math.IsNaN(miles))

	_, _, ok = NearestDestination(domain.Coordinates{}, []domain.Destination{corrupt})
	assert.False(t, ok)
}

func TestComputeRenderableIgnoresCorruptNearest(t *testing.T) {
	corrupt := domain.Destination{PlaceID: "corrupt", Latitude: math.NaN(), Longitude: -74.0}
	places := domain.GroupPlacesByDestination([]domain.Place{{PlaceID: "bad", DestinationID: "corrupt"}})

	got := ComputeRenderable(&domain.Coordinates{Lat: 40.7, Lon: -74.0}, []domain.Destination{corrupt}, places, DefaultPlaceCutoffMiles)
	assert.Empty(t, got)
}
