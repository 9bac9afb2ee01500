package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupPlacesByDestinationKeepsFetchOrder(t *testing.T) {
	places := []Place{
		{PlaceID: "p1", DestinationID: "A"},
		{PlaceID: "p2", DestinationID: "B"},
		{PlaceID: "p3", DestinationID: "A"},
		{PlaceID: "orphan"},
	}

	got := GroupPlacesByDestination(places)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"p1", "p3"}, ids(got["A"]))
	assert.Equal(t, []string{"p2"}, ids(got["B"]))
	assert.Equal(t, 3, got.Count())
}

func TestPickFollowsGranularity(t *testing.T) {
	assert.Equal(t, "d", Pick(GranularityDestinations, "d", "p"))
	assert.Equal(t, "p", Pick(GranularityPlaces, "d", "p"))
	assert.Equal(t, "d", Pick(Granularity(""), "d", "p"))
}

func TestViewModelColorsAreCopied(t *testing.T) {
	colors := map[string]string{"a": "#0084FF"}
	vm := NewViewModel(ViewModel{HoverID: "a"}, colors)
	colors["a"] = "#FA3C4C"

	assert.Equal(t, "#0084FF", vm.ColorOf("a"))
	assert.Equal(t, "", vm.ColorOf("missing"))
	assert.True(t, vm.Hovered("a"))
	assert.False(t, vm.Hovered(""))
}

func ids(ps []Place) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.PlaceID)
	}
	return out
}
