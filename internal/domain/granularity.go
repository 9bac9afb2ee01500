package domain

// Granularity is the current display mode of the map and the list.
type Granularity string

const (
	GranularityDestinations Granularity = "destinations"
	GranularityPlaces       Granularity = "places"
)

// Pick returns dest in destinations mode and place in places mode.
func Pick[T any](g Granularity, dest, place T) T {
	if g == GranularityPlaces {
		return place
	}
	return dest
}
