package services

import "travel-map-service/internal/domain"

// GranularityCutoff is the zoom level at or below which destinations are shown.
const GranularityCutoff = 11

// Classify maps a zoom level to a display granularity using GranularityCutoff.
func Classify(zoom float64) domain.Granularity {
	return GranularityPolicy{Cutoff: GranularityCutoff}.Classify(zoom)
}

// GranularityPolicy switches to places strictly above Cutoff.
// There is no hysteresis and no debouncing; an exact match stays on destinations.
type GranularityPolicy struct {
	Cutoff float64
}

func (p GranularityPolicy) Classify(zoom float64) domain.Granularity {
	if zoom > p.Cutoff {
		return domain.GranularityPlaces
	}
	return domain.GranularityDestinations
}
