package services

import (
	"math"
	"travel-map-service/internal/domain"
)

// DefaultPlaceCutoffMiles is how far the viewport center may be from a destination
// for that destination's places to be rendered.
const DefaultPlaceCutoffMiles = 200

// NearestDestination returns the destination closest to center by great-circle distance.
//
// NaN distances (corrupt coordinates) count as infinitely far and are never selected.
// Equal distances resolve to the lowest PlaceID so the result does not depend on input order.
// ok is false when no destination has a finite distance.
func NearestDestination(center domain.Coordinates, destinations []domain.Destination) (best domain.Destination, miles float64, ok bool) {
	miles = math.Inf(1)

	for _, d := range destinations {
		dist := Distance(d.Coordinates(), center)
		if math.IsNaN(dist) {
			dist = math.Inf(1)
		}
		if math.IsInf(dist, 1) {
			continue
		}

		if !ok || dist < miles || (dist == miles && d.PlaceID < best.PlaceID) {
			best = d
			miles = dist
			ok = true
		}
	}

	return best, miles, ok
}

// ComputeRenderable returns the places of the destination nearest to center,
// provided that destination is within cutoffMiles (inclusive).
//
// A nil center (map not initialized), no destinations, a nearest destination beyond
// the cutoff, or a nearest destination with no places all yield an empty result.
// The returned slice is a copy and may be retained by the caller.
func ComputeRenderable(
	center *domain.Coordinates,
	destinations []domain.Destination,
	placesByDestination domain.PlacesByDestination,
	cutoffMiles float64,
) []domain.Place {
	if center == nil || len(destinations) == 0 {
		return []domain.Place{}
	}

	closest, miles, ok := NearestDestination(*center, destinations)
	if !ok || miles > cutoffMiles {
		return []domain.Place{}
	}

	places := placesByDestination[closest.PlaceID]
	out := make([]domain.Place, len(places))
	copy(out, places)
	return out
}
