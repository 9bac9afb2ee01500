package services

import (
	"travel-map-service/internal/domain"

	"github.com/paulmach/orb/geo"
)

const (
	metersPerMile = 1609.34
	milesPerMeter = 0.000621371
)

func MetersToMiles(meters float64) float64 { return meters * milesPerMeter }

func MilesToMeters(miles float64) float64 { return miles * metersPerMile }

// Distance returns the great-circle distance in miles between a and b.
// It uses the haversine formula over orb.EarthRadius (6,378,137 m).
// NaN coordinates produce a NaN distance.
func Distance(a, b domain.Coordinates) float64 {
	return MetersToMiles(geo.DistanceHaversine(a.Point(), b.Point()))
}

// DistanceLatLon is Distance over raw coordinate pairs.
func DistanceLatLon(lat1, lon1, lat2, lon2 float64) float64 {
	return Distance(domain.Coordinates{Lat: lat1, Lon: lon1}, domain.Coordinates{Lat: lat2, Lon: lon2})
}
