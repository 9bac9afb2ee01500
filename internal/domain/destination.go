package domain

// Represents a city-level travel entry owned by a single user.
// Destinations are shown on the map at low zoom and own zero or more Places.
type Destination struct {
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func (d Destination) Coordinates() Coordinates {
	return Coordinates{Lat: d.Latitude, Lon: d.Longitude}
}
