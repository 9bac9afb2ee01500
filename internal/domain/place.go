package domain

// Represents a point of interest nested under a Destination.
// DestinationID references Destination.PlaceID.
type Place struct {
	PlaceID       string  `json:"place_id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Country       string  `json:"country"`
	ZipCode       string  `json:"zip_code"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	DestinationID string  `json:"destination_id"`
}

func (p Place) Coordinates() Coordinates {
	return Coordinates{Lat: p.Latitude, Lon: p.Longitude}
}

// Places grouped by their owning destination id.
// Order within a group is the order the places were fetched in.
type PlacesByDestination map[string][]Place

// GroupPlacesByDestination builds the per-destination view over a flat place list.
// Places with an empty DestinationID cannot be shown under any destination and are skipped.
func GroupPlacesByDestination(places []Place) PlacesByDestination {
	out := make(PlacesByDestination)
	for _, p := range places {
		if p.DestinationID == "" {
			continue
		}
		out[p.DestinationID] = append(out[p.DestinationID], p)
	}
	return out
}

// Count returns the total number of places across all groups.
func (m PlacesByDestination) Count() int {
	n := 0
	for _, ps := range m {
		n += len(ps)
	}
	return n
}
