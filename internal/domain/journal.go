package domain

// Journal is everything one user has logged: destinations and the places under them.
type Journal struct {
	Destinations []Destination `json:"destinations"`
	Places       []Place       `json:"places"`
}
