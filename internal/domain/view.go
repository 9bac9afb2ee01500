package domain

// Kind of viewport instruction the map widget must apply.
type ViewportCommandKind string

const (
	ViewportSetCenter ViewportCommandKind = "set_center"
	ViewportZoomTo    ViewportCommandKind = "zoom_to"
	ViewportFlyTo     ViewportCommandKind = "fly_to"
)

// A single queued instruction for the map widget.
// Seq increases monotonically per viewport so clients can skip commands they already applied.
type ViewportCommand struct {
	Seq    uint64              `json:"seq"`
	Kind   ViewportCommandKind `json:"kind"`
	Center *Coordinates        `json:"center,omitempty"`
	Zoom   *float64            `json:"zoom,omitempty"`
}

// A single row shared by the list renderer and the marker layer.
type Row struct {
	Kind          Granularity `json:"kind"`
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Country       string      `json:"country"`
	CountryCode   string      `json:"country_code,omitempty"`
	Address       string      `json:"address,omitempty"`
	City          string      `json:"city,omitempty"`
	State         string      `json:"state,omitempty"`
	ZipCode       string      `json:"zip_code,omitempty"`
	DestinationID string      `json:"destination_id,omitempty"`
	Coordinates   Coordinates `json:"coordinates"`
	Color         string      `json:"color"`
}

func DestinationRow(d Destination, color string) Row {
	return Row{
		Kind:        GranularityDestinations,
		ID:          d.PlaceID,
		Name:        d.Name,
		Country:     d.Country,
		CountryCode: d.CountryCode,
		Coordinates: d.Coordinates(),
		Color:       color,
	}
}

func PlaceRow(p Place, color string) Row {
	return Row{
		Kind:          GranularityPlaces,
		ID:            p.PlaceID,
		Name:          p.Name,
		Country:       p.Country,
		Address:       p.Address,
		City:          p.City,
		State:         p.State,
		ZipCode:       p.ZipCode,
		DestinationID: p.DestinationID,
		Coordinates:   p.Coordinates(),
		Color:         color,
	}
}

// ViewModel is one immutable snapshot of the synchronized view.
// The map layer and the list layer are always handed the same snapshot.
type ViewModel struct {
	Version     uint64
	Granularity Granularity
	Rows        []Row
	HoverID     string
	Center      *Coordinates
	Zoom        float64
	Loading     bool
	AllowEdits  bool
	Commands    []ViewportCommand

	colors map[string]string
}

// NewViewModel attaches a private copy of colors to vm.
func NewViewModel(vm ViewModel, colors map[string]string) ViewModel {
	cp := make(map[string]string, len(colors))
	for k, v := range colors {
		cp[k] = v
	}
	vm.colors = cp
	return vm
}

// ColorOf returns the display color assigned to id, or "" when none is assigned.
func (vm ViewModel) ColorOf(id string) string {
	return vm.colors[id]
}

// Hovered reports whether id is the currently emphasized row/marker.
func (vm ViewModel) Hovered(id string) bool {
	return vm.HoverID != "" && vm.HoverID == id
}
