package dto

import "travel-map-service/internal/domain"

// View is the wire form of one view model snapshot.
// The map layer and the list layer render from the same View.
type View struct {
	Version     uint64                   `json:"version"`
	Granularity domain.Granularity       `json:"granularity"`
	Rows        []domain.Row             `json:"rows"`
	HoverID     *string                  `json:"hover_id"`
	Center      *domain.Coordinates      `json:"center"`
	Zoom        float64                  `json:"zoom"`
	Loading     bool                     `json:"loading"`
	Empty       bool                     `json:"empty"`
	AllowEdits  bool                     `json:"allow_edits"`
	Commands    []domain.ViewportCommand `json:"commands"`
}

func FromViewModel(vm domain.ViewModel) View {
	v := View{
		Version:     vm.Version,
		Granularity: vm.Granularity,
		Rows:        vm.Rows,
		Center:      vm.Center,
		Zoom:        vm.Zoom,
		Loading:     vm.Loading,
		Empty:       !vm.Loading && len(vm.Rows) == 0,
		AllowEdits:  vm.AllowEdits,
		Commands:    vm.Commands,
	}
	if vm.HoverID != "" {
		id := vm.HoverID
		v.HoverID = &id
	}
	if v.Rows == nil {
		v.Rows = []domain.Row{}
	}
	if v.Commands == nil {
		v.Commands = []domain.ViewportCommand{}
	}
	return v
}
