package ports

import "travel-map-service/internal/domain"

// Receives the events a map widget emits once an interaction settles.
type ViewportListener interface {
	OnZoomEnd(zoom float64)
	OnMoveEnd()
}

// Capability handle over a map widget.
// Center reports false while the map is not initialized.
type Viewport interface {
	Center() (domain.Coordinates, bool)
	SetCenter(c domain.Coordinates)
	ZoomTo(level float64)
	FlyTo(c domain.Coordinates)
	// Subscribe registers l for zoom/move events and returns a function that removes it.
	Subscribe(l ViewportListener) (unsubscribe func())
}

// Optional extension of Viewport for handles that queue instructions for a remote widget.
type ViewportCommandSource interface {
	Viewport
	// Return the instructions issued after seq, oldest first.
	CommandsSince(seq uint64) []domain.ViewportCommand
}

// Viewport mirrored from a widget running elsewhere (a browser).
// The widget's settled events are fed in through the Report methods.
type RemoteViewport interface {
	ViewportCommandSource
	ReportZoomEnd(zoom float64)
	ReportMoveEnd(center domain.Coordinates)
}
