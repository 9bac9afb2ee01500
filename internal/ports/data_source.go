package ports

import (
	"context"
	"travel-map-service/internal/domain"
)

// Port: a boundary for retrieving a user's journal entries.
// Implementations own transport and persistence; the view core never calls them directly.
type DataSource interface {
	// Retrieve all destinations owned by user.
	FetchDestinations(ctx context.Context, user string) ([]domain.Destination, error)
	// Retrieve all places owned by user. Each place carries its DestinationID.
	FetchPlaces(ctx context.Context, user string) ([]domain.Place, error)
}

// Optionally implemented by a DataSource that keeps copies of a user's entries,
// so a forced refresh can bypass them.
type Invalidator interface {
	Invalidate(ctx context.Context, user string) error
}
