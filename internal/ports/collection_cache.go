package ports

import (
	"context"
	"errors"
	"travel-map-service/internal/domain"
)

// ErrCacheMiss is returned by CollectionCache getters when nothing is cached for the user.
var ErrCacheMiss = errors.New("cache miss")

// Optional cache in front of a DataSource.
type CollectionCache interface {
	GetDestinations(ctx context.Context, user string) ([]domain.Destination, error)
	PutDestinations(ctx context.Context, user string, destinations []domain.Destination) error
	GetPlaces(ctx context.Context, user string) ([]domain.Place, error)
	PutPlaces(ctx context.Context, user string, places []domain.Place) error
	Invalidate(ctx context.Context, user string) error
}
