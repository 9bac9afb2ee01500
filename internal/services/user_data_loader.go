package services

import (
	"context"
	"fmt"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/obs"
	"travel-map-service/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// UserDataLoader pulls a user's journal from a DataSource and hands it to a controller.
type UserDataLoader struct {
	source ports.DataSource
}

func NewUserDataLoader(source ports.DataSource) *UserDataLoader {
	return &UserDataLoader{source: source}
}

// Refresh fetches destinations and places concurrently and applies both under one
// generation. A failed fetch is logged and treated as an empty collection, so the
// view falls back to an empty render instead of an error.
//
// With force set, cached copies are invalidated first when the source keeps any.
// Refresh only returns an error when ctx ends before the fetches complete; the
// controller is then left untouched apart from its loading flag.
func (l *UserDataLoader) Refresh(ctx context.Context, c *ViewSyncController, user string, force bool) (err error) {
	defer obs.Time(ctx, "loader.Refresh")(&err)

	logger := zerolog.Ctx(ctx)
	gen := c.BeginRefresh()

	if inv, ok := l.source.(ports.Invalidator); ok && force {
		if err := inv.Invalidate(ctx, user); err != nil {
			logger.Warn().Err(err).Str("user", user).Msg("cache_invalidate_failed")
		}
	}

	var (
		destinations []domain.Destination
		places       []domain.Place
	)

	var g errgroup.Group
	g.Go(func() error {
		d, err := l.source.FetchDestinations(ctx, user)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Str("user", user).Msg("fetch_destinations_failed")
			d = []domain.Destination{}
		}
		destinations = d
		return nil
	})
	g.Go(func() error {
		p, err := l.source.FetchPlaces(ctx, user)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Str("user", user).Msg("fetch_places_failed")
			p = []domain.Place{}
		}
		places = p
		return nil
	})

	if err := g.Wait(); err != nil {
		c.AbortRefresh(gen)
		return fmt.Errorf("refresh %q: %w", user, err)
	}

	if !c.ApplyData(gen, destinations, places) {
		logger.Debug().Uint64("gen", gen).Str("user", user).Msg("refresh_superseded")
	}
	return nil
}
