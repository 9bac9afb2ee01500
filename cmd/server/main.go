package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"travel-map-service/internal/adapters/cache"
	"travel-map-service/internal/adapters/journalapi"
	"travel-map-service/internal/adapters/memory"
	"travel-map-service/internal/adapters/repositories"
	"travel-map-service/internal/adapters/viewport"
	"travel-map-service/internal/api"
	"travel-map-service/internal/config"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/db"
	"travel-map-service/internal/platform/metrics"
	"travel-map-service/internal/platform/obs"
	"travel-map-service/internal/ports"
	"travel-map-service/internal/services"

	"github.com/rs/zerolog"
)

// main is the application composition root.
// It picks a journal data source, optionally puts a cache in front of it, and serves view sessions over HTTP.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := obs.NewLogger("info")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := obs.NewLogger(cfg.LogLevel)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	source, cleanup, err := openSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open journal data source")
	}
	defer cleanup()

	source, closeCache, err := withCache(ctx, cfg, source, logger, m)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open collection cache")
	}
	defer closeCache()

	center := cfg.InitialCenter()
	sessions, err := services.NewSessionManager(
		services.NewUserDataLoader(source),
		func(c domain.Coordinates, zoom float64) ports.RemoteViewport { return viewport.NewRemote(&c, zoom) },
		services.SessionManagerOptions{
			Controller:    cfg.ControllerOptions(),
			InitialCenter: &center,
			IdleTimeout:   cfg.SessionIdleTimeout,
			Logger:        logger,
			Metrics:       m,
		},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session manager")
	}

	sessionsDone := make(chan struct{})
	go func() {
		defer close(sessionsDone)
		sessions.Run(ctx)
	}()

	router := api.NewRouter(api.Deps{Sessions: sessions, Logger: logger, Metrics: m})

	// No WriteTimeout: view streams stay open for the life of a session.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	// Closing sessions first ends their streams so Shutdown does not wait on them.
	<-sessionsDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("shutdown incomplete")
	}
	logger.Info().Msg("shutdown complete")
}

// openSource selects the journal backend: the REST API when configured, then
// Postgres, then an in-memory journal loaded from the seed file.
func openSource(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ports.DataSource, func(), error) {
	noop := func() {}

	switch {
	case cfg.JournalAPIURL != "":
		client, err := journalapi.NewClient(cfg.JournalAPIURL, journalapi.WithToken(cfg.JournalAPIToken))
		if err != nil {
			return nil, noop, err
		}
		logger.Info().Str("url", cfg.JournalAPIURL).Msg("using journal REST API")
		return client, noop, nil

	case cfg.DatabaseURL != "":
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		logger.Info().Msg("using postgres journal repository")
		return repositories.NewPostgresJournalRepository(conn), func() { _ = conn.Close() }, nil

	default:
		seed, err := repositories.LoadSeed(cfg.SeedPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn().Str("path", cfg.SeedPath).Msg("no seed file; serving empty journals")
				return memory.NewStaticSource(nil), noop, nil
			}
			return nil, noop, err
		}
		logger.Info().Str("path", cfg.SeedPath).Int("users", len(seed)).Msg("using in-memory journal")
		return memory.NewStaticSource(seed), noop, nil
	}
}

// withCache puts a collection cache in front of source: Redis when configured,
// otherwise Postgres when journals come from the REST API and a database is available.
func withCache(ctx context.Context, cfg config.Config, source ports.DataSource, logger zerolog.Logger, m *metrics.Metrics) (ports.DataSource, func(), error) {
	noop := func() {}

	switch {
	case cfg.RedisAddr != "":
		rdb := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		collections, err := cache.NewRedisCollectionCache(rdb, cfg.CacheTTL)
		if err != nil {
			_ = rdb.Close()
			return nil, noop, err
		}
		if err := collections.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, noop, err
		}
		logger.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("redis collection cache enabled")
		return cache.NewCachedSource(source, collections, m), func() { _ = rdb.Close() }, nil

	case cfg.JournalAPIURL != "" && cfg.DatabaseURL != "":
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("postgres collection cache enabled")
		return cache.NewCachedSource(source, cache.NewSQLCollectionCache(conn, cfg.CacheTTL), m), func() { _ = conn.Close() }, nil

	default:
		return source, noop, nil
	}
}
