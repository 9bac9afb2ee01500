package api

import (
	"net/http"
	"time"
	"travel-map-service/internal/api/handlers"
	"travel-map-service/internal/platform/metrics"
	"travel-map-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Deps struct {
	Sessions *services.SessionManager
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	// StreamKeepalive overrides the idle comment interval on event streams.
	StreamKeepalive time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(d.Logger, d.Metrics))

	sessions := &handlers.SessionHandler{Sessions: d.Sessions, Keepalive: d.StreamKeepalive}

	r.Get("/health", handlers.Health)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/sessions", func(r chi.Router) {
		// Streams are long-lived and stay outside the request timeout.
		r.Get("/{id}/stream", sessions.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))

			r.Post("/", sessions.Create)
			r.Get("/{id}", sessions.Get)
			r.Delete("/{id}", sessions.Delete)
			r.Post("/{id}/refresh", sessions.Refresh)
			r.Post("/{id}/viewport/zoom", sessions.Zoom)
			r.Post("/{id}/viewport/move", sessions.Move)
			r.Post("/{id}/hover", sessions.Hover)
			r.Post("/{id}/activate", sessions.Activate)
		})
	})

	return r
}
