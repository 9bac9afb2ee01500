package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes view-sync and HTTP metrics for Prometheus.
// All methods are safe on a nil receiver so callers never need to guard.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	viewEvents          *prometheus.CounterVec
	viewsPublished      prometheus.Counter
	staleBatches        prometheus.Counter
	relevanceRuns       prometheus.Counter
	cacheLookups        *prometheus.CounterVec
	activeSessions      prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelmap",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests served",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "travelmap",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	viewEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelmap",
		Name:      "view_events_total",
		Help:      "View events handled by session controllers",
	}, []string{"kind"})

	viewsPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "travelmap",
		Name:      "views_published_total",
		Help:      "View model snapshots published",
	})

	staleBatches := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "travelmap",
		Name:      "stale_batches_discarded_total",
		Help:      "Data batches dropped because a newer batch was already applied",
	})

	relevanceRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "travelmap",
		Name:      "relevance_recomputations_total",
		Help:      "Renderable place recomputations",
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelmap",
		Name:      "collection_cache_lookups_total",
		Help:      "Collection cache lookups by result",
	}, []string{"collection", "result"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "travelmap",
		Name:      "active_sessions",
		Help:      "Open view sessions",
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		viewEvents,
		viewsPublished,
		staleBatches,
		relevanceRuns,
		cacheLookups,
		activeSessions,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		viewEvents:          viewEvents,
		viewsPublished:      viewsPublished,
		staleBatches:        staleBatches,
		relevanceRuns:       relevanceRuns,
		cacheLookups:        cacheLookups,
		activeSessions:      activeSessions,
	}
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

func (m *Metrics) IncViewEvent(kind string) {
	if m == nil {
		return
	}
	m.viewEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncViewPublished() {
	if m == nil {
		return
	}
	m.viewsPublished.Inc()
}

func (m *Metrics) IncStaleBatch() {
	if m == nil {
		return
	}
	m.staleBatches.Inc()
}

func (m *Metrics) IncRelevanceRun() {
	if m == nil {
		return
	}
	m.relevanceRuns.Inc()
}

// ObserveCacheLookup records a hit or miss for collection ("destinations" or "places").
func (m *Metrics) ObserveCacheLookup(collection string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(collection, result).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Handler exposes the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
