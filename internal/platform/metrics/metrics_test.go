package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_nilMetrics(t *testing.T) {
	var m *Metrics
	m.IncViewEvent("zoom")
	m.ObserveCacheLookup("places", true)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "metrics unavailable")
}

func TestHandler_exposesRegisteredMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, 12*time.Millisecond)
	m.IncViewEvent("zoom")
	m.IncViewEvent("zoom")
	m.IncViewPublished()
	m.IncStaleBatch()
	m.ObserveCacheLookup("destinations", false)
	m.SetActiveSessions(3)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `travelmap_http_requests_total{method="GET",path="/health",status="200"} 1`)
	assert.Contains(t, body, `travelmap_view_events_total{kind="zoom"} 2`)
	assert.Contains(t, body, "travelmap_views_published_total 1")
	assert.Contains(t, body, "travelmap_stale_batches_discarded_total 1")
	assert.Contains(t, body, `travelmap_collection_cache_lookups_total{collection="destinations",result="miss"} 1`)
	assert.Contains(t, body, "travelmap_active_sessions 3")
}
