package journalapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const destinationsBody = `[
  {"Entity": {"place_id": "d1", "name": "Lisbon", "country": "Portugal", "country_code": "PT", "latitude": 38.7223, "longitude": -9.1393}},
  {"Entity": {"place_id": "d2", "name": "Porto", "country": "Portugal", "country_code": "PT", "latitude": 41.1579, "longitude": -8.6291}}
]`

const placesBody = `[
  {"Entity": {"place_id": "p1", "name": "Belem Tower", "address": "Av. Brasilia", "city": "Lisbon", "state": "", "country": "Portugal", "zip_code": "1400-038", "latitude": 38.6916, "longitude": -9.2160, "destination_id": "d1"}}
]`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", WithRetry(3, time.Millisecond), WithToken("secret"))
	require.NoError(t, err)
	return c
}

func TestFetchDestinationsDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/destinations", r.URL.Path)
		assert.Equal(t, "ana maria", r.URL.Query().Get("user"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(destinationsBody))
	})

	got, err := c.FetchDestinations(context.Background(), "ana maria")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d1", got[0].PlaceID)
	assert.Equal(t, "PT", got[0].CountryCode)
	assert.InDelta(t, 41.1579, got[1].Latitude, 1e-9)
}

func TestFetchPlacesDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places", r.URL.Path)
		_, _ = w.Write([]byte(placesBody))
	})

	got, err := c.FetchPlaces(context.Background(), "ana")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].DestinationID)
	assert.Equal(t, "1400-038", got[0].ZipCode)
}

func TestFetchEmptyList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	got, err := c.FetchPlaces(context.Background(), "ana")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(destinationsBody))
	})

	got, err := c.FetchDestinations(context.Background(), "ana")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	})

	_, err := c.FetchDestinations(context.Background(), "ana")
	var he *httpStatusError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
	assert.Equal(t, "overloaded", he.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such user", http.StatusNotFound)
	})

	_, err := c.FetchPlaces(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchRejectsMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	})

	_, err := c.FetchPlaces(context.Background(), "ana")
	assert.ErrorContains(t, err, "decode places")
}

func TestFetchRequiresUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.FetchDestinations(context.Background(), "")
	assert.Error(t, err)
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)

	_, err = NewClient("not a url")
	assert.Error(t, err)
}
