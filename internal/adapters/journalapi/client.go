package journalapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/obs"
	"travel-map-service/internal/ports"
)

// Client reads a user's journal from the travel journal REST backend.
//
// The backend answers `GET /destinations?user=` and `GET /places?user=` with a
// list of `{"Entity": {...}}` envelopes whose fields are snake_case.
// The client is safe for concurrent use.
type Client struct {
	session     *http.Client
	baseURL     string
	token       string
	maxAttempts int
	backoff     time.Duration
}

var _ ports.DataSource = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.session = hc }
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetry sets the attempt limit and the first backoff delay.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("journal api base url is empty")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("journal api base url %q: %w", baseURL, err)
	}

	c := &Client{
		session:     &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type envelope[T any] struct {
	Entity T `json:"Entity"`
}

func (c *Client) FetchDestinations(ctx context.Context, user string) (_ []domain.Destination, err error) {
	defer obs.Time(ctx, "journalapi.FetchDestinations")(&err)

	items, err := fetchEntities[domain.Destination](ctx, c, "destinations", user)
	if err != nil {
		return nil, fmt.Errorf("fetch destinations for %q: %w", user, err)
	}
	return items, nil
}

func (c *Client) FetchPlaces(ctx context.Context, user string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "journalapi.FetchPlaces")(&err)

	items, err := fetchEntities[domain.Place](ctx, c, "places", user)
	if err != nil {
		return nil, fmt.Errorf("fetch places for %q: %w", user, err)
	}
	return items, nil
}

func fetchEntities[T any](ctx context.Context, c *Client, collection string, user string) ([]T, error) {
	if user == "" {
		return nil, errors.New("user must be non-empty")
	}

	u := c.baseURL + "/" + collection + "?" + url.Values{"user": {user}}.Encode()

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, u)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw []envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	out := make([]T, 0, len(raw))
	for _, e := range raw {
		out = append(out, e.Entity)
	}
	return out, nil
}
