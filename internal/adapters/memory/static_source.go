package memory

import (
	"context"
	"fmt"
	"sync"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/ports"
)

// StaticSource serves journals from memory. It backs local runs without a
// database and the tests, and can be told to fail per user.
type StaticSource struct {
	mu       sync.Mutex
	journals map[string]domain.Journal
	failures map[string]error
	fetches  map[string]int
}

var _ ports.DataSource = (*StaticSource)(nil)

func NewStaticSource(journals map[string]domain.Journal) *StaticSource {
	s := &StaticSource{
		journals: make(map[string]domain.Journal, len(journals)),
		failures: make(map[string]error),
		fetches:  make(map[string]int),
	}
	for user, j := range journals {
		s.journals[user] = j
	}
	return s
}

// Set replaces the journal for user.
func (s *StaticSource) Set(user string, j domain.Journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journals[user] = j
}

// Fail makes every fetch for user return err. A nil err clears it.
func (s *StaticSource) Fail(user string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, user)
		return
	}
	s.failures[user] = err
}

// Fetches returns how many collection fetches were made for user.
func (s *StaticSource) Fetches(user string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[user]
}

func (s *StaticSource) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.journals))
	for u := range s.journals {
		out = append(out, u)
	}
	return out
}

func (s *StaticSource) FetchDestinations(ctx context.Context, user string) ([]domain.Destination, error) {
	j, err := s.lookup(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("fetch destinations for %q: %w", user, err)
	}
	return append([]domain.Destination{}, j.Destinations...), nil
}

func (s *StaticSource) FetchPlaces(ctx context.Context, user string) ([]domain.Place, error) {
	j, err := s.lookup(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("fetch places for %q: %w", user, err)
	}
	return append([]domain.Place{}, j.Places...), nil
}

func (s *StaticSource) lookup(ctx context.Context, user string) (domain.Journal, error) {
	if err := ctx.Err(); err != nil {
		return domain.Journal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches[user]++
	if err := s.failures[user]; err != nil {
		return domain.Journal{}, err
	}
	// Unknown users simply have an empty journal.
	return s.journals[user], nil
}
