package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/obs"
	"travel-map-service/internal/ports"
)

// SQLCollectionCache is a SQL-backed cache for a user's fetched collections.
// It persists REST API answers across restarts when Redis is not deployed.
// Rows live in the collection_cache table created by repositories.InitSchema.
type SQLCollectionCache struct {
	DB  *sql.DB
	TTL time.Duration
	Now func() time.Time
}

var _ ports.CollectionCache = (*SQLCollectionCache)(nil)

func NewSQLCollectionCache(db *sql.DB, ttl time.Duration) *SQLCollectionCache {
	return &SQLCollectionCache{DB: db, TTL: ttl, Now: time.Now}
}

func (s *SQLCollectionCache) GetDestinations(ctx context.Context, user string) (_ []domain.Destination, err error) {
	defer obs.Time(ctx, "collection.sqlcache.GetDestinations")(&err)

	var out []domain.Destination
	if err := s.get(ctx, user, "destinations", &out); err != nil {
		return nil, fmt.Errorf("get cached destinations for %q: %w", user, err)
	}
	return out, nil
}

func (s *SQLCollectionCache) PutDestinations(ctx context.Context, user string, destinations []domain.Destination) error {
	if err := s.put(ctx, user, "destinations", destinations); err != nil {
		return fmt.Errorf("put cached destinations for %q: %w", user, err)
	}
	return nil
}

func (s *SQLCollectionCache) GetPlaces(ctx context.Context, user string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "collection.sqlcache.GetPlaces")(&err)

	var out []domain.Place
	if err := s.get(ctx, user, "places", &out); err != nil {
		return nil, fmt.Errorf("get cached places for %q: %w", user, err)
	}
	return out, nil
}

func (s *SQLCollectionCache) PutPlaces(ctx context.Context, user string, places []domain.Place) error {
	if err := s.put(ctx, user, "places", places); err != nil {
		return fmt.Errorf("put cached places for %q: %w", user, err)
	}
	return nil
}

func (s *SQLCollectionCache) Invalidate(ctx context.Context, user string) error {
	if s.DB == nil {
		return errors.New("collection cache: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM collection_cache WHERE owner = $1;`, user); err != nil {
		return fmt.Errorf("invalidate collection cache for %q: %w", user, err)
	}
	return nil
}

func (s *SQLCollectionCache) get(ctx context.Context, user, collection string, dst any) error {
	if s.DB == nil {
		return errors.New("collection cache: db is nil")
	}
	if strings.TrimSpace(user) == "" {
		return errors.New("user must not be empty")
	}

	q := `
	SELECT payload
	FROM collection_cache
	WHERE owner = $1
		AND collection = $2
		AND expires_at > $3;
	`

	var payload []byte
	err := s.DB.QueryRowContext(ctx, q, user, collection, s.Now()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("query collection_cache table: %w", err)
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decode cached %s: %w", collection, err)
	}
	return nil
}

func (s *SQLCollectionCache) put(ctx context.Context, user, collection string, v any) error {
	if s.DB == nil {
		return errors.New("collection cache: db is nil")
	}
	if strings.TrimSpace(user) == "" {
		return errors.New("user must not be empty")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	q := `
	INSERT INTO collection_cache (owner, collection, payload, expires_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (owner, collection) DO UPDATE
	SET payload = EXCLUDED.payload,
		expires_at = EXCLUDED.expires_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, user, collection, payload, s.Now().Add(s.TTL)); err != nil {
		return fmt.Errorf("upsert collection_cache row: %w", err)
	}
	return nil
}
