package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"travel-map-service/internal/domain"
)

// Initialize the Postgres schema for journal entries and the collection cache.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDestinationsQuery := `
	CREATE TABLE IF NOT EXISTS destinations (
		owner TEXT NOT NULL,
		place_id TEXT NOT NULL,
		name TEXT NOT NULL,
		country TEXT NOT NULL DEFAULT '',
		country_code TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (owner, place_id)
	);
	`

	createPlacesQuery := `
	CREATE TABLE IF NOT EXISTS places (
		owner TEXT NOT NULL,
		place_id TEXT NOT NULL,
		destination_id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		zip_code TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (owner, place_id)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_places_owner_destination
	ON places(owner, destination_id);
	`

	createCollectionCacheQuery := `
	CREATE TABLE IF NOT EXISTS collection_cache (
		owner TEXT NOT NULL,
		collection TEXT NOT NULL,
		payload JSONB NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (owner, collection)
	);
	`

	statements := []string{
		createDestinationsQuery,
		createPlacesQuery,
		createIndexQuery,
		createCollectionCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Seed maps a user name to that user's journal.
type Seed map[string]domain.Journal

// Read and validate a seed file.
func LoadSeed(jsonPath string) (Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", jsonPath, err)
	}

	var seed Seed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return nil, fmt.Errorf("load seed: parse json: %w", err)
	}

	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("load seed %q: %w", jsonPath, err)
	}

	return seed, nil
}

// Validate checks ids, names and coordinates, and that every place belongs
// to a destination of the same user.
func (s Seed) Validate() error {
	for _, user := range s.Users() {
		if strings.TrimSpace(user) == "" {
			return errors.New("user name cannot be empty")
		}
		j := s[user]

		destIDs := make(map[string]struct{}, len(j.Destinations))
		for i, d := range j.Destinations {
			if err := validateEntry(d.PlaceID, d.Name, d.Latitude, d.Longitude); err != nil {
				return fmt.Errorf("user %q destination at index %d: %w", user, i+1, err)
			}
			if _, dup := destIDs[d.PlaceID]; dup {
				return fmt.Errorf("user %q destination at index %d: duplicate place_id %q", user, i+1, d.PlaceID)
			}
			destIDs[d.PlaceID] = struct{}{}
		}

		placeIDs := make(map[string]struct{}, len(j.Places))
		for i, p := range j.Places {
			if err := validateEntry(p.PlaceID, p.Name, p.Latitude, p.Longitude); err != nil {
				return fmt.Errorf("user %q place at index %d: %w", user, i+1, err)
			}
			if _, dup := placeIDs[p.PlaceID]; dup {
				return fmt.Errorf("user %q place at index %d: duplicate place_id %q", user, i+1, p.PlaceID)
			}
			placeIDs[p.PlaceID] = struct{}{}

			if _, ok := destIDs[p.DestinationID]; !ok {
				return fmt.Errorf("user %q place %q: unknown destination_id %q", user, p.PlaceID, p.DestinationID)
			}
		}
	}
	return nil
}

// Users returns the seeded user names in sorted order.
func (s Seed) Users() []string {
	users := make([]string, 0, len(s))
	for u := range s {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

func validateEntry(id, name string, lat, lon float64) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("place_id cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%q: name cannot be empty", id)
	}
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%q: latitude out of range: %v", id, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("%q: longitude out of range: %v", id, lon)
	}
	return nil
}

// Populate the database with journal data from a JSON file.
// Existing rows with the same (owner, place_id) are replaced.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed journal: DB is nil")
	}

	seed, err := LoadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed journal: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed journal: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	destStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO destinations (owner, place_id, name, country, country_code, latitude, longitude, position)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (owner, place_id) DO UPDATE
	SET name = EXCLUDED.name,
		country = EXCLUDED.country,
		country_code = EXCLUDED.country_code,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		position = EXCLUDED.position;
	`)
	if err != nil {
		return fmt.Errorf("seed journal: prepare destination insert: %w", err)
	}
	defer destStmt.Close()

	placeStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO places (owner, place_id, destination_id, name, address, city, state, country, zip_code, latitude, longitude, position)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (owner, place_id) DO UPDATE
	SET destination_id = EXCLUDED.destination_id,
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		city = EXCLUDED.city,
		state = EXCLUDED.state,
		country = EXCLUDED.country,
		zip_code = EXCLUDED.zip_code,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		position = EXCLUDED.position;
	`)
	if err != nil {
		return fmt.Errorf("seed journal: prepare place insert: %w", err)
	}
	defer placeStmt.Close()

	for _, user := range seed.Users() {
		j := seed[user]
		for i, d := range j.Destinations {
			if _, err := destStmt.ExecContext(ctx, user, d.PlaceID, d.Name, d.Country, d.CountryCode, d.Latitude, d.Longitude, i); err != nil {
				return fmt.Errorf("seed journal: insert destination %q for %q: %w", d.PlaceID, user, err)
			}
		}
		for i, p := range j.Places {
			if _, err := placeStmt.ExecContext(ctx, user, p.PlaceID, p.DestinationID, p.Name, p.Address, p.City, p.State, p.Country, p.ZipCode, p.Latitude, p.Longitude, i); err != nil {
				return fmt.Errorf("seed journal: insert place %q for %q: %w", p.PlaceID, user, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed journal: commit tx: %w", err)
	}

	return nil
}
