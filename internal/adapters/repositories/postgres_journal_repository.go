package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/obs"
	"travel-map-service/internal/ports"
)

// Postgres-backed implementation of the DataSource port.
type PostgresJournalRepository struct{ DB *sql.DB }

var _ ports.DataSource = (*PostgresJournalRepository)(nil)

func NewPostgresJournalRepository(db *sql.DB) *PostgresJournalRepository {
	return &PostgresJournalRepository{DB: db}
}

// Return the user's destinations in the order they were logged.
func (r *PostgresJournalRepository) FetchDestinations(ctx context.Context, user string) (_ []domain.Destination, err error) {
	defer obs.Time(ctx, "postgres.FetchDestinations")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres journal repository: DB is nil")
	}

	query := `
	SELECT
		place_id,
		name,
		country,
		country_code,
		latitude,
		longitude
	FROM destinations
	WHERE owner = $1
	ORDER BY position, place_id;
	`
	rows, err := r.DB.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("list destinations: query destinations table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Destination, 0, 16)
	for rows.Next() {
		var d domain.Destination
		if err := rows.Scan(&d.PlaceID, &d.Name, &d.Country, &d.CountryCode, &d.Latitude, &d.Longitude); err != nil {
			return nil, fmt.Errorf("list destinations: scan row: %w", err)
		}
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list destinations: row iteration: %w", err)
	}

	return out, nil
}

// Return the user's places in the order they were logged.
func (r *PostgresJournalRepository) FetchPlaces(ctx context.Context, user string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "postgres.FetchPlaces")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres journal repository: DB is nil")
	}

	query := `
	SELECT
		place_id,
		destination_id,
		name,
		address,
		city,
		state,
		country,
		zip_code,
		latitude,
		longitude
	FROM places
	WHERE owner = $1
	ORDER BY position, place_id;
	`
	rows, err := r.DB.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("list places: query places table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Place, 0, 64)
	for rows.Next() {
		var p domain.Place
		err := rows.Scan(
			&p.PlaceID, &p.DestinationID, &p.Name, &p.Address, &p.City,
			&p.State, &p.Country, &p.ZipCode, &p.Latitude, &p.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("list places: scan row: %w", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list places: row iteration: %w", err)
	}

	return out, nil
}
