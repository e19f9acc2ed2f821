package artist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onnwee/artistrank/internal/tracing"
)

// PostgresRepository implements Repository using PostgreSQL.
// Rows come back in insertion order so tie-breaking in the ranking stays stable.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List retrieves every artist.
func (r *PostgresRepository) List(ctx context.Context) (artists []Artist, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "artists", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT uuid, gender, age, latitude, longitude, rate
		FROM artists
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	defer rows.Close()

	artists = []Artist{}
	for rows.Next() {
		var a Artist
		if err := rows.Scan(&a.UUID, &a.Gender, &a.Age, &a.Latitude, &a.Longitude, &a.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate artists: %w", err)
	}

	return artists, nil
}

// Insert stores a new artist. Used by seeding and integration tests.
func (r *PostgresRepository) Insert(ctx context.Context, a Artist) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "artists", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	query := `
		INSERT INTO artists (uuid, gender, age, latitude, longitude, rate)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err = r.db.ExecContext(ctx, query, a.UUID, a.Gender, a.Age, a.Latitude, a.Longitude, a.Rate); err != nil {
		return fmt.Errorf("failed to insert artist %s: %w", a.UUID, err)
	}
	return nil
}

// Upsert inserts a or overwrites the stored artist with the same UUID.
// inserted reports whether a new row was created.
func (r *PostgresRepository) Upsert(ctx context.Context, a Artist) (inserted bool, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "artists", tracing.DBOperationUpsert)
	defer func() { endSpan(err) }()

	// xmax is 0 only for freshly inserted row versions.
	query := `
		INSERT INTO artists (uuid, gender, age, latitude, longitude, rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uuid) DO UPDATE SET
			gender = EXCLUDED.gender,
			age = EXCLUDED.age,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			rate = EXCLUDED.rate
		RETURNING (xmax = 0)
	`

	err = r.db.QueryRowContext(ctx, query, a.UUID, a.Gender, a.Age, a.Latitude, a.Longitude, a.Rate).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert artist %s: %w", a.UUID, err)
	}
	return inserted, nil
}
