package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Place repository errors
var (
	ErrPlaceNotFound = errors.New("place not found")
)

// PlaceRepository defines the interface for place data access
type PlaceRepository interface {
	Create(ctx context.Context, place *Place) error
	GetByID(ctx context.Context, id uuid.UUID) (*Place, error)
	List(ctx context.Context) ([]Place, error)
	Update(ctx context.Context, place *Place) error
	Delete(ctx context.Context, id uuid.UUID) (*Place, error)
}

// placeRepository implements PlaceRepository using PostgreSQL
type placeRepository struct {
	pool *pgxpool.Pool
}

// NewPlaceRepository creates a new PlaceRepository instance
func NewPlaceRepository(pool *pgxpool.Pool) PlaceRepository {
	return &placeRepository{pool: pool}
}

func scanPlace(row pgx.Row) (*Place, error) {
	place := &Place{}
	err := row.Scan(
		&place.ID,
		&place.Name,
		&place.Description,
		&place.ImageURL,
		&place.ImageKey,
		&place.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}
	return place, nil
}

// Create inserts a new place
func (r *placeRepository) Create(ctx context.Context, place *Place) error {
	query := `
		INSERT INTO places (name, description, image_url, image_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		place.Name,
		place.Description,
		place.ImageURL,
		place.ImageKey,
	).Scan(&place.ID, &place.CreatedAt)
}

// GetByID retrieves a place by its ID
func (r *placeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Place, error) {
	query := `SELECT id, name, description, image_url, image_key, created_at FROM places WHERE id = $1`
	return scanPlace(r.pool.QueryRow(ctx, query, id))
}

// List retrieves all places ordered by name
func (r *placeRepository) List(ctx context.Context) ([]Place, error) {
	query := `SELECT id, name, description, image_url, image_key, created_at FROM places ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := []Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, *place)
	}
	return places, rows.Err()
}

// Update replaces all mutable fields of a place
func (r *placeRepository) Update(ctx context.Context, place *Place) error {
	query := `
		UPDATE places
		SET name = $1, description = $2, image_url = $3, image_key = $4
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		place.Name,
		place.Description,
		place.ImageURL,
		place.ImageKey,
		place.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPlaceNotFound
	}
	return nil
}

// Delete removes a place and returns the deleted record
func (r *placeRepository) Delete(ctx context.Context, id uuid.UUID) (*Place, error) {
	place, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM places WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return place, nil
}
