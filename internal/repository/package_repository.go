package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tour package repository errors
var (
	ErrPackageNotFound = errors.New("tour package not found")
)

// TourPackageRepository defines the interface for tour package data access
type TourPackageRepository interface {
	Create(ctx context.Context, pkg *TourPackage) error
	GetByID(ctx context.Context, id uuid.UUID) (*TourPackage, error)
	ListActive(ctx context.Context) ([]TourPackage, error)
	Update(ctx context.Context, pkg *TourPackage) error
	SoftDelete(ctx context.Context, id uuid.UUID) (*TourPackage, error)
}

// tourPackageRepository implements TourPackageRepository using PostgreSQL.
// Highlights are stored as a jsonb array.
type tourPackageRepository struct {
	pool *pgxpool.Pool
}

// NewTourPackageRepository creates a new TourPackageRepository instance
func NewTourPackageRepository(pool *pgxpool.Pool) TourPackageRepository {
	return &tourPackageRepository{pool: pool}
}

func marshalHighlights(highlights []string) ([]byte, error) {
	if highlights == nil {
		highlights = []string{}
	}
	return json.Marshal(highlights)
}

func scanTourPackage(row pgx.Row) (*TourPackage, error) {
	pkg := &TourPackage{}
	var highlights []byte
	err := row.Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.Description,
		&pkg.Duration,
		&pkg.Price,
		&pkg.MaxGuests,
		&pkg.Difficulty,
		&pkg.ImageURL,
		&pkg.ImageKey,
		&highlights,
		&pkg.IncludedServices,
		&pkg.IsActive,
		&pkg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if len(highlights) > 0 {
		if err := json.Unmarshal(highlights, &pkg.Highlights); err != nil {
			return nil, fmt.Errorf("failed to decode highlights: %w", err)
		}
	}
	return pkg, nil
}

const tourPackageColumns = `
	id, name, description, duration, price, max_guests, difficulty,
	image_url, image_key, highlights, included_services, is_active, created_at
`

// Create inserts a new tour package
func (r *tourPackageRepository) Create(ctx context.Context, pkg *TourPackage) error {
	query := `
		INSERT INTO tour_packages (name, description, duration, price, max_guests, difficulty,
			image_url, image_key, highlights, included_services, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		RETURNING id, created_at
	`

	highlights, err := marshalHighlights(pkg.Highlights)
	if err != nil {
		return fmt.Errorf("failed to encode highlights: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		pkg.Name,
		pkg.Description,
		pkg.Duration,
		pkg.Price,
		pkg.MaxGuests,
		pkg.Difficulty,
		pkg.ImageURL,
		pkg.ImageKey,
		highlights,
		pkg.IncludedServices,
	).Scan(&pkg.ID, &pkg.CreatedAt)
	if err != nil {
		return err
	}

	pkg.IsActive = true
	return nil
}

// GetByID retrieves a tour package by its ID, active or not
func (r *tourPackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*TourPackage, error) {
	query := `SELECT ` + tourPackageColumns + ` FROM tour_packages WHERE id = $1`
	return scanTourPackage(r.pool.QueryRow(ctx, query, id))
}

// ListActive retrieves active tour packages ordered by name
func (r *tourPackageRepository) ListActive(ctx context.Context) ([]TourPackage, error) {
	query := `SELECT ` + tourPackageColumns + ` FROM tour_packages WHERE is_active ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := []TourPackage{}
	for rows.Next() {
		pkg, err := scanTourPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *pkg)
	}
	return packages, rows.Err()
}

// Update replaces all mutable fields of a tour package
func (r *tourPackageRepository) Update(ctx context.Context, pkg *TourPackage) error {
	query := `
		UPDATE tour_packages
		SET name = $1, description = $2, duration = $3, price = $4, max_guests = $5,
			difficulty = $6, image_url = $7, image_key = $8, highlights = $9,
			included_services = $10, is_active = $11
		WHERE id = $12
	`

	highlights, err := marshalHighlights(pkg.Highlights)
	if err != nil {
		return fmt.Errorf("failed to encode highlights: %w", err)
	}

	result, err := r.pool.Exec(ctx, query,
		pkg.Name,
		pkg.Description,
		pkg.Duration,
		pkg.Price,
		pkg.MaxGuests,
		pkg.Difficulty,
		pkg.ImageURL,
		pkg.ImageKey,
		highlights,
		pkg.IncludedServices,
		pkg.IsActive,
		pkg.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPackageNotFound
	}
	return nil
}

// SoftDelete marks a tour package inactive and returns the prior record
func (r *tourPackageRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*TourPackage, error) {
	pkg, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `UPDATE tour_packages SET is_active = FALSE WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return nil, err
	}

	pkg.IsActive = false
	return pkg, nil
}
