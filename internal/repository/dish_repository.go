package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dish repository errors
var (
	ErrDishNotFound = errors.New("dish not found")
)

// DishRepository defines the interface for dish data access
type DishRepository interface {
	Create(ctx context.Context, dish *Dish) error
	GetByID(ctx context.Context, id uuid.UUID) (*Dish, error)
	List(ctx context.Context) ([]Dish, error)
	ListByCategory(ctx context.Context, category string) ([]Dish, error)
	Update(ctx context.Context, dish *Dish) error
	Delete(ctx context.Context, id uuid.UUID) (*Dish, error)
}

// dishRepository implements DishRepository using PostgreSQL
type dishRepository struct {
	pool *pgxpool.Pool
}

// NewDishRepository creates a new DishRepository instance
func NewDishRepository(pool *pgxpool.Pool) DishRepository {
	return &dishRepository{pool: pool}
}

const dishColumns = `id, name, description, category, price, image_url, image_key, created_at`

func scanDish(row pgx.Row) (*Dish, error) {
	dish := &Dish{}
	err := row.Scan(
		&dish.ID,
		&dish.Name,
		&dish.Description,
		&dish.Category,
		&dish.Price,
		&dish.ImageURL,
		&dish.ImageKey,
		&dish.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}
	return dish, nil
}

func (r *dishRepository) queryDishes(ctx context.Context, query string, args ...interface{}) ([]Dish, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dishes := []Dish{}
	for rows.Next() {
		dish, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, *dish)
	}
	return dishes, rows.Err()
}

// Create inserts a new dish
func (r *dishRepository) Create(ctx context.Context, dish *Dish) error {
	query := `
		INSERT INTO dishes (name, description, category, price, image_url, image_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		dish.Name,
		dish.Description,
		dish.Category,
		dish.Price,
		dish.ImageURL,
		dish.ImageKey,
	).Scan(&dish.ID, &dish.CreatedAt)
}

// GetByID retrieves a dish by its ID
func (r *dishRepository) GetByID(ctx context.Context, id uuid.UUID) (*Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dishes WHERE id = $1`
	return scanDish(r.pool.QueryRow(ctx, query, id))
}

// List retrieves all dishes ordered by name
func (r *dishRepository) List(ctx context.Context) ([]Dish, error) {
	return r.queryDishes(ctx, `SELECT `+dishColumns+` FROM dishes ORDER BY name`)
}

// ListByCategory retrieves dishes in a category (case-insensitive)
func (r *dishRepository) ListByCategory(ctx context.Context, category string) ([]Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dishes WHERE LOWER(category) = LOWER($1) ORDER BY name`
	return r.queryDishes(ctx, query, category)
}

// Update replaces all mutable fields of a dish
func (r *dishRepository) Update(ctx context.Context, dish *Dish) error {
	query := `
		UPDATE dishes
		SET name = $1, description = $2, category = $3, price = $4, image_url = $5, image_key = $6
		WHERE id = $7
	`

	result, err := r.pool.Exec(ctx, query,
		dish.Name,
		dish.Description,
		dish.Category,
		dish.Price,
		dish.ImageURL,
		dish.ImageKey,
		dish.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrDishNotFound
	}
	return nil
}

// Delete removes a dish and returns the deleted record
func (r *dishRepository) Delete(ctx context.Context, id uuid.UUID) (*Dish, error) {
	dish, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM dishes WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return dish, nil
}
