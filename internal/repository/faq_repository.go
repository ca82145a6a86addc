package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FAQ repository errors
var (
	ErrFAQNotFound = errors.New("faq not found")
)

// FAQRepository defines the interface for FAQ data access
type FAQRepository interface {
	Create(ctx context.Context, faq *FAQ) error
	GetByID(ctx context.Context, id uuid.UUID) (*FAQ, error)
	ListActive(ctx context.Context) ([]FAQ, error)
	ListActiveByCategory(ctx context.Context, category string) ([]FAQ, error)
	Update(ctx context.Context, faq *FAQ) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// faqRepository implements FAQRepository using PostgreSQL
type faqRepository struct {
	pool *pgxpool.Pool
}

// NewFAQRepository creates a new FAQRepository instance
func NewFAQRepository(pool *pgxpool.Pool) FAQRepository {
	return &faqRepository{pool: pool}
}

const faqColumns = `id, question, answer, category, display_order, is_active, created_at, updated_at`

func scanFAQ(row pgx.Row) (*FAQ, error) {
	faq := &FAQ{}
	err := row.Scan(
		&faq.ID,
		&faq.Question,
		&faq.Answer,
		&faq.Category,
		&faq.DisplayOrder,
		&faq.IsActive,
		&faq.CreatedAt,
		&faq.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFAQNotFound
		}
		return nil, err
	}
	return faq, nil
}

func (r *faqRepository) queryFAQs(ctx context.Context, query string, args ...interface{}) ([]FAQ, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	faqs := []FAQ{}
	for rows.Next() {
		faq, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		faqs = append(faqs, *faq)
	}
	return faqs, rows.Err()
}

// Create inserts a new FAQ entry
func (r *faqRepository) Create(ctx context.Context, faq *FAQ) error {
	query := `
		INSERT INTO faqs (question, answer, category, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	return r.pool.QueryRow(ctx, query,
		faq.Question,
		faq.Answer,
		faq.Category,
		faq.DisplayOrder,
		faq.IsActive,
	).Scan(&faq.ID, &faq.CreatedAt, &faq.UpdatedAt)
}

// GetByID retrieves an FAQ by its ID, including inactive entries
func (r *faqRepository) GetByID(ctx context.Context, id uuid.UUID) (*FAQ, error) {
	query := `SELECT ` + faqColumns + ` FROM faqs WHERE id = $1`
	return scanFAQ(r.pool.QueryRow(ctx, query, id))
}

// ListActive retrieves all active FAQs ordered for display
func (r *faqRepository) ListActive(ctx context.Context) ([]FAQ, error) {
	query := `SELECT ` + faqColumns + ` FROM faqs WHERE is_active = TRUE ORDER BY display_order, category`
	return r.queryFAQs(ctx, query)
}

// ListActiveByCategory retrieves active FAQs in a category (case-insensitive)
func (r *faqRepository) ListActiveByCategory(ctx context.Context, category string) ([]FAQ, error) {
	query := `
		SELECT ` + faqColumns + ` FROM faqs
		WHERE is_active = TRUE AND LOWER(category) = LOWER($1)
		ORDER BY display_order
	`
	return r.queryFAQs(ctx, query, category)
}

// Update replaces all mutable fields of an FAQ
func (r *faqRepository) Update(ctx context.Context, faq *FAQ) error {
	query := `
		UPDATE faqs
		SET question = $1, answer = $2, category = $3, display_order = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		faq.Question,
		faq.Answer,
		faq.Category,
		faq.DisplayOrder,
		faq.IsActive,
		faq.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrFAQNotFound
	}
	return nil
}

// SoftDelete marks an FAQ inactive so it no longer appears in listings
func (r *faqRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE faqs SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrFAQNotFound
	}
	return nil
}
