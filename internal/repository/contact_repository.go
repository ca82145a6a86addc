package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Contact repository errors
var (
	ErrMessageNotFound      = errors.New("contact message not found")
	ErrSubscriptionNotFound = errors.New("newsletter subscription not found")
	ErrAlreadySubscribed    = errors.New("email already subscribed")
)

// ContactRepository defines the interface for contact message and
// newsletter subscription data access
type ContactRepository interface {
	CreateMessage(ctx context.Context, msg *ContactMessage) error
	ListMessages(ctx context.Context) ([]ContactMessage, error)
	MarkMessageRead(ctx context.Context, id uuid.UUID) error

	GetSubscriptionByEmail(ctx context.Context, email string) (*NewsletterSubscription, error)
	CreateSubscription(ctx context.Context, sub *NewsletterSubscription) error
	ReactivateSubscription(ctx context.Context, id uuid.UUID) error
}

// contactRepository implements ContactRepository using PostgreSQL
type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository creates a new ContactRepository instance
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

// CreateMessage inserts a new contact message
func (r *contactRepository) CreateMessage(ctx context.Context, msg *ContactMessage) error {
	query := `
		INSERT INTO contact_messages (name, email, subject, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`

	return r.pool.QueryRow(ctx, query,
		msg.Name,
		msg.Email,
		msg.Subject,
		msg.Message,
	).Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
}

// ListMessages retrieves all contact messages, newest first
func (r *contactRepository) ListMessages(ctx context.Context) ([]ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, message, is_read, created_at
		FROM contact_messages
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []ContactMessage{}
	for rows.Next() {
		var msg ContactMessage
		err := rows.Scan(
			&msg.ID,
			&msg.Name,
			&msg.Email,
			&msg.Subject,
			&msg.Message,
			&msg.IsRead,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkMessageRead flags a contact message as read
func (r *contactRepository) MarkMessageRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `UPDATE contact_messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// GetSubscriptionByEmail retrieves a subscription by email (case-insensitive)
func (r *contactRepository) GetSubscriptionByEmail(ctx context.Context, email string) (*NewsletterSubscription, error) {
	query := `
		SELECT id, email, is_active, subscribed_at
		FROM newsletter_subscriptions
		WHERE LOWER(email) = LOWER($1)
	`

	sub := &NewsletterSubscription{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&sub.ID,
		&sub.Email,
		&sub.IsActive,
		&sub.SubscribedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// CreateSubscription inserts a new newsletter subscription
func (r *contactRepository) CreateSubscription(ctx context.Context, sub *NewsletterSubscription) error {
	query := `
		INSERT INTO newsletter_subscriptions (email, is_active)
		VALUES (LOWER($1), TRUE)
		RETURNING id, email, is_active, subscribed_at
	`

	err := r.pool.QueryRow(ctx, query, sub.Email).Scan(
		&sub.ID,
		&sub.Email,
		&sub.IsActive,
		&sub.SubscribedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "idx_newsletter_email") {
			return ErrAlreadySubscribed
		}
		return err
	}
	return nil
}

// ReactivateSubscription turns a previously unsubscribed email back on
func (r *contactRepository) ReactivateSubscription(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE newsletter_subscriptions SET is_active = TRUE, subscribed_at = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
