package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Account token repository errors
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenUsed     = errors.New("token already used")
)

// AccountTokenRepository defines data access for single-use account tokens.
// Password reset and email verification tokens use separate tables with the
// same shape; the constructors below bind the table name.
type AccountTokenRepository interface {
	Create(ctx context.Context, token *AccountToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*AccountToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	InvalidateForAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// accountTokenRepository implements AccountTokenRepository using PostgreSQL.
// The table name is fixed at construction; it is never caller input.
type accountTokenRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewPasswordResetTokenRepository creates a repository over password_reset_tokens
func NewPasswordResetTokenRepository(pool *pgxpool.Pool) AccountTokenRepository {
	return &accountTokenRepository{pool: pool, table: "password_reset_tokens"}
}

// NewEmailVerificationTokenRepository creates a repository over email_verification_tokens
func NewEmailVerificationTokenRepository(pool *pgxpool.Pool) AccountTokenRepository {
	return &accountTokenRepository{pool: pool, table: "email_verification_tokens"}
}

// Create inserts a new token
func (r *accountTokenRepository) Create(ctx context.Context, token *AccountToken) error {
	query := `
		INSERT INTO ` + r.table + ` (account_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		token.AccountID,
		token.TokenHash,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

// GetByTokenHash retrieves a token by its hash
func (r *accountTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*AccountToken, error) {
	query := `
		SELECT id, account_id, token_hash, expires_at, used_at, created_at
		FROM ` + r.table + `
		WHERE token_hash = $1
	`

	token := &AccountToken{}
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.AccountID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return token, nil
}

// MarkUsed stamps the token as redeemed. The used_at guard makes redemption
// at-most-once even under concurrent requests.
func (r *accountTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE ` + r.table + ` SET used_at = $1 WHERE id = $2 AND used_at IS NULL`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTokenUsed
	}
	return nil
}

// InvalidateForAccount marks all outstanding tokens for an account as used
func (r *accountTokenRepository) InvalidateForAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `UPDATE ` + r.table + ` SET used_at = $1 WHERE account_id = $2 AND used_at IS NULL`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), accountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// DeleteExpired removes tokens whose expiry has passed
func (r *accountTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM ` + r.table + ` WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
