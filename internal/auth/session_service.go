package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/metrics"
	"github.com/geovoyage/backend/internal/repository"
)

// Session service errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionRevoked  = errors.New("session revoked")
)

// tokenByteLength is the length of the random token material in bytes.
// 32 bytes gives 256 bits of entropy.
const tokenByteLength = 32

// SessionService issues and validates opaque session tokens. Tokens are
// random, handed to the client once, and stored server-side only as a
// SHA-256 hash.
type SessionService struct {
	sessionRepo repository.SessionRepository
	ttl         time.Duration
}

// NewSessionService creates a new SessionService instance
func NewSessionService(sessionRepo repository.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		ttl:         ttl,
	}
}

// GenerateToken produces a new random opaque token
func GenerateToken() (string, error) {
	buf := make([]byte, tokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken creates a SHA-256 hash of the token for storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Issue creates a new session for the account and returns the plaintext
// token. The plaintext is never stored.
func (s *SessionService) Issue(ctx context.Context, accountID uuid.UUID, ipAddress, userAgent string) (string, *repository.Session, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", nil, err
	}

	session := &repository.Session{
		AccountID: accountID,
		TokenHash: HashToken(token),
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	if ipAddress != "" {
		session.IPAddress = &ipAddress
	}
	if userAgent != "" {
		session.UserAgent = &userAgent
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, err
	}

	metrics.SessionsIssuedTotal.Inc()
	return token, session, nil
}

// Validate checks a token against the stored sessions. Returns the
// session when it is active and unexpired, otherwise one of the
// sentinel errors above.
func (s *SessionService) Validate(ctx context.Context, token string) (*repository.Session, error) {
	session, err := s.sessionRepo.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if !session.IsActive {
		return nil, ErrSessionRevoked
	}
	if sessionExpired(time.Now().UTC(), session.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// sessionExpired reports whether a session whose expiry is expiresAt is
// expired at now. A session is valid strictly before its expiry.
func sessionExpired(now, expiresAt time.Time) bool {
	return !now.Before(expiresAt)
}

// Revoke deactivates the session matching the token. Revocation is
// terminal, a revoked session never validates again.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if err := s.sessionRepo.RevokeByTokenHash(ctx, HashToken(token)); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// RevokeAllForAccount deactivates every session belonging to the account
// and returns how many were revoked
func (s *SessionService) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.sessionRepo.RevokeAllForAccount(ctx, accountID)
}

// PurgeExpired deletes sessions whose expiry has passed and returns how
// many were removed. Revoked-but-unexpired sessions are retained.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, time.Now().UTC())
}

// TTL returns the configured session lifetime
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}
