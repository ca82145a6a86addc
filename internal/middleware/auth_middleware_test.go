package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/auth"
	appctx "github.com/geovoyage/backend/internal/context"
	"github.com/geovoyage/backend/internal/repository"
)

// mockSessionRepository implements repository.SessionRepository for testing
type mockSessionRepository struct {
	sessions map[string]*repository.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*repository.Session)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *repository.Session) error {
	session.ID = uuid.New()
	session.IsActive = true
	session.CreatedAt = time.Now().UTC()
	m.sessions[session.TokenHash] = session
	return nil
}

func (m *mockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*repository.Session, error) {
	if session, ok := m.sessions[tokenHash]; ok {
		return session, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *mockSessionRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	if session, ok := m.sessions[tokenHash]; ok {
		session.IsActive = false
		return nil
	}
	return repository.ErrSessionNotFound
}

func (m *mockSessionRepository) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	for _, session := range m.sessions {
		if session.AccountID == accountID && session.IsActive {
			session.IsActive = false
			count++
		}
	}
	return count, nil
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestAuthMiddleware(t *testing.T) (*AuthMiddleware, *auth.SessionService) {
	t.Helper()
	sessionService := auth.NewSessionService(newMockSessionRepository(), time.Hour)
	return NewAuthMiddleware(sessionService), sessionService
}

// echoHandler records the context values the middleware injected
func echoHandler(t *testing.T, gotAccountID, gotToken *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accountID, ok := appctx.ExtractAccountID(r.Context()); ok {
			*gotAccountID = accountID
		}
		if token, ok := appctx.ExtractSessionToken(r.Context()); ok {
			*gotToken = token
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	middleware, _ := newTestAuthMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	rec := httptest.NewRecorder()

	called := false
	middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("downstream handler should not run without a token")
	}

	var body struct {
		Success bool `json:"success"`
		Error   *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Success {
		t.Error("success should be false")
	}
	if body.Error == nil || body.Error.Code != auth.CodeAuthTokenMissing {
		t.Errorf("expected error code %s, got %+v", auth.CodeAuthTokenMissing, body.Error)
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	middleware, _ := newTestAuthMiddleware(t)

	tests := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"no token", "Bearer "},
		{"bare token", "sometoken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("downstream handler should not run")
			})).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthenticate_UnknownToken(t *testing.T) {
	middleware, _ := newTestAuthMiddleware(t)

	token, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("downstream handler should not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_ValidTokenInjectsContext(t *testing.T) {
	middleware, sessionService := newTestAuthMiddleware(t)

	accountID := uuid.New()
	token, _, err := sessionService.Issue(context.Background(), accountID, "127.0.0.1", "TestAgent")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	var gotAccountID, gotToken string
	middleware.Authenticate(echoHandler(t, &gotAccountID, &gotToken)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotAccountID != accountID.String() {
		t.Errorf("expected account ID %s in context, got %q", accountID, gotAccountID)
	}
	if gotToken != token {
		t.Errorf("expected raw token in context, got %q", gotToken)
	}
}

func TestAuthenticateOptional_ValidTokenInjectsContext(t *testing.T) {
	middleware, sessionService := newTestAuthMiddleware(t)

	accountID := uuid.New()
	token, _, err := sessionService.Issue(context.Background(), accountID, "127.0.0.1", "TestAgent")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	var gotAccountID, gotToken string
	middleware.AuthenticateOptional(echoHandler(t, &gotAccountID, &gotToken)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotAccountID != accountID.String() {
		t.Errorf("expected account ID %s in context, got %q", accountID, gotAccountID)
	}
	if gotToken != token {
		t.Errorf("expected raw token in context, got %q", gotToken)
	}
}

func TestAuthenticateOptional_NoHeaderPassesThrough(t *testing.T) {
	middleware, _ := newTestAuthMiddleware(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	rec := httptest.NewRecorder()

	var gotAccountID, gotToken string
	middleware.AuthenticateOptional(echoHandler(t, &gotAccountID, &gotToken)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotAccountID != "" {
		t.Errorf("no account should be in context, got %q", gotAccountID)
	}
	if gotToken != "" {
		t.Errorf("no token should be in context, got %q", gotToken)
	}
}

func TestAuthenticateOptional_BadTokenPassesThroughAnonymously(t *testing.T) {
	middleware, sessionService := newTestAuthMiddleware(t)

	// Revoked and unknown tokens both fall back to an anonymous request
	revoked, _, err := sessionService.Issue(context.Background(), uuid.New(), "", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := sessionService.Revoke(context.Background(), revoked); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	unknown, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	for _, token := range []string{revoked, unknown} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		var gotAccountID, gotToken string
		middleware.AuthenticateOptional(echoHandler(t, &gotAccountID, &gotToken)).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotAccountID != "" {
			t.Errorf("no account should be in context, got %q", gotAccountID)
		}
	}
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	middleware, sessionService := newTestAuthMiddleware(t)

	token, _, err := sessionService.Issue(context.Background(), uuid.New(), "", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := sessionService.Revoke(context.Background(), token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("downstream handler should not run with a revoked token")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
