package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/crypto/bcrypt"
	"pgregory.net/rapid"

	"github.com/geovoyage/backend/internal/metrics"
	"github.com/geovoyage/backend/internal/repository"
)

// mockAccountRepository implements repository.AccountRepository for testing
type mockAccountRepository struct {
	accounts map[uuid.UUID]*repository.Account
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		accounts: make(map[uuid.UUID]*repository.Account),
	}
}

func (m *mockAccountRepository) Create(ctx context.Context, account *repository.Account) error {
	email := strings.ToLower(account.Email)
	for _, existing := range m.accounts {
		if strings.ToLower(existing.Email) == email {
			return repository.ErrEmailAlreadyExists
		}
	}
	account.ID = uuid.New()
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	m.accounts[account.ID] = account
	return nil
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*repository.Account, error) {
	if account, ok := m.accounts[id]; ok {
		return account, nil
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	email = strings.ToLower(email)
	for _, account := range m.accounts {
		if strings.ToLower(account.Email) == email {
			return account, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(email)
	for _, account := range m.accounts {
		if strings.ToLower(account.Email) == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAccountRepository) UpdateProfile(ctx context.Context, account *repository.Account) error {
	existing, ok := m.accounts[account.ID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	existing.FirstName = account.FirstName
	existing.LastName = account.LastName
	existing.Phone = account.Phone
	existing.DateOfBirth = account.DateOfBirth
	existing.ProfileImageURL = account.ProfileImageURL
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	account, ok := m.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	account.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockAccountRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	account, ok := m.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.IsEmailVerified = true
	return nil
}

func (m *mockAccountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	account, ok := m.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.IsActive = active
	return nil
}

// mockAccountTokenRepository implements repository.AccountTokenRepository
// for testing
type mockAccountTokenRepository struct {
	tokens map[uuid.UUID]*repository.AccountToken
}

func newMockAccountTokenRepository() *mockAccountTokenRepository {
	return &mockAccountTokenRepository{
		tokens: make(map[uuid.UUID]*repository.AccountToken),
	}
}

func (m *mockAccountTokenRepository) Create(ctx context.Context, token *repository.AccountToken) error {
	token.ID = uuid.New()
	token.CreatedAt = time.Now().UTC()
	m.tokens[token.ID] = token
	return nil
}

func (m *mockAccountTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*repository.AccountToken, error) {
	for _, token := range m.tokens {
		if token.TokenHash == tokenHash {
			return token, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (m *mockAccountTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	token, ok := m.tokens[id]
	if !ok {
		return repository.ErrTokenNotFound
	}
	if token.UsedAt != nil {
		return repository.ErrTokenUsed
	}
	now := time.Now().UTC()
	token.UsedAt = &now
	return nil
}

func (m *mockAccountTokenRepository) InvalidateForAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	now := time.Now().UTC()
	for _, token := range m.tokens {
		if token.AccountID == accountID && token.UsedAt == nil {
			token.UsedAt = &now
			count++
		}
	}
	return count, nil
}

func (m *mockAccountTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var count int64
	for id, token := range m.tokens {
		if token.ExpiresAt.Before(before) {
			delete(m.tokens, id)
			count++
		}
	}
	return count, nil
}

type testAuthDeps struct {
	accountRepo     *mockAccountRepository
	sessionRepo     *mockSessionRepository
	resetTokenRepo  *mockAccountTokenRepository
	verifyTokenRepo *mockAccountTokenRepository
	sessionService  *SessionService
}

// newTestAuthService builds an AuthService over in-memory repositories.
// Bcrypt runs at minimum cost to keep the tests fast.
func newTestAuthService() (*AuthService, *testAuthDeps) {
	deps := &testAuthDeps{
		accountRepo:     newMockAccountRepository(),
		sessionRepo:     newMockSessionRepository(),
		resetTokenRepo:  newMockAccountTokenRepository(),
		verifyTokenRepo: newMockAccountTokenRepository(),
	}
	deps.sessionService = NewSessionService(deps.sessionRepo, 30*24*time.Hour)

	service := NewAuthService(
		deps.accountRepo,
		deps.resetTokenRepo,
		deps.verifyTokenRepo,
		deps.sessionService,
		NewPasswordValidator(bcrypt.MinCost),
		time.Hour,
		24*time.Hour,
		nil,
	)
	return service, deps
}

func registerTestAccount(t testing.TB, service *AuthService, email, password string) *AuthResponse {
	t.Helper()
	resp, validationErrors, err := service.Register(context.Background(), RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		FirstName:       "Ida",
		LastName:        "Traveler",
	}, "127.0.0.1", "TestAgent")
	if err != nil || len(validationErrors) > 0 {
		t.Fatalf("registration failed: err=%v, validationErrors=%v", err, validationErrors)
	}
	return resp
}

// Property: any well-formed email plus a password meeting the complexity
// rules registers successfully and returns a session token.
func TestRegister_ValidInputCreatesAccountAndSession(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		service, deps := newTestAuthService()
		ctx := context.Background()

		localPart := rapid.StringMatching(`[a-z]{5,10}`).Draw(t, "localPart")
		domain := rapid.StringMatching(`[a-z]{5,10}`).Draw(t, "domain")
		tld := rapid.StringMatching(`[a-z]{2,3}`).Draw(t, "tld")
		email := localPart + "@" + domain + "." + tld

		upper := rapid.StringMatching(`[A-Z]{2}`).Draw(t, "upper")
		lower := rapid.StringMatching(`[a-z]{4}`).Draw(t, "lower")
		digits := rapid.StringMatching(`[0-9]{3}`).Draw(t, "digits")
		password := upper + lower + digits

		resp, validationErrors, err := service.Register(ctx, RegisterRequest{
			Email:           email,
			Password:        password,
			ConfirmPassword: password,
			FirstName:       "Ida",
			LastName:        "Traveler",
		}, "127.0.0.1", "TestAgent")

		if len(validationErrors) > 0 {
			t.Fatalf("unexpected validation errors: %v", validationErrors)
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp == nil {
			t.Fatal("expected response, got nil")
		}

		if resp.Account.Email != strings.ToLower(email) {
			t.Errorf("email should be stored lowercased: expected %s, got %s", strings.ToLower(email), resp.Account.Email)
		}
		if resp.Token == "" {
			t.Error("session token should not be empty")
		}
		if resp.TokenType != "Bearer" {
			t.Errorf("token type should be Bearer, got %s", resp.TokenType)
		}
		if !resp.ExpiresAt.After(time.Now()) {
			t.Error("session expiry should be in the future")
		}

		exists, _ := deps.accountRepo.EmailExists(ctx, email)
		if !exists {
			t.Error("account should exist after registration")
		}

		// The stored password is a hash, never the plaintext
		account, err := deps.accountRepo.GetByEmail(ctx, email)
		if err != nil {
			t.Fatalf("account lookup failed: %v", err)
		}
		if account.PasswordHash == password {
			t.Error("password must not be stored in plaintext")
		}

		// The issued token validates against the session store
		if _, err := deps.sessionService.Validate(ctx, resp.Token); err != nil {
			t.Errorf("issued token should validate: %v", err)
		}
	})
}

// Property: malformed emails are rejected with a field-level validation
// error, not an internal error.
func TestRegister_InvalidEmailRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		service, _ := newTestAuthService()

		var email string
		switch rapid.IntRange(0, 3).Draw(t, "invalidType") {
		case 0:
			email = rapid.StringMatching(`[a-z]{5,10}\.[a-z]{2,3}`).Draw(t, "noAt")
		case 1:
			email = rapid.StringMatching(`[a-z]{5,10}@`).Draw(t, "noDomain")
		case 2:
			email = ""
		case 3:
			email = "@"
		}

		resp, validationErrors, err := service.Register(context.Background(), RegisterRequest{
			Email:           email,
			Password:        "Travel2026",
			ConfirmPassword: "Travel2026",
			FirstName:       "Ida",
			LastName:        "Traveler",
		}, "127.0.0.1", "TestAgent")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp != nil {
			t.Error("should not return a response for invalid input")
		}

		hasEmailError := false
		for _, ve := range validationErrors {
			if ve.Field == "email" {
				hasEmailError = true
				break
			}
		}
		if !hasEmailError {
			t.Errorf("expected email validation error for %q", email)
		}
	})
}

func TestRegister_PasswordMismatchRejected(t *testing.T) {
	service, _ := newTestAuthService()

	resp, validationErrors, err := service.Register(context.Background(), RegisterRequest{
		Email:           "ida@example.com",
		Password:        "Travel2026",
		ConfirmPassword: "Different2026",
		FirstName:       "Ida",
		LastName:        "Traveler",
	}, "127.0.0.1", "TestAgent")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != nil {
		t.Error("should not return a response when passwords differ")
	}

	found := false
	for _, ve := range validationErrors {
		if ve.Field == "confirm_password" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected confirm_password validation error")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, _ := newTestAuthService()
	ctx := context.Background()

	registerTestAccount(t, service, "ida@example.com", "Travel2026")

	// Same email, different case
	_, validationErrors, err := service.Register(ctx, RegisterRequest{
		Email:           "IDA@Example.Com",
		Password:        "Travel2026",
		ConfirmPassword: "Travel2026",
		FirstName:       "Ida",
		LastName:        "Traveler",
	}, "127.0.0.1", "TestAgent")

	if len(validationErrors) > 0 {
		t.Fatalf("unexpected validation errors: %v", validationErrors)
	}
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

// Wrong password and unknown email return the same generic error so an
// attacker cannot probe which emails are registered.
func TestRegister_IssuesVerificationToken(t *testing.T) {
	service, deps := newTestAuthService()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	accountID, err := uuid.Parse(reg.Account.ID)
	if err != nil {
		t.Fatalf("invalid account ID in response: %v", err)
	}

	var outstanding int
	for _, token := range deps.verifyTokenRepo.tokens {
		if token.AccountID != accountID {
			continue
		}
		if token.UsedAt != nil {
			t.Error("verification token should be unused right after registration")
		}
		outstanding++
	}
	if outstanding != 1 {
		t.Errorf("expected 1 verification token after registration, got %d", outstanding)
	}
}

func TestLogin_OutcomeMetrics(t *testing.T) {
	service, _ := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	successBefore := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("success"))
	invalidBefore := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("invalid_credentials"))
	deactivatedBefore := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("deactivated"))

	if _, err := service.Login(ctx, LoginRequest{Email: "ida@example.com", Password: "Travel2026"}, "", ""); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := service.Login(ctx, LoginRequest{Email: "ida@example.com", Password: "Wrong2026x"}, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := service.Deactivate(ctx, reg.Account.ID); err != nil {
		t.Fatalf("deactivation failed: %v", err)
	}
	if _, err := service.Login(ctx, LoginRequest{Email: "ida@example.com", Password: "Travel2026"}, "", ""); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}

	if got := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("success")) - successBefore; got != 1 {
		t.Errorf("expected success counter to grow by 1, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("invalid_credentials")) - invalidBefore; got != 1 {
		t.Errorf("expected invalid_credentials counter to grow by 1, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("deactivated")) - deactivatedBefore; got != 1 {
		t.Errorf("expected deactivated counter to grow by 1, got %v", got)
	}
}

func TestLogin_InvalidCredentialsGeneric(t *testing.T) {
	service, _ := newTestAuthService()
	ctx := context.Background()

	registerTestAccount(t, service, "ida@example.com", "Travel2026")

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: "ida@example.com", Password: "Wrong2026x"}},
		{"unknown email", LoginRequest{Email: "nobody@example.com", Password: "Travel2026"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.Login(ctx, tt.req, "127.0.0.1", "TestAgent")
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
			if resp != nil {
				t.Error("should not return a response for invalid credentials")
			}
		})
	}
}

func TestLogin_ValidCredentials(t *testing.T) {
	service, deps := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	resp, err := service.Login(ctx, LoginRequest{
		Email:    "Ida@Example.com",
		Password: "Travel2026",
	}, "203.0.113.10", "TestAgent/1.0")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if resp.Account.ID != reg.Account.ID {
		t.Errorf("account ID mismatch: expected %s, got %s", reg.Account.ID, resp.Account.ID)
	}
	if resp.Token == "" || resp.Token == reg.Token {
		t.Error("login should issue a fresh session token")
	}

	session, err := deps.sessionService.Validate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("issued token should validate: %v", err)
	}
	if session.IPAddress == nil || *session.IPAddress != "203.0.113.10" {
		t.Error("session should record the client IP")
	}
	if session.UserAgent == nil || *session.UserAgent != "TestAgent/1.0" {
		t.Error("session should record the user agent")
	}
}

// Deactivation is only reported when the password is correct; with a wrong
// password the error stays generic.
func TestLogin_DeactivatedAccount(t *testing.T) {
	service, _ := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	if err := service.Deactivate(ctx, reg.Account.ID); err != nil {
		t.Fatalf("deactivation failed: %v", err)
	}

	_, err := service.Login(ctx, LoginRequest{
		Email:    "ida@example.com",
		Password: "Travel2026",
	}, "127.0.0.1", "TestAgent")
	if !errors.Is(err, ErrAccountDeactivated) {
		t.Errorf("expected ErrAccountDeactivated with correct password, got %v", err)
	}

	_, err = service.Login(ctx, LoginRequest{
		Email:    "ida@example.com",
		Password: "Wrong2026x",
	}, "127.0.0.1", "TestAgent")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials with wrong password, got %v", err)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	service, deps := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	if err := service.Logout(ctx, reg.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, err := deps.sessionService.Validate(ctx, reg.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("expected ErrSessionRevoked after logout, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	service, _ := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	phone := "+4512345678"
	dob := "1990-06-15"
	resp, validationErrors, err := service.UpdateProfile(ctx, reg.Account.ID, UpdateProfileRequest{
		FirstName:   "Ida-Marie",
		LastName:    "Traveler",
		Phone:       &phone,
		DateOfBirth: &dob,
	})
	if err != nil || len(validationErrors) > 0 {
		t.Fatalf("update failed: err=%v, validationErrors=%v", err, validationErrors)
	}

	if resp.FirstName != "Ida-Marie" {
		t.Errorf("first name not updated, got %s", resp.FirstName)
	}
	if resp.Phone == nil || *resp.Phone != phone {
		t.Error("phone not updated")
	}
	if resp.DateOfBirth == nil || *resp.DateOfBirth != dob {
		t.Error("date of birth not updated")
	}

	// Bad date format is a validation error
	badDOB := "15/06/1990"
	_, validationErrors, err = service.UpdateProfile(ctx, reg.Account.ID, UpdateProfileRequest{
		FirstName:   "Ida",
		LastName:    "Traveler",
		DateOfBirth: &badDOB,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(validationErrors) == 0 {
		t.Error("expected validation error for malformed date")
	}
}

func TestChangePassword_RevokesAllSessions(t *testing.T) {
	service, deps := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	login, err := service.Login(ctx, LoginRequest{Email: "ida@example.com", Password: "Travel2026"}, "127.0.0.1", "TestAgent")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	validationErrors, err := service.ChangePassword(ctx, reg.Account.ID, ChangePasswordRequest{
		CurrentPassword: "Travel2026",
		NewPassword:     "Voyage2027",
	})
	if err != nil || len(validationErrors) > 0 {
		t.Fatalf("change password failed: err=%v, validationErrors=%v", err, validationErrors)
	}

	// Every existing session is revoked
	for _, token := range []string{reg.Token, login.Token} {
		if _, err := deps.sessionService.Validate(ctx, token); !errors.Is(err, ErrSessionRevoked) {
			t.Errorf("expected ErrSessionRevoked after password change, got %v", err)
		}
	}

	// Old password no longer works, new one does
	if _, err := service.Login(ctx, LoginRequest{Email: "ida@example.com", Password: "Travel2026"}, "127.0.0.1", "TestAgent"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password should be rejected, got %v", err)
	}
	if _, err := service.Login(ctx, LoginRequest{Email: "ida@example.com", Password: "Voyage2027"}, "127.0.0.1", "TestAgent"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	service, _ := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	_, err := service.ChangePassword(ctx, reg.Account.ID, ChangePasswordRequest{
		CurrentPassword: "Wrong2026x",
		NewPassword:     "Voyage2027",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// Unknown emails silently succeed so the endpoint cannot be used to probe
// which addresses have accounts.
func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	service, _ := newTestAuthService()

	token, err := service.RequestPasswordReset(context.Background(), ForgotPasswordRequest{
		Email: "nobody@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "" {
		t.Error("no token should be issued for an unknown email")
	}
}

func TestResetPassword_SingleUse(t *testing.T) {
	service, deps := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	token, err := service.RequestPasswordReset(ctx, ForgotPasswordRequest{Email: "ida@example.com"})
	if err != nil {
		t.Fatalf("reset request failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a reset token for a known email")
	}

	validationErrors, err := service.ResetPassword(ctx, ResetPasswordRequest{
		Token:       token,
		NewPassword: "Voyage2027",
	})
	if err != nil || len(validationErrors) > 0 {
		t.Fatalf("reset failed: err=%v, validationErrors=%v", err, validationErrors)
	}

	// Sessions opened before the reset are revoked
	if _, err := deps.sessionService.Validate(ctx, reg.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("expected ErrSessionRevoked after reset, got %v", err)
	}

	// The token cannot be redeemed twice
	_, err = service.ResetPassword(ctx, ResetPasswordRequest{
		Token:       token,
		NewPassword: "Another2028",
	})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken on second redemption, got %v", err)
	}

	// The password from the first redemption stands
	if _, err := service.Login(ctx, LoginRequest{Email: "ida@example.com", Password: "Voyage2027"}, "127.0.0.1", "TestAgent"); err != nil {
		t.Errorf("reset password should work: %v", err)
	}
}

// Requesting a new reset token invalidates any outstanding one.
func TestRequestPasswordReset_OnlyNewestTokenWorks(t *testing.T) {
	service, _ := newTestAuthService()
	ctx := context.Background()

	registerTestAccount(t, service, "ida@example.com", "Travel2026")

	first, err := service.RequestPasswordReset(ctx, ForgotPasswordRequest{Email: "ida@example.com"})
	if err != nil {
		t.Fatalf("first reset request failed: %v", err)
	}
	second, err := service.RequestPasswordReset(ctx, ForgotPasswordRequest{Email: "ida@example.com"})
	if err != nil {
		t.Fatalf("second reset request failed: %v", err)
	}

	_, err = service.ResetPassword(ctx, ResetPasswordRequest{Token: first, NewPassword: "Voyage2027"})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("superseded token should be rejected, got %v", err)
	}

	validationErrors, err := service.ResetPassword(ctx, ResetPasswordRequest{Token: second, NewPassword: "Voyage2027"})
	if err != nil || len(validationErrors) > 0 {
		t.Fatalf("newest token should work: err=%v, validationErrors=%v", err, validationErrors)
	}
}

func TestResetPassword_InvalidToken(t *testing.T) {
	service, _ := newTestAuthService()

	_, err := service.ResetPassword(context.Background(), ResetPasswordRequest{
		Token:       "not-a-real-token",
		NewPassword: "Voyage2027",
	})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyEmail_Flow(t *testing.T) {
	service, deps := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	token, err := service.RequestEmailVerification(ctx, reg.Account.ID)
	if err != nil {
		t.Fatalf("verification request failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a verification token")
	}

	if err := service.VerifyEmail(ctx, VerifyEmailRequest{Token: token}); err != nil {
		t.Fatalf("verification failed: %v", err)
	}

	accountID, _ := uuid.Parse(reg.Account.ID)
	account, err := deps.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	if !account.IsEmailVerified {
		t.Error("account should be marked verified")
	}

	// Single use
	if err := service.VerifyEmail(ctx, VerifyEmailRequest{Token: token}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken on second redemption, got %v", err)
	}

	// Already-verified accounts get no new token
	token, err = service.RequestEmailVerification(ctx, reg.Account.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "" {
		t.Error("no token should be issued for an already-verified account")
	}
}

func TestDeactivate_RetainsAccountRecord(t *testing.T) {
	service, deps := newTestAuthService()
	ctx := context.Background()

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")

	if err := service.Deactivate(ctx, reg.Account.ID); err != nil {
		t.Fatalf("deactivation failed: %v", err)
	}

	accountID, _ := uuid.Parse(reg.Account.ID)
	account, err := deps.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		t.Fatalf("account record should still exist: %v", err)
	}
	if account.IsActive {
		t.Error("account should be inactive")
	}

	if _, err := deps.sessionService.Validate(ctx, reg.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("expected ErrSessionRevoked after deactivation, got %v", err)
	}
}

func TestGetProfile_UnknownAccount(t *testing.T) {
	service, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := service.GetProfile(ctx, "not-a-uuid"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound for malformed ID, got %v", err)
	}
	if _, err := service.GetProfile(ctx, uuid.New().String()); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound for unknown ID, got %v", err)
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	service, deps := newTestAuthService()
	ctx := context.Background()
	accountID := uuid.New()

	expired := &repository.AccountToken{
		AccountID: accountID,
		TokenHash: HashToken("stale"),
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	if err := deps.resetTokenRepo.Create(ctx, expired); err != nil {
		t.Fatalf("failed to seed expired token: %v", err)
	}
	live := &repository.AccountToken{
		AccountID: accountID,
		TokenHash: HashToken("fresh"),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := deps.verifyTokenRepo.Create(ctx, live); err != nil {
		t.Fatalf("failed to seed live token: %v", err)
	}

	purged, err := service.PurgeExpiredTokens(ctx)
	if err != nil {
		t.Fatalf("PurgeExpiredTokens failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged token, got %d", purged)
	}
	if len(deps.resetTokenRepo.tokens) != 0 {
		t.Errorf("expired reset token should be gone, %d remain", len(deps.resetTokenRepo.tokens))
	}
	if len(deps.verifyTokenRepo.tokens) != 1 {
		t.Errorf("live verification token should survive, %d remain", len(deps.verifyTokenRepo.tokens))
	}
}
