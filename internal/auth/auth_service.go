package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/metrics"
	"github.com/geovoyage/backend/internal/repository"
)

// Auth service errors
var (
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError represents a validation error with field details
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Phone           *string `json:"phone,omitempty"`
	DateOfBirth     *string `json:"date_of_birth,omitempty"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Phone           *string `json:"phone,omitempty"`
	DateOfBirth     *string `json:"date_of_birth,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// ChangePasswordRequest represents the password change payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ForgotPasswordRequest represents the password reset request payload
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset completion payload
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// VerifyEmailRequest represents the email verification payload
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// AccountResponse represents account data in responses
type AccountResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Phone           *string    `json:"phone,omitempty"`
	DateOfBirth     *string    `json:"date_of_birth,omitempty"`
	ProfileImageURL *string    `json:"profile_image_url,omitempty"`
	IsEmailVerified bool       `json:"is_email_verified"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Account   AccountResponse `json:"account"`
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresAt time.Time       `json:"expires_at"`
}

const dateLayout = "2006-01-02"

// AuthService handles account and credential business logic
type AuthService struct {
	accountRepo       repository.AccountRepository
	resetTokenRepo    repository.AccountTokenRepository
	verifyTokenRepo   repository.AccountTokenRepository
	sessionService    *SessionService
	passwordValidator *PasswordValidator
	resetTokenTTL     time.Duration
	verifyTokenTTL    time.Duration
	logger            *slog.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(
	accountRepo repository.AccountRepository,
	resetTokenRepo repository.AccountTokenRepository,
	verifyTokenRepo repository.AccountTokenRepository,
	sessionService *SessionService,
	passwordValidator *PasswordValidator,
	resetTokenTTL time.Duration,
	verifyTokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		accountRepo:       accountRepo,
		resetTokenRepo:    resetTokenRepo,
		verifyTokenRepo:   verifyTokenRepo,
		sessionService:    sessionService,
		passwordValidator: passwordValidator,
		resetTokenTTL:     resetTokenTTL,
		verifyTokenTTL:    verifyTokenTTL,
		logger:            logger,
	}
}

// Register creates a new customer account and opens a session
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, ipAddress, userAgent string) (*AuthResponse, []ValidationError, error) {
	var validationErrors []ValidationError

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "email",
			Message: "Invalid email format",
		})
	}

	passwordErrors := s.passwordValidator.ValidatePassword(req.Password)
	for _, err := range passwordErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field,
			Message: err.Message,
		})
	}

	if req.Password != req.ConfirmPassword {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "confirm_password",
			Message: "Password and confirm_password do not match",
		})
	}

	if strings.TrimSpace(req.FirstName) == "" {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "first_name",
			Message: "First name is required",
		})
	}
	if strings.TrimSpace(req.LastName) == "" {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "last_name",
			Message: "Last name is required",
		})
	}

	dob, dobErr := parseOptionalDate(req.DateOfBirth)
	if dobErr != nil {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "date_of_birth",
			Message: "Date of birth must be in YYYY-MM-DD format",
		})
	}

	if len(validationErrors) > 0 {
		return nil, validationErrors, nil
	}

	exists, err := s.accountRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrEmailExists
	}

	passwordHash, err := s.passwordValidator.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	account := &repository.Account{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		DateOfBirth:  dob,
		IsActive:     true,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailAlreadyExists) {
			return nil, nil, ErrEmailExists
		}
		return nil, nil, err
	}

	token, session, err := s.sessionService.Issue(ctx, account.ID, ipAddress, userAgent)
	if err != nil {
		return nil, nil, err
	}

	// Registration already committed, so a failed verification token is
	// recoverable via the resend endpoint
	if _, err := s.RequestEmailVerification(ctx, account.ID.String()); err != nil {
		s.logger.Warn("Failed to issue email verification token", "account_id", account.ID, "error", err)
	}

	s.logger.Info("Account registered", "account_id", account.ID)

	return &AuthResponse{
		Account:   toAccountResponse(account),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
	}, nil, nil
}

// Login authenticates an account and opens a session
func (s *AuthService) Login(ctx context.Context, req LoginRequest, ipAddress, userAgent string) (*AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Generic error to prevent account enumeration
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.passwordValidator.VerifyPassword(req.Password, account.PasswordHash); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	// Checked after password verification so failed logins do not
	// reveal whether the account exists
	if !account.IsActive {
		metrics.LoginsTotal.WithLabelValues("deactivated").Inc()
		return nil, ErrAccountDeactivated
	}

	token, session, err := s.sessionService.Issue(ctx, account.ID, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("Account logged in", "account_id", account.ID)

	return &AuthResponse{
		Account:   toAccountResponse(account),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout revokes the session matching the token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessionService.Revoke(ctx, token); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// GetProfile returns the account profile
func (s *AuthService) GetProfile(ctx context.Context, accountID string) (*AccountResponse, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

// UpdateProfile updates the mutable profile fields of an account
func (s *AuthService) UpdateProfile(ctx context.Context, accountID string, req UpdateProfileRequest) (*AccountResponse, []ValidationError, error) {
	var validationErrors []ValidationError

	if strings.TrimSpace(req.FirstName) == "" {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "first_name",
			Message: "First name is required",
		})
	}
	if strings.TrimSpace(req.LastName) == "" {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "last_name",
			Message: "Last name is required",
		})
	}

	dob, dobErr := parseOptionalDate(req.DateOfBirth)
	if dobErr != nil {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "date_of_birth",
			Message: "Date of birth must be in YYYY-MM-DD format",
		})
	}

	if len(validationErrors) > 0 {
		return nil, validationErrors, nil
	}

	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	account.FirstName = strings.TrimSpace(req.FirstName)
	account.LastName = strings.TrimSpace(req.LastName)
	account.Phone = req.Phone
	account.DateOfBirth = dob
	account.ProfileImageURL = req.ProfileImageURL

	if err := s.accountRepo.UpdateProfile(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil, ErrAccountNotFound
		}
		return nil, nil, err
	}

	resp := toAccountResponse(account)
	return &resp, nil, nil
}

// ChangePassword verifies the current password, stores a new hash, and
// revokes every other session for the account
func (s *AuthService) ChangePassword(ctx context.Context, accountID string, req ChangePasswordRequest) ([]ValidationError, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.passwordValidator.VerifyPassword(req.CurrentPassword, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	passwordErrors := s.passwordValidator.ValidatePassword(req.NewPassword)
	if len(passwordErrors) > 0 {
		validationErrors := make([]ValidationError, 0, len(passwordErrors))
		for _, err := range passwordErrors {
			validationErrors = append(validationErrors, ValidationError{
				Field:   "new_password",
				Message: err.Message,
			})
		}
		return validationErrors, nil
	}

	passwordHash, err := s.passwordValidator.HashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdatePassword(ctx, account.ID, passwordHash); err != nil {
		return nil, err
	}

	if _, err := s.sessionService.RevokeAllForAccount(ctx, account.ID); err != nil {
		s.logger.Warn("Failed to revoke sessions after password change", "account_id", account.ID, "error", err)
	}

	s.logger.Info("Password changed", "account_id", account.ID)
	return nil, nil
}

// RequestPasswordReset issues a single-use reset token. Returns the
// plaintext token so the caller can deliver it. Unknown emails return no
// error and no token, preventing enumeration.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req ForgotPasswordRequest) (string, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		return "", ErrInvalidEmail
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", nil
		}
		return "", err
	}

	// Outstanding tokens are invalidated so only the newest one works
	if _, err := s.resetTokenRepo.InvalidateForAccount(ctx, account.ID); err != nil {
		return "", err
	}

	token, err := GenerateToken()
	if err != nil {
		return "", err
	}

	resetToken := &repository.AccountToken{
		AccountID: account.ID,
		TokenHash: HashToken(token),
		ExpiresAt: time.Now().UTC().Add(s.resetTokenTTL),
	}
	if err := s.resetTokenRepo.Create(ctx, resetToken); err != nil {
		return "", err
	}

	s.logger.Info("Password reset requested", "account_id", account.ID)
	return token, nil
}

// ResetPassword redeems a reset token and stores a new password hash.
// All sessions for the account are revoked.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) ([]ValidationError, error) {
	passwordErrors := s.passwordValidator.ValidatePassword(req.NewPassword)
	if len(passwordErrors) > 0 {
		validationErrors := make([]ValidationError, 0, len(passwordErrors))
		for _, err := range passwordErrors {
			validationErrors = append(validationErrors, ValidationError{
				Field:   "new_password",
				Message: err.Message,
			})
		}
		return validationErrors, nil
	}

	resetToken, err := s.resetTokenRepo.GetByTokenHash(ctx, HashToken(req.Token))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !resetToken.Redeemable(time.Now().UTC()) {
		return nil, ErrInvalidToken
	}

	passwordHash, err := s.passwordValidator.HashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}

	if err := s.resetTokenRepo.MarkUsed(ctx, resetToken.ID); err != nil {
		if errors.Is(err, repository.ErrTokenUsed) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.accountRepo.UpdatePassword(ctx, resetToken.AccountID, passwordHash); err != nil {
		return nil, err
	}

	if _, err := s.sessionService.RevokeAllForAccount(ctx, resetToken.AccountID); err != nil {
		s.logger.Warn("Failed to revoke sessions after password reset", "account_id", resetToken.AccountID, "error", err)
	}

	s.logger.Info("Password reset completed", "account_id", resetToken.AccountID)
	return nil, nil
}

// RequestEmailVerification issues a single-use verification token and
// returns the plaintext so the caller can deliver it
func (s *AuthService) RequestEmailVerification(ctx context.Context, accountID string) (string, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	if account.IsEmailVerified {
		return "", nil
	}

	if _, err := s.verifyTokenRepo.InvalidateForAccount(ctx, account.ID); err != nil {
		return "", err
	}

	token, err := GenerateToken()
	if err != nil {
		return "", err
	}

	verifyToken := &repository.AccountToken{
		AccountID: account.ID,
		TokenHash: HashToken(token),
		ExpiresAt: time.Now().UTC().Add(s.verifyTokenTTL),
	}
	if err := s.verifyTokenRepo.Create(ctx, verifyToken); err != nil {
		return "", err
	}

	return token, nil
}

// VerifyEmail redeems a verification token and marks the account verified
func (s *AuthService) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	verifyToken, err := s.verifyTokenRepo.GetByTokenHash(ctx, HashToken(req.Token))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if !verifyToken.Redeemable(time.Now().UTC()) {
		return ErrInvalidToken
	}

	if err := s.verifyTokenRepo.MarkUsed(ctx, verifyToken.ID); err != nil {
		if errors.Is(err, repository.ErrTokenUsed) {
			return ErrInvalidToken
		}
		return err
	}

	if err := s.accountRepo.MarkEmailVerified(ctx, verifyToken.AccountID); err != nil {
		return err
	}

	s.logger.Info("Email verified", "account_id", verifyToken.AccountID)
	return nil
}

// Deactivate disables an account and revokes all of its sessions.
// The account record is retained.
func (s *AuthService) Deactivate(ctx context.Context, accountID string) error {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.accountRepo.SetActive(ctx, account.ID, false); err != nil {
		return err
	}

	if _, err := s.sessionService.RevokeAllForAccount(ctx, account.ID); err != nil {
		s.logger.Warn("Failed to revoke sessions during deactivation", "account_id", account.ID, "error", err)
	}

	s.logger.Info("Account deactivated", "account_id", account.ID)
	return nil
}

// PurgeExpiredTokens deletes expired reset and verification tokens and
// returns how many were removed
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	now := time.Now().UTC()

	resetCount, err := s.resetTokenRepo.DeleteExpired(ctx, now)
	if err != nil {
		return resetCount, err
	}
	verifyCount, err := s.verifyTokenRepo.DeleteExpired(ctx, now)
	return resetCount + verifyCount, err
}

func (s *AuthService) getAccount(ctx context.Context, accountID string) (*repository.Account, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func toAccountResponse(account *repository.Account) AccountResponse {
	resp := AccountResponse{
		ID:              account.ID.String(),
		Email:           account.Email,
		FirstName:       account.FirstName,
		LastName:        account.LastName,
		Phone:           account.Phone,
		ProfileImageURL: account.ProfileImageURL,
		IsEmailVerified: account.IsEmailVerified,
		CreatedAt:       account.CreatedAt,
	}
	if account.DateOfBirth != nil {
		dob := account.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// isValidEmail checks if the email format is valid
func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}
