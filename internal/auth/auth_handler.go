package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/geovoyage/backend/internal/api"
	appctx "github.com/geovoyage/backend/internal/context"
)

// Error codes specific to authentication responses
const (
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	CodeAuthTokenMissing   = "AUTH_TOKEN_MISSING"
	CodeAuthTokenInvalid   = "AUTH_TOKEN_INVALID"
	CodeInvalidToken       = "INVALID_TOKEN"
)

// AuthHandler handles HTTP requests for account endpoints
type AuthHandler struct {
	authService *AuthService
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(authService *AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles account registration
// POST /api/v1/accounts/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	response, validationErrors, err := h.authService.Register(r.Context(), req, api.ClientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			api.WriteError(w, http.StatusConflict, CodeEmailExists, "An account with this email already exists", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	if len(validationErrors) > 0 {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(validationErrors))
		return
	}

	api.WriteSuccess(w, http.StatusCreated, response)
}

// Login handles account authentication
// POST /api/v1/accounts/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	response, err := h.authService.Login(r.Context(), req, api.ClientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.WriteError(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password", nil)
			return
		}
		if errors.Is(err, ErrAccountDeactivated) {
			api.WriteError(w, http.StatusUnauthorized, CodeAccountDeactivated, "This account has been deactivated", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, response)
}

// Logout revokes the current session
// POST /api/v1/accounts/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := appctx.ExtractSessionToken(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, CodeAuthTokenInvalid, "Invalid or expired token", nil)
		return
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			api.WriteError(w, http.StatusUnauthorized, CodeAuthTokenInvalid, "Invalid or expired token", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "Successfully logged out",
	})
}

// GetMe returns the current account profile
// GET /api/v1/accounts/me
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := appctx.ExtractAccountID(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, CodeAuthTokenInvalid, "Invalid or expired token", nil)
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "Account not found", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"account": profile,
	})
}

// UpdateMe updates the current account profile
// PUT /api/v1/accounts/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := appctx.ExtractAccountID(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, CodeAuthTokenInvalid, "Invalid or expired token", nil)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	profile, validationErrors, err := h.authService.UpdateProfile(r.Context(), accountID, req)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "Account not found", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	if len(validationErrors) > 0 {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(validationErrors))
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"account": profile,
	})
}

// ChangePassword changes the current account password
// POST /api/v1/accounts/password/change
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID, ok := appctx.ExtractAccountID(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, CodeAuthTokenInvalid, "Invalid or expired token", nil)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	validationErrors, err := h.authService.ChangePassword(r.Context(), accountID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.WriteError(w, http.StatusUnauthorized, CodeInvalidCredentials, "Current password is incorrect", nil)
			return
		}
		if errors.Is(err, ErrAccountNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "Account not found", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	if len(validationErrors) > 0 {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(validationErrors))
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}

// ForgotPassword issues a password reset token
// POST /api/v1/accounts/password/forgot
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	_, err := h.authService.RequestPasswordReset(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid email format", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	// Same response whether or not the email exists
	api.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "If the email is registered, a reset link has been sent",
	})
}

// ResetPassword completes a password reset
// POST /api/v1/accounts/password/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	if req.Token == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "token is required", nil)
		return
	}

	validationErrors, err := h.authService.ResetPassword(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			api.WriteError(w, http.StatusBadRequest, CodeInvalidToken, "Invalid or expired reset token", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	if len(validationErrors) > 0 {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(validationErrors))
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "Password reset successfully",
	})
}

// VerifyEmail redeems an email verification token
// POST /api/v1/accounts/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	if req.Token == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "token is required", nil)
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), req); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			api.WriteError(w, http.StatusBadRequest, CodeInvalidToken, "Invalid or expired verification token", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "Email verified successfully",
	})
}

// ResendVerifyEmail issues a fresh email verification token for the
// current account
// POST /api/v1/accounts/verify-email/resend
func (h *AuthHandler) ResendVerifyEmail(w http.ResponseWriter, r *http.Request) {
	accountID, ok := appctx.ExtractAccountID(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, CodeAuthTokenInvalid, "Invalid or expired token", nil)
		return
	}

	if _, err := h.authService.RequestEmailVerification(r.Context(), accountID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "Account not found", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "If the email is unverified, a verification link has been sent",
	})
}

// DeleteMe deactivates the current account
// DELETE /api/v1/accounts/me
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := appctx.ExtractAccountID(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, CodeAuthTokenInvalid, "Invalid or expired token", nil)
		return
	}

	if err := h.authService.Deactivate(r.Context(), accountID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "Account not found", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "Account deactivated successfully",
	})
}

// validationDetails groups field validation errors for the response envelope
func validationDetails(validationErrors []ValidationError) map[string][]string {
	details := make(map[string][]string)
	for _, ve := range validationErrors {
		details[ve.Field] = append(details[ve.Field], ve.Message)
	}
	return details
}
