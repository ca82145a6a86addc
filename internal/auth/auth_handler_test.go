package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geovoyage/backend/internal/api"
)

// Logging in to a deactivated account is an authentication failure, not a
// permission failure.
func TestAuthHandler_LoginDeactivatedAccount(t *testing.T) {
	service, _ := newTestAuthService()
	handler := NewAuthHandler(service)

	reg := registerTestAccount(t, service, "ida@example.com", "Travel2026")
	if err := service.Deactivate(context.Background(), reg.Account.ID); err != nil {
		t.Fatalf("deactivation failed: %v", err)
	}

	body := strings.NewReader(`{"email":"ida@example.com","password":"Travel2026"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/login", body)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}

	var resp api.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Success {
		t.Error("response should not be successful")
	}
	if resp.Error == nil || resp.Error.Code != CodeAccountDeactivated {
		t.Errorf("expected error code %s, got %+v", CodeAccountDeactivated, resp.Error)
	}
}

func TestAuthHandler_ResendVerifyEmailRequiresAccount(t *testing.T) {
	service, _ := newTestAuthService()
	handler := NewAuthHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/verify-email/resend", nil)
	rec := httptest.NewRecorder()

	handler.ResendVerifyEmail(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without an authenticated account, got %d", rec.Code)
	}
}
