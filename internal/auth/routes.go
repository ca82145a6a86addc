package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware is an interface for HTTP middleware
type Middleware func(http.Handler) http.Handler

// RegisterRoutes registers all account routes with the Chi router.
// Public routes: /register, /login, /password/forgot, /password/reset, /verify-email
// Protected routes: /logout, /me, /password/change, /verify-email/resend
func RegisterRoutes(r chi.Router, handler *AuthHandler, authMiddleware Middleware) {
	r.Route("/accounts", func(r chi.Router) {
		// Public routes (no authentication required)
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/password/forgot", handler.ForgotPassword)
		r.Post("/password/reset", handler.ResetPassword)
		r.Post("/verify-email", handler.VerifyEmail)

		// Protected routes (authentication required)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", handler.Logout)
			r.Get("/me", handler.GetMe)
			r.Put("/me", handler.UpdateMe)
			r.Delete("/me", handler.DeleteMe)
			r.Post("/password/change", handler.ChangePassword)
			r.Post("/verify-email/resend", handler.ResendVerifyEmail)
		})
	})
}
