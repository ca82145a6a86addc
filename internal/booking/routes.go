package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers booking routes with the Chi router.
// Creating a booking is public but runs under optional authentication so
// bookings made while logged in are linked to the account. Management
// routes require authentication.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware, optionalAuthMiddleware func(http.Handler) http.Handler) {
	r.Route("/bookings", func(r chi.Router) {
		r.With(optionalAuthMiddleware).Post("/", handler.Create)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", handler.List)
			r.Get("/customer/{email}", handler.ListByCustomer)
			r.Get("/{id}", handler.Get)
			r.Put("/{id}/status", handler.UpdateStatus)
		})
	})
}
