package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers catalog routes with the Chi router.
// Reads are public, writes require authentication.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/tourpackages", func(r chi.Router) {
		r.Get("/", handler.ListPackages)
		r.Get("/{id}", handler.GetPackage)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", handler.CreatePackage)
			r.Put("/{id}", handler.UpdatePackage)
			r.Delete("/{id}", handler.DeletePackage)
		})
	})

	r.Route("/places", func(r chi.Router) {
		r.Get("/", handler.ListPlaces)
		r.Get("/{id}", handler.GetPlace)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", handler.CreatePlace)
			r.Put("/{id}", handler.UpdatePlace)
			r.Delete("/{id}", handler.DeletePlace)
		})
	})

	r.Route("/dishes", func(r chi.Router) {
		r.Get("/", handler.ListDishes)
		r.Get("/category/{category}", handler.ListDishesByCategory)
		r.Get("/{id}", handler.GetDish)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", handler.CreateDish)
			r.Put("/{id}", handler.UpdateDish)
			r.Delete("/{id}", handler.DeleteDish)
		})
	})
}
