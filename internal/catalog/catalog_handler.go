package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geovoyage/backend/internal/api"
)

// Handler handles HTTP requests for catalog endpoints
type Handler struct {
	catalogService *Service
}

// NewHandler creates a new Handler instance
func NewHandler(catalogService *Service) *Handler {
	return &Handler{
		catalogService: catalogService,
	}
}

func (h *Handler) writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPackageNotFound):
		api.WriteError(w, http.StatusNotFound, CodePackageNotFound, "Tour package not found", nil)
	case errors.Is(err, ErrPlaceNotFound):
		api.WriteError(w, http.StatusNotFound, CodePlaceNotFound, "Place not found", nil)
	case errors.Is(err, ErrDishNotFound):
		api.WriteError(w, http.StatusNotFound, CodeDishNotFound, "Dish not found", nil)
	case errors.Is(err, ErrIDMismatch):
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Payload id does not match URL id", nil)
	default:
		api.WriteInternalError(w)
	}
}

// --- Tour packages ---

// CreatePackage handles POST /api/v1/tourpackages
func (h *Handler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req TourPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	pkg, err := h.catalogService.CreatePackage(r.Context(), req)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"package": pkg})
}

// GetPackage handles GET /api/v1/tourpackages/{id}
func (h *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.catalogService.GetPackage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"package": pkg})
}

// ListPackages handles GET /api/v1/tourpackages
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.catalogService.ListPackages(r.Context())
	if err != nil {
		api.WriteInternalError(w)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"packages": packages})
}

// UpdatePackage handles PUT /api/v1/tourpackages/{id}
func (h *Handler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	var req TourPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	pkg, err := h.catalogService.UpdatePackage(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"package": pkg})
}

// DeletePackage handles DELETE /api/v1/tourpackages/{id}
func (h *Handler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeletePackage(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeCatalogError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"message": "Tour package deleted"})
}

// --- Places ---

// CreatePlace handles POST /api/v1/places
func (h *Handler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	place, err := h.catalogService.CreatePlace(r.Context(), req)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"place": place})
}

// GetPlace handles GET /api/v1/places/{id}
func (h *Handler) GetPlace(w http.ResponseWriter, r *http.Request) {
	place, err := h.catalogService.GetPlace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"place": place})
}

// ListPlaces handles GET /api/v1/places
func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.catalogService.ListPlaces(r.Context())
	if err != nil {
		api.WriteInternalError(w)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"places": places})
}

// UpdatePlace handles PUT /api/v1/places/{id}
func (h *Handler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	place, err := h.catalogService.UpdatePlace(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"place": place})
}

// DeletePlace handles DELETE /api/v1/places/{id}
func (h *Handler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeletePlace(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeCatalogError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"message": "Place deleted"})
}

// --- Dishes ---

// CreateDish handles POST /api/v1/dishes
func (h *Handler) CreateDish(w http.ResponseWriter, r *http.Request) {
	var req DishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	dish, err := h.catalogService.CreateDish(r.Context(), req)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"dish": dish})
}

// GetDish handles GET /api/v1/dishes/{id}
func (h *Handler) GetDish(w http.ResponseWriter, r *http.Request) {
	dish, err := h.catalogService.GetDish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"dish": dish})
}

// ListDishes handles GET /api/v1/dishes with optional ?category= filter
func (h *Handler) ListDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.catalogService.ListDishes(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		api.WriteInternalError(w)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"dishes": dishes})
}

// ListDishesByCategory handles GET /api/v1/dishes/category/{category}
func (h *Handler) ListDishesByCategory(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.catalogService.ListDishes(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		api.WriteInternalError(w)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"dishes": dishes})
}

// UpdateDish handles PUT /api/v1/dishes/{id}
func (h *Handler) UpdateDish(w http.ResponseWriter, r *http.Request) {
	var req DishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	dish, err := h.catalogService.UpdateDish(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"dish": dish})
}

// DeleteDish handles DELETE /api/v1/dishes/{id}
func (h *Handler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteDish(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeCatalogError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"message": "Dish deleted"})
}
