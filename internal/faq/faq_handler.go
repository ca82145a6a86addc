package faq

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/geovoyage/backend/internal/api"
)

// Validator instance for request validation
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Handler handles HTTP requests for FAQ endpoints
type Handler struct {
	faqService *Service
}

// NewHandler creates a new Handler instance
func NewHandler(faqService *Service) *Handler {
	return &Handler{
		faqService: faqService,
	}
}

func (h *Handler) writeFAQError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrFAQNotFound):
		api.WriteError(w, http.StatusNotFound, CodeFAQNotFound, "FAQ not found", nil)
	case errors.Is(err, ErrIDMismatch):
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Payload id does not match URL id", nil)
	default:
		api.WriteInternalError(w)
	}
}

// Create handles POST /api/v1/faq
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req FAQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	faq, err := h.faqService.Create(r.Context(), req)
	if err != nil {
		h.writeFAQError(w, err)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"faq": faq})
}

// Get handles GET /api/v1/faq/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	faq, err := h.faqService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFAQError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"faq": faq})
}

// List handles GET /api/v1/faq with optional ?category= filter
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.faqService.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		api.WriteInternalError(w)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"faqs": faqs})
}

// ListByCategory handles GET /api/v1/faq/category/{category}
func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.faqService.List(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		api.WriteInternalError(w)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"faqs": faqs})
}

// Update handles PUT /api/v1/faq/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req FAQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	faq, err := h.faqService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeFAQError(w, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"faq": faq})
}

// Delete handles DELETE /api/v1/faq/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.faqService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeFAQError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"message": "FAQ deleted"})
}

// validationDetails converts validator errors into the response details map
func validationDetails(err error) map[string][]string {
	details := make(map[string][]string)
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		details["request"] = append(details["request"], "invalid request")
		return details
	}
	for _, fieldErr := range validationErrs {
		field := fieldErr.Field()
		details[field] = append(details[field], "failed validation on "+fieldErr.Tag())
	}
	return details
}

// RegisterRoutes registers FAQ routes with the Chi router.
// Reads are public, writes require authentication.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/faq", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Get("/category/{category}", handler.ListByCategory)
		r.Get("/{id}", handler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", handler.Create)
			r.Put("/{id}", handler.Update)
			r.Delete("/{id}", handler.Delete)
		})
	})
}
