package contact

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

// Handler handles HTTP requests for contact endpoints
type Handler struct {
	contactService *Service
}

// NewHandler creates a new Handler instance
func NewHandler(contactService *Service) *Handler {
	return &Handler{
		contactService: contactService,
	}
}

// SubmitMessage handles POST /api/v1/contact/message
func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	msg, err := h.contactService.SubmitMessage(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid email format", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"message": msg})
}

// ListMessages handles GET /api/v1/contact/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.contactService.ListMessages(r.Context())
	if err != nil {
		api.WriteInternalError(w)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// MarkMessageRead handles PUT /api/v1/contact/messages/{id}/read
func (h *Handler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := h.contactService.MarkMessageRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			api.WriteError(w, http.StatusNotFound, CodeMessageNotFound, "Contact message not found", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"message": "Message marked as read"})
}

// Subscribe handles POST /api/v1/contact/newsletter
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	sub, err := h.contactService.Subscribe(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail):
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid email format", nil)
		case errors.Is(err, ErrAlreadySubscribed):
			api.WriteError(w, http.StatusConflict, CodeAlreadySubscribed, "This email is already subscribed", nil)
		default:
			api.WriteInternalError(w)
		}
		return
	}

	api.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"subscription": sub})
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

// RegisterRoutes registers contact and newsletter routes with the Chi
// router. Submitting a message and subscribing are public, reading and
// managing messages require authentication.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/contact", func(r chi.Router) {
		r.Post("/message", handler.SubmitMessage)
		r.Post("/newsletter", handler.Subscribe)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/messages", handler.ListMessages)
			r.Put("/messages/{id}/read", handler.MarkMessageRead)
		})
	})
}
