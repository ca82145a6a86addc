package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/api"
	appctx "github.com/geovoyage/backend/internal/context"
)

// Handler handles HTTP requests for booking endpoints
type Handler struct {
	bookingService *Service
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService *Service) *Handler {
	return &Handler{
		bookingService: bookingService,
	}
}

// Create handles POST /api/v1/bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	// Bookings made while logged in are linked to the account
	var accountID *uuid.UUID
	if idStr, ok := appctx.ExtractAccountID(r.Context()); ok {
		if id, err := uuid.Parse(idStr); err == nil {
			accountID = &id
		}
	}

	booking, err := h.bookingService.Create(r.Context(), req, accountID)
	if err != nil {
		if errors.Is(err, ErrInvalidBookingData) {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid booking data", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"booking": booking,
	})
}

// Get handles GET /api/v1/bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	booking, err := h.bookingService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			api.WriteError(w, http.StatusNotFound, CodeBookingNotFound, "Booking not found", nil)
			return
		}
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"booking": booking,
	})
}

// List handles GET /api/v1/bookings with optional ?email= filter
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	var (
		bookings []BookingResponse
		err      error
	)
	if email != "" {
		bookings, err = h.bookingService.ListByEmail(r.Context(), email)
	} else {
		bookings, err = h.bookingService.List(r.Context())
	}
	if err != nil {
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
	})
}

// ListByCustomer handles GET /api/v1/bookings/customer/{email}
func (h *Handler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	bookings, err := h.bookingService.ListByEmail(r.Context(), email)
	if err != nil {
		api.WriteInternalError(w)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
	})
}

// UpdateStatus handles PUT /api/v1/bookings/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body", nil)
		return
	}

	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Request validation failed", validationDetails(err))
		return
	}

	if err := h.bookingService.UpdateStatus(r.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			api.WriteError(w, http.StatusNotFound, CodeBookingNotFound, "Booking not found", nil)
		case errors.Is(err, ErrInvalidStatus):
			api.WriteError(w, http.StatusBadRequest, CodeInvalidStatus, "Status must be one of Pending, Confirmed, Cancelled, Completed", nil)
		default:
			api.WriteInternalError(w)
		}
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "Booking status updated",
	})
}
