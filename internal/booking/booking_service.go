package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/metrics"
	"github.com/geovoyage/backend/internal/repository"
	"github.com/geovoyage/backend/internal/sanitizer"
)

// Service errors
var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidStatus      = errors.New("invalid booking status")
	ErrInvalidBookingData = errors.New("invalid booking data")
)

// Error codes for API responses
const (
	CodeBookingNotFound = "BOOKING_NOT_FOUND"
	CodeInvalidStatus   = "INVALID_STATUS"
)

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	CustomerName    string   `json:"customer_name" validate:"required,min=1,max=200"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	DestinationID   *string  `json:"destination_id,omitempty" validate:"omitempty,uuid"`
	PackageType     *string  `json:"package_type,omitempty" validate:"omitempty,max=100"`
	StartDate       *string  `json:"start_date,omitempty"`
	EndDate         *string  `json:"end_date,omitempty"`
	NumberOfGuests  *int     `json:"number_of_guests,omitempty" validate:"omitempty,min=1,max=100"`
	TotalPrice      *float64 `json:"total_price,omitempty" validate:"omitempty,min=0"`
	SpecialRequests *string  `json:"special_requests,omitempty" validate:"omitempty,max=2000"`
}

// UpdateStatusRequest represents the request to change a booking status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// BookingResponse represents booking data in responses
type BookingResponse struct {
	ID              string   `json:"id"`
	AccountID       *string  `json:"account_id,omitempty"`
	CustomerName    string   `json:"customer_name"`
	Email           string   `json:"email"`
	Phone           *string  `json:"phone,omitempty"`
	DestinationID   *string  `json:"destination_id,omitempty"`
	PackageType     *string  `json:"package_type,omitempty"`
	StartDate       *string  `json:"start_date,omitempty"`
	EndDate         *string  `json:"end_date,omitempty"`
	NumberOfGuests  *int     `json:"number_of_guests,omitempty"`
	TotalPrice      *float64 `json:"total_price,omitempty"`
	Status          string   `json:"status"`
	SpecialRequests *string  `json:"special_requests,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

const dateLayout = "2006-01-02"

// validStatuses is the set of accepted booking statuses
var validStatuses = map[string]bool{
	repository.BookingStatusPending:   true,
	repository.BookingStatusConfirmed: true,
	repository.BookingStatusCancelled: true,
	repository.BookingStatusCompleted: true,
}

// Service handles booking business logic
type Service struct {
	bookingRepo repository.BookingRepositoryInterface
	sanitizer   sanitizer.Sanitizer
	logger      *slog.Logger
}

// NewService creates a new booking Service instance
func NewService(bookingRepo repository.BookingRepositoryInterface, san sanitizer.Sanitizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		bookingRepo: bookingRepo,
		sanitizer:   san,
		logger:      logger,
	}
}

// Create stores a new booking with status Pending. accountID is optional,
// guests can book without an account.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest, accountID *uuid.UUID) (*BookingResponse, error) {
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidBookingData
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, ErrInvalidBookingData
	}

	var destinationID *uuid.UUID
	if req.DestinationID != nil && *req.DestinationID != "" {
		id, err := uuid.Parse(*req.DestinationID)
		if err != nil {
			return nil, ErrInvalidBookingData
		}
		destinationID = &id
	}

	booking := &repository.Booking{
		AccountID:      accountID,
		CustomerName:   s.sanitizer.SanitizeText(req.CustomerName),
		Email:          strings.TrimSpace(strings.ToLower(req.Email)),
		Phone:          req.Phone,
		DestinationID:  destinationID,
		PackageType:    req.PackageType,
		StartDate:      startDate,
		EndDate:        endDate,
		NumberOfGuests: req.NumberOfGuests,
		TotalPrice:     req.TotalPrice,
		Status:         repository.BookingStatusPending,
	}
	if req.SpecialRequests != nil {
		cleaned := s.sanitizer.SanitizeText(*req.SpecialRequests)
		booking.SpecialRequests = &cleaned
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingsCreatedTotal.Inc()
	s.logger.Info("Booking created", "booking_id", booking.ID, "email", booking.Email)

	resp := toBookingResponse(booking)
	return &resp, nil
}

// Get retrieves a single booking by ID
func (s *Service) Get(ctx context.Context, id string) (*BookingResponse, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	resp := toBookingResponse(booking)
	return &resp, nil
}

// List retrieves all bookings, newest first
func (s *Service) List(ctx context.Context) ([]BookingResponse, error) {
	bookings, err := s.bookingRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toBookingResponses(bookings), nil
}

// ListByEmail retrieves bookings for a customer email
func (s *Service) ListByEmail(ctx context.Context, email string) ([]BookingResponse, error) {
	bookings, err := s.bookingRepo.ListByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	return toBookingResponses(bookings), nil
}

// UpdateStatus changes the status of a booking
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) error {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return ErrBookingNotFound
	}

	if !validStatuses[status] {
		return ErrInvalidStatus
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, status); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		return err
	}

	metrics.BookingStatusChangesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Booking status updated", "booking_id", bookingID, "status", status)
	return nil
}

func toBookingResponses(bookings []repository.Booking) []BookingResponse {
	responses := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, toBookingResponse(&bookings[i]))
	}
	return responses
}

func toBookingResponse(b *repository.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID.String(),
		CustomerName:    b.CustomerName,
		Email:           b.Email,
		Phone:           b.Phone,
		PackageType:     b.PackageType,
		NumberOfGuests:  b.NumberOfGuests,
		TotalPrice:      b.TotalPrice,
		Status:          b.Status,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.AccountID != nil {
		id := b.AccountID.String()
		resp.AccountID = &id
	}
	if b.DestinationID != nil {
		id := b.DestinationID.String()
		resp.DestinationID = &id
	}
	if b.StartDate != nil {
		d := b.StartDate.Format(dateLayout)
		resp.StartDate = &d
	}
	if b.EndDate != nil {
		d := b.EndDate.Format(dateLayout)
		resp.EndDate = &d
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
