package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Booking repository errors
var (
	ErrBookingNotFound = errors.New("booking not found")
)

// BookingRepositoryInterface defines the interface for booking data access
type BookingRepositoryInterface interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	List(ctx context.Context) ([]Booking, error)
	ListByEmail(ctx context.Context, email string) ([]Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// BookingRepo implements BookingRepositoryInterface using PostgreSQL
type BookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepo creates a new BookingRepo instance
func NewBookingRepo(db *sqlx.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// Create inserts a new booking with status Pending
func (r *BookingRepo) Create(ctx context.Context, booking *Booking) error {
	query := `
		INSERT INTO bookings (account_id, customer_name, email, phone, destination_id, package_type,
			start_date, end_date, number_of_guests, total_price, status, special_requests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	if booking.Status == "" {
		booking.Status = BookingStatusPending
	}

	return r.db.QueryRowxContext(ctx, query,
		booking.AccountID,
		booking.CustomerName,
		booking.Email,
		booking.Phone,
		booking.DestinationID,
		booking.PackageType,
		booking.StartDate,
		booking.EndDate,
		booking.NumberOfGuests,
		booking.TotalPrice,
		booking.Status,
		booking.SpecialRequests,
	).Scan(&booking.ID, &booking.CreatedAt)
}

// GetByID retrieves a booking by its ID
func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := `
		SELECT id, account_id, customer_name, email, phone, destination_id, package_type,
			start_date, end_date, number_of_guests, total_price, status, special_requests, created_at
		FROM bookings
		WHERE id = $1
	`

	booking := &Booking{}
	if err := r.db.GetContext(ctx, booking, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// List retrieves all bookings, newest first
func (r *BookingRepo) List(ctx context.Context) ([]Booking, error) {
	query := `
		SELECT id, account_id, customer_name, email, phone, destination_id, package_type,
			start_date, end_date, number_of_guests, total_price, status, special_requests, created_at
		FROM bookings
		ORDER BY created_at DESC
	`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByEmail retrieves bookings made with a customer email (case-insensitive), newest first
func (r *BookingRepo) ListByEmail(ctx context.Context, email string) ([]Booking, error) {
	query := `
		SELECT id, account_id, customer_name, email, phone, destination_id, package_type,
			start_date, end_date, number_of_guests, total_price, status, special_requests, created_at
		FROM bookings
		WHERE LOWER(email) = LOWER($1)
		ORDER BY created_at DESC
	`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, email); err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateStatus sets the booking status
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE bookings SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}
