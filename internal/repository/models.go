package repository

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a customer account in the database.
// Accounts are never physically deleted; deactivation clears is_active.
type Account struct {
	ID              uuid.UUID  `db:"id"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password_hash"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	Phone           *string    `db:"phone"`
	DateOfBirth     *time.Time `db:"date_of_birth"`
	ProfileImageURL *string    `db:"profile_image_url"`
	IsEmailVerified bool       `db:"is_email_verified"`
	IsActive        bool       `db:"is_active"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// Session represents an authentication session in the database.
// A session is valid iff is_active and the expiry has not passed. Expiry and
// revocation are both terminal.
type Session struct {
	ID        uuid.UUID `db:"id"`
	AccountID uuid.UUID `db:"account_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	IsActive  bool      `db:"is_active"`
	IPAddress *string   `db:"ip_address"`
	UserAgent *string   `db:"user_agent"`
	CreatedAt time.Time `db:"created_at"`
}

// AccountToken is a single-use expiring token tied to an account. Password
// reset and email verification tokens share this shape in separate tables.
type AccountToken struct {
	ID        uuid.UUID  `db:"id"`
	AccountID uuid.UUID  `db:"account_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// Redeemable reports whether the token can still be used at the given time
func (t *AccountToken) Redeemable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

// Booking represents a trip booking in the database
type Booking struct {
	ID              uuid.UUID  `db:"id"`
	AccountID       *uuid.UUID `db:"account_id"`
	CustomerName    string     `db:"customer_name"`
	Email           string     `db:"email"`
	Phone           *string    `db:"phone"`
	DestinationID   *uuid.UUID `db:"destination_id"`
	PackageType     *string    `db:"package_type"`
	StartDate       *time.Time `db:"start_date"`
	EndDate         *time.Time `db:"end_date"`
	NumberOfGuests  *int       `db:"number_of_guests"`
	TotalPrice      *float64   `db:"total_price"`
	Status          string     `db:"status"`
	SpecialRequests *string    `db:"special_requests"`
	CreatedAt       time.Time  `db:"created_at"`
}

// Booking status values
const (
	BookingStatusPending   = "Pending"
	BookingStatusConfirmed = "Confirmed"
	BookingStatusCancelled = "Cancelled"
	BookingStatusCompleted = "Completed"
)

// TourPackage represents a tour package catalog entry. Soft-deleted via is_active.
type TourPackage struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Description      *string   `db:"description" json:"description,omitempty"`
	Duration         *string   `db:"duration" json:"duration,omitempty"`
	Price            *float64  `db:"price" json:"price,omitempty"`
	MaxGuests        *int      `db:"max_guests" json:"max_guests,omitempty"`
	Difficulty       *string   `db:"difficulty" json:"difficulty,omitempty"`
	ImageURL         *string   `db:"image_url" json:"image_url,omitempty"`
	ImageKey         *string   `db:"image_key" json:"image_key,omitempty"`
	Highlights       []string  `db:"highlights" json:"highlights,omitempty"`
	IncludedServices *string   `db:"included_services" json:"included_services,omitempty"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Place represents a destination catalog entry
type Place struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	ImageKey    *string   `db:"image_key" json:"image_key,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Dish represents a local cuisine catalog entry
type Dish struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Category    *string   `db:"category" json:"category,omitempty"`
	Price       float64   `db:"price" json:"price"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	ImageKey    *string   `db:"image_key" json:"image_key,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FAQ represents a frequently-asked question. Soft-deleted via is_active.
type FAQ struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Question     string    `db:"question" json:"question"`
	Answer       string    `db:"answer" json:"answer"`
	Category     *string   `db:"category" json:"category,omitempty"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ContactMessage represents a message sent through the contact form
type ContactMessage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   *string   `db:"subject" json:"subject,omitempty"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewsletterSubscription represents a newsletter signup
type NewsletterSubscription struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	SubscribedAt time.Time `db:"subscribed_at" json:"subscribed_at"`
}
