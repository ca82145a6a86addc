// Package contact handles contact form messages and newsletter
// subscriptions.
package contact

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/repository"
	"github.com/geovoyage/backend/internal/sanitizer"
)

// Service errors
var (
	ErrMessageNotFound   = errors.New("contact message not found")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrAlreadySubscribed = errors.New("email already subscribed")
)

// Error codes for API responses
const (
	CodeMessageNotFound   = "MESSAGE_NOT_FOUND"
	CodeAlreadySubscribed = "ALREADY_SUBSCRIBED"
)

// MessageRequest represents the contact form payload
type MessageRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=200"`
	Email   string  `json:"email" validate:"required,email"`
	Subject *string `json:"subject,omitempty" validate:"omitempty,max=300"`
	Message string  `json:"message" validate:"required,min=1,max=5000"`
}

// SubscribeRequest represents the newsletter signup payload
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Service handles contact business logic
type Service struct {
	contactRepo repository.ContactRepository
	sanitizer   sanitizer.Sanitizer
	logger      *slog.Logger
}

// NewService creates a new contact Service instance
func NewService(contactRepo repository.ContactRepository, san sanitizer.Sanitizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		contactRepo: contactRepo,
		sanitizer:   san,
		logger:      logger,
	}
}

// SubmitMessage stores a contact form message. All free-text fields are
// stripped of markup before storage.
func (s *Service) SubmitMessage(ctx context.Context, req MessageRequest) (*repository.ContactMessage, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	msg := &repository.ContactMessage{
		Name:    s.sanitizer.SanitizeText(req.Name),
		Email:   email,
		Message: s.sanitizer.SanitizeText(req.Message),
	}
	if req.Subject != nil {
		cleaned := s.sanitizer.SanitizeText(*req.Subject)
		msg.Subject = &cleaned
	}

	if err := s.contactRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("Contact message received", "message_id", msg.ID)
	return msg, nil
}

// ListMessages retrieves all contact messages, newest first
func (s *Service) ListMessages(ctx context.Context) ([]repository.ContactMessage, error) {
	return s.contactRepo.ListMessages(ctx)
}

// MarkMessageRead flags a contact message as read
func (s *Service) MarkMessageRead(ctx context.Context, id string) error {
	msgID, err := uuid.Parse(id)
	if err != nil {
		return ErrMessageNotFound
	}

	if err := s.contactRepo.MarkMessageRead(ctx, msgID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}

// Subscribe signs an email up for the newsletter. A previously
// unsubscribed email is reactivated, an active one is rejected.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (*repository.NewsletterSubscription, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	existing, err := s.contactRepo.GetSubscriptionByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.IsActive {
			return nil, ErrAlreadySubscribed
		}
		if err := s.contactRepo.ReactivateSubscription(ctx, existing.ID); err != nil {
			return nil, err
		}
		sub, err := s.contactRepo.GetSubscriptionByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Newsletter subscription reactivated", "subscription_id", sub.ID)
		return sub, nil
	}

	sub := &repository.NewsletterSubscription{Email: email}
	if err := s.contactRepo.CreateSubscription(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrAlreadySubscribed) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	s.logger.Info("Newsletter subscription created", "subscription_id", sub.ID)
	return sub, nil
}
