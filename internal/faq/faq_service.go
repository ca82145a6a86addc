// Package faq manages the frequently-asked-questions catalog.
package faq

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/repository"
	"github.com/geovoyage/backend/internal/sanitizer"
)

// Service errors
var (
	ErrFAQNotFound = errors.New("faq not found")
	ErrIDMismatch  = errors.New("payload id does not match url id")
)

// Error codes for API responses
const (
	CodeFAQNotFound = "FAQ_NOT_FOUND"
)

// FAQRequest represents a create or update payload for an FAQ entry
type FAQRequest struct {
	ID           string  `json:"id,omitempty" validate:"omitempty,uuid"`
	Question     string  `json:"question" validate:"required,min=1,max=1000"`
	Answer       string  `json:"answer" validate:"required,min=1,max=10000"`
	Category     *string `json:"category,omitempty" validate:"omitempty,max=100"`
	DisplayOrder int     `json:"display_order" validate:"min=0"`
}

// Service handles FAQ business logic
type Service struct {
	faqRepo   repository.FAQRepository
	sanitizer sanitizer.Sanitizer
	logger    *slog.Logger
}

// NewService creates a new FAQ Service instance
func NewService(faqRepo repository.FAQRepository, san sanitizer.Sanitizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		faqRepo:   faqRepo,
		sanitizer: san,
		logger:    logger,
	}
}

// Create stores a new active FAQ entry
func (s *Service) Create(ctx context.Context, req FAQRequest) (*repository.FAQ, error) {
	faq := &repository.FAQ{
		Question:     s.sanitizer.SanitizeText(req.Question),
		Answer:       s.sanitizer.SanitizeRich(req.Answer),
		Category:     req.Category,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}

	if err := s.faqRepo.Create(ctx, faq); err != nil {
		return nil, err
	}

	s.logger.Info("FAQ created", "faq_id", faq.ID)
	return faq, nil
}

// Get retrieves an FAQ entry by ID, including inactive ones
func (s *Service) Get(ctx context.Context, id string) (*repository.FAQ, error) {
	faqID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrFAQNotFound
	}

	faq, err := s.faqRepo.GetByID(ctx, faqID)
	if err != nil {
		if errors.Is(err, repository.ErrFAQNotFound) {
			return nil, ErrFAQNotFound
		}
		return nil, err
	}
	return faq, nil
}

// List retrieves active FAQs for display, optionally filtered by category
func (s *Service) List(ctx context.Context, category string) ([]repository.FAQ, error) {
	if category != "" {
		return s.faqRepo.ListActiveByCategory(ctx, category)
	}
	return s.faqRepo.ListActive(ctx)
}

// Update replaces the fields of an existing FAQ entry
func (s *Service) Update(ctx context.Context, id string, req FAQRequest) (*repository.FAQ, error) {
	faqID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrFAQNotFound
	}
	if req.ID != "" && req.ID != id {
		return nil, ErrIDMismatch
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	faq := &repository.FAQ{
		ID:           faqID,
		Question:     s.sanitizer.SanitizeText(req.Question),
		Answer:       s.sanitizer.SanitizeRich(req.Answer),
		Category:     req.Category,
		DisplayOrder: req.DisplayOrder,
		IsActive:     existing.IsActive,
		CreatedAt:    existing.CreatedAt,
	}

	if err := s.faqRepo.Update(ctx, faq); err != nil {
		if errors.Is(err, repository.ErrFAQNotFound) {
			return nil, ErrFAQNotFound
		}
		return nil, err
	}

	return faq, nil
}

// Delete soft-deletes an FAQ entry so it no longer appears in listings
func (s *Service) Delete(ctx context.Context, id string) error {
	faqID, err := uuid.Parse(id)
	if err != nil {
		return ErrFAQNotFound
	}

	if err := s.faqRepo.SoftDelete(ctx, faqID); err != nil {
		if errors.Is(err, repository.ErrFAQNotFound) {
			return ErrFAQNotFound
		}
		return err
	}

	s.logger.Info("FAQ deleted", "faq_id", faqID)
	return nil
}
