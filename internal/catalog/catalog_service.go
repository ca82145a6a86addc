// Package catalog manages the public travel catalog: tour packages,
// destination places, and local dishes.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/repository"
	"github.com/geovoyage/backend/internal/sanitizer"
	"github.com/geovoyage/backend/internal/storage"
)

// Service errors
var (
	ErrPackageNotFound = errors.New("tour package not found")
	ErrPlaceNotFound   = errors.New("place not found")
	ErrDishNotFound    = errors.New("dish not found")
	ErrIDMismatch      = errors.New("payload id does not match url id")
)

// Error codes for API responses
const (
	CodePackageNotFound = "PACKAGE_NOT_FOUND"
	CodePlaceNotFound   = "PLACE_NOT_FOUND"
	CodeDishNotFound    = "DISH_NOT_FOUND"
)

// Service handles catalog business logic. The storage service is
// optional, image cleanup is skipped when it is nil.
type Service struct {
	packageRepo    repository.TourPackageRepository
	placeRepo      repository.PlaceRepository
	dishRepo       repository.DishRepository
	storageService *storage.StorageService
	sanitizer      sanitizer.Sanitizer
	logger         *slog.Logger
}

// NewService creates a new catalog Service instance
func NewService(
	packageRepo repository.TourPackageRepository,
	placeRepo repository.PlaceRepository,
	dishRepo repository.DishRepository,
	storageService *storage.StorageService,
	san sanitizer.Sanitizer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		packageRepo:    packageRepo,
		placeRepo:      placeRepo,
		dishRepo:       dishRepo,
		storageService: storageService,
		sanitizer:      san,
		logger:         logger,
	}
}

// deleteImage removes a stored image, logging on failure. The catalog
// record change has already happened, leftover objects are acceptable.
func (s *Service) deleteImage(ctx context.Context, imageKey *string) {
	if imageKey == nil || *imageKey == "" || !s.storageService.Enabled() {
		return
	}
	if err := s.storageService.DeleteObject(ctx, *imageKey); err != nil {
		s.logger.Warn("Failed to delete catalog image", "key", *imageKey, "error", err)
	}
}

// --- Tour packages ---

// CreatePackage stores a new tour package
func (s *Service) CreatePackage(ctx context.Context, req TourPackageRequest) (*repository.TourPackage, error) {
	pkg := req.toModel(s.sanitizer)
	pkg.IsActive = true

	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		return nil, err
	}

	s.logger.Info("Tour package created", "package_id", pkg.ID, "name", pkg.Name)
	return pkg, nil
}

// GetPackage retrieves a tour package by ID
func (s *Service) GetPackage(ctx context.Context, id string) (*repository.TourPackage, error) {
	pkgID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrPackageNotFound
	}

	pkg, err := s.packageRepo.GetByID(ctx, pkgID)
	if err != nil {
		if errors.Is(err, repository.ErrPackageNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

// ListPackages retrieves all active tour packages
func (s *Service) ListPackages(ctx context.Context) ([]repository.TourPackage, error) {
	return s.packageRepo.ListActive(ctx)
}

// UpdatePackage replaces the fields of an existing tour package. When the
// payload carries an ID it must match the URL ID.
func (s *Service) UpdatePackage(ctx context.Context, id string, req TourPackageRequest) (*repository.TourPackage, error) {
	pkgID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrPackageNotFound
	}
	if req.ID != "" && req.ID != id {
		return nil, ErrIDMismatch
	}

	existing, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	pkg := req.toModel(s.sanitizer)
	pkg.ID = pkgID
	pkg.IsActive = existing.IsActive
	pkg.CreatedAt = existing.CreatedAt

	if err := s.packageRepo.Update(ctx, pkg); err != nil {
		if errors.Is(err, repository.ErrPackageNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}

	// Replacing the image releases the old object
	if existing.ImageKey != nil && (pkg.ImageKey == nil || *pkg.ImageKey != *existing.ImageKey) {
		s.deleteImage(ctx, existing.ImageKey)
	}

	return pkg, nil
}

// DeletePackage soft-deletes a tour package and releases its image
func (s *Service) DeletePackage(ctx context.Context, id string) error {
	pkgID, err := uuid.Parse(id)
	if err != nil {
		return ErrPackageNotFound
	}

	deleted, err := s.packageRepo.SoftDelete(ctx, pkgID)
	if err != nil {
		if errors.Is(err, repository.ErrPackageNotFound) {
			return ErrPackageNotFound
		}
		return err
	}

	s.deleteImage(ctx, deleted.ImageKey)
	s.logger.Info("Tour package deleted", "package_id", pkgID)
	return nil
}

// --- Places ---

// CreatePlace stores a new destination place
func (s *Service) CreatePlace(ctx context.Context, req PlaceRequest) (*repository.Place, error) {
	place := req.toModel(s.sanitizer)

	if err := s.placeRepo.Create(ctx, place); err != nil {
		return nil, err
	}

	s.logger.Info("Place created", "place_id", place.ID, "name", place.Name)
	return place, nil
}

// GetPlace retrieves a place by ID
func (s *Service) GetPlace(ctx context.Context, id string) (*repository.Place, error) {
	placeID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrPlaceNotFound
	}

	place, err := s.placeRepo.GetByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}
	return place, nil
}

// ListPlaces retrieves all places
func (s *Service) ListPlaces(ctx context.Context) ([]repository.Place, error) {
	return s.placeRepo.List(ctx)
}

// UpdatePlace replaces the fields of an existing place
func (s *Service) UpdatePlace(ctx context.Context, id string, req PlaceRequest) (*repository.Place, error) {
	placeID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrPlaceNotFound
	}
	if req.ID != "" && req.ID != id {
		return nil, ErrIDMismatch
	}

	existing, err := s.GetPlace(ctx, id)
	if err != nil {
		return nil, err
	}

	place := req.toModel(s.sanitizer)
	place.ID = placeID
	place.CreatedAt = existing.CreatedAt

	if err := s.placeRepo.Update(ctx, place); err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}

	if existing.ImageKey != nil && (place.ImageKey == nil || *place.ImageKey != *existing.ImageKey) {
		s.deleteImage(ctx, existing.ImageKey)
	}

	return place, nil
}

// DeletePlace hard-deletes a place and releases its image
func (s *Service) DeletePlace(ctx context.Context, id string) error {
	placeID, err := uuid.Parse(id)
	if err != nil {
		return ErrPlaceNotFound
	}

	deleted, err := s.placeRepo.Delete(ctx, placeID)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return ErrPlaceNotFound
		}
		return err
	}

	s.deleteImage(ctx, deleted.ImageKey)
	s.logger.Info("Place deleted", "place_id", placeID)
	return nil
}

// --- Dishes ---

// CreateDish stores a new dish
func (s *Service) CreateDish(ctx context.Context, req DishRequest) (*repository.Dish, error) {
	dish := req.toModel(s.sanitizer)

	if err := s.dishRepo.Create(ctx, dish); err != nil {
		return nil, err
	}

	s.logger.Info("Dish created", "dish_id", dish.ID, "name", dish.Name)
	return dish, nil
}

// GetDish retrieves a dish by ID
func (s *Service) GetDish(ctx context.Context, id string) (*repository.Dish, error) {
	dishID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrDishNotFound
	}

	dish, err := s.dishRepo.GetByID(ctx, dishID)
	if err != nil {
		if errors.Is(err, repository.ErrDishNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}
	return dish, nil
}

// ListDishes retrieves dishes, optionally filtered by category
// (case-insensitive)
func (s *Service) ListDishes(ctx context.Context, category string) ([]repository.Dish, error) {
	if category != "" {
		return s.dishRepo.ListByCategory(ctx, category)
	}
	return s.dishRepo.List(ctx)
}

// UpdateDish replaces the fields of an existing dish
func (s *Service) UpdateDish(ctx context.Context, id string, req DishRequest) (*repository.Dish, error) {
	dishID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrDishNotFound
	}
	if req.ID != "" && req.ID != id {
		return nil, ErrIDMismatch
	}

	existing, err := s.GetDish(ctx, id)
	if err != nil {
		return nil, err
	}

	dish := req.toModel(s.sanitizer)
	dish.ID = dishID
	dish.CreatedAt = existing.CreatedAt

	if err := s.dishRepo.Update(ctx, dish); err != nil {
		if errors.Is(err, repository.ErrDishNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}

	if existing.ImageKey != nil && (dish.ImageKey == nil || *dish.ImageKey != *existing.ImageKey) {
		s.deleteImage(ctx, existing.ImageKey)
	}

	return dish, nil
}

// DeleteDish hard-deletes a dish and releases its image
func (s *Service) DeleteDish(ctx context.Context, id string) error {
	dishID, err := uuid.Parse(id)
	if err != nil {
		return ErrDishNotFound
	}

	deleted, err := s.dishRepo.Delete(ctx, dishID)
	if err != nil {
		if errors.Is(err, repository.ErrDishNotFound) {
			return ErrDishNotFound
		}
		return err
	}

	s.deleteImage(ctx, deleted.ImageKey)
	s.logger.Info("Dish deleted", "dish_id", dishID)
	return nil
}
