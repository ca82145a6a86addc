package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/geovoyage/backend/internal/repository"
	"github.com/geovoyage/backend/internal/sanitizer"
)

// Validator instance for request validation
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// TourPackageRequest represents a create or update payload for a tour
// package. On update the optional ID must match the URL.
type TourPackageRequest struct {
	ID               string   `json:"id,omitempty" validate:"omitempty,uuid"`
	Name             string   `json:"name" validate:"required,min=1,max=200"`
	Description      *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Duration         *string  `json:"duration,omitempty" validate:"omitempty,max=100"`
	Price            *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	MaxGuests        *int     `json:"max_guests,omitempty" validate:"omitempty,min=1"`
	Difficulty       *string  `json:"difficulty,omitempty" validate:"omitempty,max=50"`
	ImageURL         *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	ImageKey         *string  `json:"image_key,omitempty" validate:"omitempty,max=500"`
	Highlights       []string `json:"highlights,omitempty" validate:"omitempty,dive,max=300"`
	IncludedServices *string  `json:"included_services,omitempty" validate:"omitempty,max=5000"`
}

func (r TourPackageRequest) toModel(san sanitizer.Sanitizer) *repository.TourPackage {
	pkg := &repository.TourPackage{
		Name:       san.SanitizeText(r.Name),
		Duration:   r.Duration,
		Price:      r.Price,
		MaxGuests:  r.MaxGuests,
		Difficulty: r.Difficulty,
		ImageURL:   r.ImageURL,
		ImageKey:   r.ImageKey,
	}
	if r.Description != nil {
		cleaned := san.SanitizeRich(*r.Description)
		pkg.Description = &cleaned
	}
	if r.IncludedServices != nil {
		cleaned := san.SanitizeRich(*r.IncludedServices)
		pkg.IncludedServices = &cleaned
	}
	for _, h := range r.Highlights {
		pkg.Highlights = append(pkg.Highlights, san.SanitizeText(h))
	}
	return pkg
}

// PlaceRequest represents a create or update payload for a place
type PlaceRequest struct {
	ID          string  `json:"id,omitempty" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	ImageKey    *string `json:"image_key,omitempty" validate:"omitempty,max=500"`
}

func (r PlaceRequest) toModel(san sanitizer.Sanitizer) *repository.Place {
	return &repository.Place{
		Name:        san.SanitizeText(r.Name),
		Description: san.SanitizeRich(r.Description),
		ImageURL:    r.ImageURL,
		ImageKey:    r.ImageKey,
	}
}

// DishRequest represents a create or update payload for a dish
type DishRequest struct {
	ID          string  `json:"id,omitempty" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Price       float64 `json:"price" validate:"min=0"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	ImageKey    *string `json:"image_key,omitempty" validate:"omitempty,max=500"`
}

func (r DishRequest) toModel(san sanitizer.Sanitizer) *repository.Dish {
	dish := &repository.Dish{
		Name:     san.SanitizeText(r.Name),
		Category: r.Category,
		Price:    r.Price,
		ImageURL: r.ImageURL,
		ImageKey: r.ImageKey,
	}
	if r.Description != nil {
		cleaned := san.SanitizeRich(*r.Description)
		dish.Description = &cleaned
	}
	return dish
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
