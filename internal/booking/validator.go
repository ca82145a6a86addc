package booking

import (
	"github.com/go-playground/validator/v10"
)

// Validator instance for request validation
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// GetValidator returns the validator instance
func GetValidator() *validator.Validate {
	return validate
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
