// Package validator wraps go-playground/validator with the request-level
// checks the API needs.
package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates request structs and single values.
type Validator struct {
	cli *validator.Validate
}

// ValidationError represents an error encountered during validation of a
// request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New initializes and returns a new Validator.
func New() *Validator {
	return &Validator{
		cli: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (v *Validator) formatErrors(err error) []ValidationError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Field: "", Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "latitude":
		return "must be a valid latitude"
	case "longitude":
		return "must be a valid longitude"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation on %q", fe.Tag())
	}
}

// ValidateStruct validates the provided struct against its validate tags and
// returns any field errors.
func (v *Validator) ValidateStruct(s interface{}) []ValidationError {
	if err := v.cli.Struct(s); err != nil {
		return v.formatErrors(err)
	}
	return nil
}

// Validate checks a single value against the given validation tag.
func (v *Validator) Validate(value interface{}, tag string) []ValidationError {
	if err := v.cli.Var(value, tag); err != nil {
		return v.formatErrors(err)
	}
	return nil
}
