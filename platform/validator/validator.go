// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with domain rules registered.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("rut", validRUT)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// validRUT checks a Chilean national ID (RUT) with modulo-11 check digit.
// Accepts formats like "12.345.678-5" or "12345678-K".
func validRUT(fl validator.FieldLevel) bool {
	return IsValidRUT(fl.Field().String())
}

// IsValidRUT reports whether the given string is a structurally valid RUT.
func IsValidRUT(raw string) bool {
	cleaned := strings.ToUpper(strings.NewReplacer(".", "", "-", "", " ", "").Replace(raw))
	if len(cleaned) < 2 {
		return false
	}

	body := cleaned[:len(cleaned)-1]
	check := cleaned[len(cleaned)-1]

	for _, r := range body {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	n, err := strconv.Atoi(body)
	if err != nil {
		return false
	}

	sum := 0
	factor := 2
	for n > 0 {
		sum += (n % 10) * factor
		n /= 10
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	rest := 11 - (sum % 11)
	switch rest {
	case 11:
		return check == '0'
	case 10:
		return check == 'K'
	default:
		return check == byte('0'+rest)
	}
}
