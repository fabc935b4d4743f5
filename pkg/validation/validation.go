// Package validation wraps go-playground/validator with the domain rules for
// applicant identity fields: name charsets, the 13-digit South African ID
// format, and its Luhn check digit.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so error details match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("name_chars", func(fl validator.FieldLevel) bool {
		return NameCharsValid(fl.Field().String())
	})
	_ = v.RegisterValidation("said", func(fl validator.FieldLevel) bool {
		return CheckDigitValid(fl.Field().String())
	})
	return v
}

// FieldError describes a single violated constraint on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Validate runs struct validation and returns one FieldError per violated
// field. validator stops at the first failing tag per field, so a too-short
// ID number reports a length error and never reaches the checksum rule.
// Returns nil when the struct is valid.
func Validate(req any) []FieldError {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []FieldError{{Field: "body", Message: "invalid request body", Code: "value_error"}}
	}

	out := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, FieldError{
			Field:   "body." + fe.Field(),
			Message: fieldMessage(fe),
			Code:    fieldCode(fe.Tag()),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s characters", fe.Param())
	case "numeric":
		return "must contain only digits"
	case "name_chars":
		return "must contain only letters, spaces, hyphens, and apostrophes"
	case "said":
		return "Invalid ID number (checksum failed)"
	default:
		return "is invalid"
	}
}

func fieldCode(tag string) string {
	switch tag {
	case "required":
		return "missing"
	case "min":
		return "string_too_short"
	case "max":
		return "string_too_long"
	case "numeric", "name_chars":
		return "string_pattern"
	case "said":
		return "value_error"
	default:
		return "value_error"
	}
}

// NameCharsValid reports whether s contains only letters, spaces, hyphens,
// and apostrophes. Empty strings are handled by the required rule, not here.
func NameCharsValid(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == ' ' || r == '-' || r == '\'':
		default:
			return false
		}
	}
	return true
}

// CheckDigitValid validates the Luhn check digit of a 13-digit ID number:
// double alternating digits from the right, sum the digit-sums, and the
// total must be divisible by 10. Non-digit input fails.
func CheckDigitValid(s string) bool {
	if len(s) != 13 {
		return false
	}
	total := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		total += d
		double = !double
	}
	return total%10 == 0
}

// MaskID returns the ID number with everything after the first four digits
// replaced by asterisks, for use in logs. Short inputs are fully masked.
func MaskID(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}
