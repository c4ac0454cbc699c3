package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted date format.
const DateLayout = "2006-01-02"

// ValidationError represents a structured validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects multiple field errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return ve != nil && len(ve.Errors) > 0
}

// Has reports whether field already carries an error.
func (ve *ValidationErrors) Has(field string) bool {
	for _, e := range ve.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// RequireField checks a required string field is non-empty.
func RequireField(ve *ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// ValidateEnum checks a field is one of allowed values.
func ValidateEnum(ve *ValidationErrors, field, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	ve.Add(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// ValidateDate checks a field is a valid date (YYYY-MM-DD).
func ValidateDate(ve *ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if !IsDate(value) {
		ve.Add(field, "must be a valid date (YYYY-MM-DD)")
	}
}

// IsDate reports whether value parses as YYYY-MM-DD.
func IsDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

// ValidateMaxLength checks string doesn't exceed max length.
func ValidateMaxLength(ve *ValidationErrors, field, value string, max int) {
	if len([]rune(value)) > max {
		ve.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// ValidateSapID checks value is exactly digits decimal digits.
func ValidateSapID(ve *ValidationErrors, field, value string, digits int) {
	if value == "" {
		return
	}
	if len(value) != digits {
		ve.Add(field, fmt.Sprintf("must be exactly %d digits", digits))
		return
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			ve.Add(field, "must contain digits only")
			return
		}
	}
}

// ParseInt parses an integer field, recording an error on failure.
func ParseInt(ve *ValidationErrors, field, value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil {
		ve.Add(field, "must be a whole number")
		return 0, false
	}
	return n, true
}

// ParseDecimal parses a decimal field, recording an error on failure.
func ParseDecimal(ve *ValidationErrors, field, value string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		ve.Add(field, "must be a number")
		return decimal.Zero, false
	}
	return d, true
}

// ValidateNonNegativeDecimal checks a field is >= 0.
func ValidateNonNegativeDecimal(ve *ValidationErrors, field string, value decimal.Decimal) {
	if value.IsNegative() {
		ve.Add(field, "must be non-negative")
	}
}
