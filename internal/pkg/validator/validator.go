package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// Column widths of the stored fields, in characters.
const (
	MaxEmailLength       = 255
	MaxNameLength        = 100
	MaxCompanyNameLength = 255
	MaxCountryLength     = 100
)

// TooLong reports whether the trimmed value has more than max characters.
func TooLong(value string, max int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) > max
}

// CheckLength appends an error for field when value exceeds max characters.
func (v ValidationErrors) CheckLength(field, value string, max int) ValidationErrors {
	if TooLong(value, max) {
		return append(v, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must not exceed %d characters", field, max),
		})
	}
	return v
}

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidUUID accepts any RFC 4122 UUID in its canonical textual form.
func IsValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

var currencyCodeRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)

// IsCurrencyCodeShape checks for three ASCII letters.
func IsCurrencyCodeShape(code string) bool {
	return currencyCodeRegex.MatchString(strings.TrimSpace(code))
}
