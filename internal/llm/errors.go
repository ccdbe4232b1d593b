package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Category classifies a failed boundary call by its HTTP status. The composer
// and store layers treat failures as opaque; handlers use the category to pick
// a user-facing notice.
type Category string

const (
	CategoryInvalidKey   Category = "invalid_credential"
	CategoryAccessDenied Category = "access_denied"
	CategoryTooLarge     Category = "payload_too_large"
	CategoryRateLimited  Category = "rate_limited"
	CategoryUnknown      Category = "unknown"
)

// Error is a categorized boundary failure.
type Error struct {
	Category   Category
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("completion call failed (%s): %v", e.Category, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the short human-readable notice for the category.
func (e *Error) Message() string {
	switch e.Category {
	case CategoryInvalidKey:
		return "Invalid API key. Please check your OpenRouter API key."
	case CategoryAccessDenied:
		return "Access to the requested model was denied."
	case CategoryTooLarge:
		return "Request too large. Please shorten your input."
	case CategoryRateLimited:
		return "Rate limit exceeded. Please try again in a few minutes."
	default:
		return "The completion request failed. Please try again."
	}
}

// fromStatus wraps err with the category for an HTTP status.
func fromStatus(status int, err error) *Error {
	category := CategoryUnknown
	switch status {
	case http.StatusUnauthorized:
		category = CategoryInvalidKey
	case http.StatusForbidden:
		category = CategoryAccessDenied
	case http.StatusRequestEntityTooLarge:
		category = CategoryTooLarge
	case http.StatusTooManyRequests:
		category = CategoryRateLimited
	}
	return &Error{Category: category, StatusCode: status, Err: err}
}

// CategoryOf extracts the failure category from err, or CategoryUnknown.
func CategoryOf(err error) Category {
	var berr *Error
	if errors.As(err, &berr) {
		return berr.Category
	}
	return CategoryUnknown
}
