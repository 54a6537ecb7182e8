package apperrors

import (
	"errors"
	"strings"
)

var (
	// ErrServiceUnavailable replaces any database-connectivity failure so
	// internals never leak to a guest.
	ErrServiceUnavailable = errors.New("service temporarily unavailable, please try again in a moment")

	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("invalid input")
)

// Connectivity failures are detected by matching the error text against a
// fixed keyword list. Crude, but these messages come from the driver and the
// hosting stack, not from us.
var connectivityKeywords = []string{
	"connection refused",
	"econnrefused",
	"password authentication failed",
	"database is locked",
	"no such host",
	"neon.tech",
}

// Classify rewrites database-connectivity errors into the fixed user-safe
// error and passes every other error through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	message := strings.ToLower(err.Error())
	for _, keyword := range connectivityKeywords {
		if strings.Contains(message, keyword) {
			return ErrServiceUnavailable
		}
	}
	return err
}

// IsUserSafe reports whether the error's message can be shown verbatim.
func IsUserSafe(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrValidation)
}
