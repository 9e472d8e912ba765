// Package service provides business logic for the application.
package service

import "errors"

// Service errors form a closed taxonomy: validation, unauthorized,
// not-found. Anything else bubbling out of a service is internal and
// must never be shown to the caller verbatim.
var (
	// Validation
	ErrMissingFields      = errors.New("required fields missing")
	ErrInvalidDate        = errors.New("invalid date format")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrImageTooLarge      = errors.New("image exceeds maximum upload size")
	ErrBadImage           = errors.New("unusable image upload")

	// Not-found
	ErrEntryNotFound    = errors.New("entry not found")
	ErrCategoryNotFound = errors.New("category not found")

	// Unauthorized
	ErrNotOwner = errors.New("entry belongs to another user")
)

// IsValidation reports whether the error is a user-correctable
// validation failure, as opposed to not-found, unauthorized or internal.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrMissingFields, ErrInvalidDate, ErrUsernameTaken,
		ErrEmailTaken, ErrInvalidCredentials, ErrImageTooLarge, ErrBadImage,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
