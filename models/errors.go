package models

import "errors"

var (
	// ErrNotFound is returned when a referenced complaint, cluster or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation wraps every malformed-input failure.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when the caller lacks ownership or role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition is returned for status changes that would regress.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrUnknownStatus is returned when a stored status matches no known vocabulary.
	ErrUnknownStatus = errors.New("unknown status")
)
