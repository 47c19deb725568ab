// Package common defines shared constants and sentinel errors used across
// the web site, the console client and the API client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Backend answers.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// Transport failure or 5xx.
	ErrUnavailable = errors.New("backend unavailable")

	// Input rejected before it reached the backend.
	ErrValidation = errors.New("validation error")
)
