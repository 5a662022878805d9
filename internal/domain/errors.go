package domain

import "errors"

// Sentinel errors shared across layers. Repositories and services wrap
// them with context; handlers test with errors.Is to pick a status.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("booking dates overlap with an existing reservation")
	ErrInvalid      = errors.New("invalid input")
	ErrEmailTaken   = errors.New("email is already registered")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrForbidden    = errors.New("insufficient privileges")
)
