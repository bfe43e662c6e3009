package model

import "errors"

// Domain error taxonomy. Handlers translate these into HTTP statuses.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)
