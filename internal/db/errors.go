package db

import "errors"

// Sentinel errors surfaced by the repositories. The API layer is the only
// place that maps these to HTTP status codes.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)
