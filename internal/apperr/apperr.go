// Package apperr defines the small set of sentinel errors that classify
// failures across the engine, so the HTTP layer can map them to status
// codes without string-matching error messages.
package apperr

import "errors"

var (
	// ErrNotFound means the requested key, document, or index does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means caller-supplied input failed a structural check
	// (malformed id, oversized batch, empty body, and similar).
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized means the request's API key was missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrParse means a query string or stored value could not be parsed.
	ErrParse = errors.New("parse error")
)
