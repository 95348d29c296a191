// Package common defines shared constants and sentinel errors used across
// the server and worker components. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Validation errors. Recoverable by the caller correcting the request.
	ErrInvalidInput     = errors.New("invalid input")
	ErrMissingName      = errors.New("missing name")
	ErrMissingData      = errors.New("missing data")
	ErrInvalidKind      = errors.New("missing or invalid type")
	ErrParentNotFound   = errors.New("parent not found")
	ErrParentNotAFolder = errors.New("parent is not a folder")

	// Auth errors. A single value covers both missing credentials and
	// wrong credentials so callers cannot enumerate accounts.
	ErrUnauthorized = errors.New("unauthorized")

	// A folder has no raw bytes to serve.
	ErrNotReadable = errors.New("not readable")

	// Dependency and flow-control errors.
	ErrUnavailable = errors.New("unavailable")
	ErrInternal    = errors.New("internal error")

	// Pipeline errors.
	ErrMalformedJob = errors.New("malformed job")
)
