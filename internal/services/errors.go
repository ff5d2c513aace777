// Package services implements the business logic of the portal data layer:
// the application/upload façade, the ticket subsystem, and the rating
// subsystem. This file centralizes service-level error values so they can be
// consistently returned by service methods and checked by callers.
//
// These errors are for internal use by the service layer; translation into
// user-facing messages or HTTP status codes happens at the handler layer.
package services

import "errors"

// Validation errors (missing or malformed caller input).
var (
	// ErrUsernameRequired is returned when an application submission is
	// missing the in-game username.
	ErrUsernameRequired = errors.New("game username is required")

	// ErrInvalidUsername is returned when the in-game username does not
	// satisfy the configured length or character-set rules.
	ErrInvalidUsername = errors.New("game username is invalid")

	// ErrUploadInvalid is returned when an upload submission is missing its
	// name or description.
	ErrUploadInvalid = errors.New("upload name and description are required")

	// ErrTicketInvalid is returned when a ticket is created without a title
	// or description.
	ErrTicketInvalid = errors.New("ticket title and description are required")

	// ErrInvalidTheme is returned when a theme outside the fixed set
	// (dark, light) is requested.
	ErrInvalidTheme = errors.New("theme must be dark or light")
)

// Lookup and state errors.
var (
	// ErrTicketNotFound indicates that no ticket exists with the given id.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrInvalidTicketStatus is returned when a status update names a value
	// outside the fixed ticket status set.
	ErrInvalidTicketStatus = errors.New("invalid ticket status")
)

// ErrStorageFailed is returned when the underlying store rejected a write.
// Persistence is best-effort: callers report the failure and carry on, the
// process never crashes over it.
var ErrStorageFailed = errors.New("storage write failed")
