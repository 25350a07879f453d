package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Services wrap them with `%w` and the API layer uses `errors.Is()` to map them
// to HTTP responses, so business logic never talks in status codes.

var (
	// ErrNotFound signifies that a requested chat room, session or message
	// could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data failed validation, e.g. a blank
	// question or a retry of a backend that is not part of the room.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that the operation conflicts with the current
	// state, e.g. asking a new question while a round is still streaming.
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConflict = errors.New("resource conflict")

	// ErrMisconfigured signifies that an enabled backend has no platform
	// settings or no registered adapter. It is a setup bug, not a user error.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrMisconfigured = errors.New("backend misconfigured")

	// ErrInternal signifies an unexpected error on the server. This is a generic
	// error used to prevent leaking sensitive implementation details to the client.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")
)
