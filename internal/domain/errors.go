package domain

import "errors"

// Sentinel errors for the application. ErrNotFound deliberately covers both
// "resource does not exist" and "caller is not a participant", so membership
// existence is never leaked through error responses.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthorized    = errors.New("unauthorized access")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("resource already exists")
	ErrInternal        = errors.New("internal server error")
)
