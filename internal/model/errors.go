package model

import "errors"

// ErrAuthFailed is returned when the backend reports that its credential to
// the PR provider is missing or invalid.
var ErrAuthFailed = errors.New("auth_failed")

// APIError is an application-level error carried in a {"error": ...} body.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }
