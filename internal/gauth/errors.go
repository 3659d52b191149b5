package gauth

import (
	"errors"
)

var errNotAuthenticated = errors.New(
	"not authenticated; call AuthenticateServiceAccount or AuthenticateOAuth first")

// AuthenticationError reports a failure to resolve, refresh, or use a
// credential. Op names the step that failed.
type AuthenticationError struct {
	Op  string
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return "authentication failed: " + e.Op
	}

	return "authentication failed: " + e.Op + ": " + e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func authErr(op string, err error) *AuthenticationError {
	return &AuthenticationError{Op: op, Err: err}
}
