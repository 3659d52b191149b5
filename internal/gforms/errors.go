package gforms

import (
	"fmt"
)

// ConfigurationError means construction found no usable credentials.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string { return e.msg }

// UnsupportedOperationError reports an operation the active mode (or the
// remote API) cannot perform.
type UnsupportedOperationError struct {
	Op     string
	Reason string
}

func (e *UnsupportedOperationError) Error() string {
	return e.Op + " is not supported: " + e.Reason
}

// RequestError wraps a failed remote call.
type RequestError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	msg := e.Op + " failed"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *RequestError) Unwrap() error { return e.Err }
