package cmd

import (
	"errors"
	"fmt"
)

var errUsage = errors.New("usage")

// ExitError carries a stable exit code alongside the underlying error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}

	return 1
}

func usage(msg string) error {
	return &ExitError{Code: exitCodeUsage, Err: fmt.Errorf("%w: %s", errUsage, msg)}
}

func newUsageError(err error) error {
	if err == nil {
		return nil
	}

	return &ExitError{Code: exitCodeUsage, Err: err}
}
