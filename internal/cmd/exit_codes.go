package cmd

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/99designs/keyring"
	ggoogleapi "google.golang.org/api/googleapi"

	"github.com/Al3jandr032/gforms-go/internal/gauth"
	"github.com/Al3jandr032/gforms-go/internal/gforms"
)

const (
	// Exit code 0 is success.
	// Exit code 1 is generic failure.
	exitCodeUsage = 2

	exitCodeAuthRequired     = 4
	exitCodeNotFound         = 5
	exitCodePermissionDenied = 6
	exitCodeRateLimited      = 7
	exitCodeRetryable        = 8
	exitCodeConfig           = 10

	// 130 is the conventional "interrupted" exit code (SIGINT / Ctrl-C).
	exitCodeCancelled = 130
)

// stableExitCode wraps common failure modes in ExitError so callers can
// branch on exit status without parsing human-oriented stderr.
func stableExitCode(err error) error {
	if err == nil {
		return nil
	}

	var ee *ExitError
	if errors.As(err, &ee) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return &ExitError{Code: exitCodeCancelled, Err: err}
	}

	var authErr *gauth.AuthenticationError
	if errors.As(err, &authErr) {
		return &ExitError{Code: exitCodeAuthRequired, Err: err}
	}

	var cfgErr *gforms.ConfigurationError
	if errors.As(err, &cfgErr) {
		return &ExitError{Code: exitCodeConfig, Err: err}
	}

	var unsupportedErr *gforms.UnsupportedOperationError
	if errors.As(err, &unsupportedErr) {
		return &ExitError{Code: exitCodeUsage, Err: err}
	}

	if errors.Is(err, keyring.ErrKeyNotFound) {
		return &ExitError{Code: exitCodeAuthRequired, Err: err}
	}

	var gerr *ggoogleapi.Error
	if errors.As(err, &gerr) {
		if code := googleAPIExitCode(gerr); code != 1 {
			return &ExitError{Code: code, Err: err}
		}
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ExitError{Code: exitCodeRetryable, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ExitError{Code: exitCodeRetryable, Err: err}
	}

	return err
}

func googleAPIExitCode(err *ggoogleapi.Error) int {
	if err == nil {
		return 1
	}

	reason := ""
	if len(err.Errors) > 0 {
		reason = strings.TrimSpace(strings.ToLower(err.Errors[0].Reason))
	}

	switch err.Code {
	case 401:
		return exitCodeAuthRequired
	case 403:
		if isQuotaOrRateLimitReason(reason) {
			return exitCodeRateLimited
		}

		return exitCodePermissionDenied
	case 404:
		return exitCodeNotFound
	case 429:
		return exitCodeRateLimited
	default:
		if err.Code >= 500 {
			return exitCodeRetryable
		}
	}

	return 1
}

func isQuotaOrRateLimitReason(reason string) bool {
	switch reason {
	case "ratelimitexceeded",
		"userratelimitexceeded",
		"quotaexceeded",
		"dailylimitexceeded",
		"resourceexhausted":
		return true
	default:
		return false
	}
}
