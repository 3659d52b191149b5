package cmd

import (
	"context"
	"errors"
	"testing"

	ggoogleapi "google.golang.org/api/googleapi"

	"github.com/Al3jandr032/gforms-go/internal/gauth"
	"github.com/Al3jandr032/gforms-go/internal/gforms"
)

func configurationError(t *testing.T) error {
	t.Helper()
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("USE_SERVICE_ACCOUNT", "")

	_, err := gforms.New(context.Background(), gforms.Options{})
	if err == nil {
		t.Fatalf("expected configuration error")
	}

	return err
}

func TestStableExitCode(t *testing.T) {
	if got := stableExitCode(nil); got != nil {
		t.Fatalf("nil should pass through, got: %v", got)
	}

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"canceled", context.Canceled, exitCodeCancelled},
		{"auth", &gauth.AuthenticationError{Op: "x"}, exitCodeAuthRequired},
		{"config", configurationError(t), exitCodeConfig},
		{"unsupported", &gforms.UnsupportedOperationError{Op: "list forms", Reason: "api key"}, exitCodeUsage},
		{"not found", &ggoogleapi.Error{Code: 404}, exitCodeNotFound},
		{"unauthorized", &ggoogleapi.Error{Code: 401}, exitCodeAuthRequired},
		{"denied", &ggoogleapi.Error{Code: 403}, exitCodePermissionDenied},
		{"rate limited", &ggoogleapi.Error{Code: 429}, exitCodeRateLimited},
		{"server error", &ggoogleapi.Error{Code: 503}, exitCodeRetryable},
		{"deadline", context.DeadlineExceeded, exitCodeRetryable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := stableExitCode(tc.err)

			var ee *ExitError
			if !errors.As(got, &ee) {
				t.Fatalf("expected ExitError, got %T: %v", got, got)
			}

			if ee.Code != tc.code {
				t.Fatalf("unexpected code: %d, want %d", ee.Code, tc.code)
			}
		})
	}
}

func TestStableExitCode_QuotaReason(t *testing.T) {
	err := &ggoogleapi.Error{
		Code:   403,
		Errors: []ggoogleapi.ErrorItem{{Reason: "rateLimitExceeded"}},
	}

	got := stableExitCode(err)

	var ee *ExitError
	if !errors.As(got, &ee) || ee.Code != exitCodeRateLimited {
		t.Fatalf("expected rate-limit exit code, got: %v", got)
	}
}

func TestStableExitCode_Passthrough(t *testing.T) {
	plain := errors.New("plain")
	if got := stableExitCode(plain); !errors.Is(got, plain) || ExitCode(got) != 1 {
		t.Fatalf("plain errors pass through as generic failures, got: %v", got)
	}

	wrapped := &ExitError{Code: 42, Err: plain}
	if got := stableExitCode(wrapped); got != wrapped { //nolint:errorlint // identity check
		t.Fatalf("existing ExitError must not be rewrapped")
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Fatalf("nil is success")
	}

	if ExitCode(errors.New("x")) != 1 {
		t.Fatalf("plain errors are generic failures")
	}

	if ExitCode(usage("bad flag")) != exitCodeUsage {
		t.Fatalf("usage errors map to code %d", exitCodeUsage)
	}
}
