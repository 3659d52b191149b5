package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Al3jandr032/gforms-go/internal/gforms"
	"github.com/Al3jandr032/gforms-go/internal/outfmt"
)

func stubClientAt(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	orig := newClient

	t.Cleanup(func() { newClient = orig })

	newClient = func(ctx context.Context) (*gforms.Client, error) {
		return gforms.New(ctx, gforms.Options{
			APIKey:     "test-key",
			BaseURL:    srv.URL,
			HTTPClient: srv.Client(),
		})
	}
}

func TestFormGetCmd_Run(t *testing.T) {
	stubClientAt(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"formId":"F1","info":{"title":"Survey"}}`))
	})

	ctx := outfmt.WithMode(context.Background(), outfmt.Mode{JSON: true})

	cmd := &FormGetCmd{FormID: "F1"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestFormGetCmd_EmptyID(t *testing.T) {
	cmd := &FormGetCmd{FormID: "  "}

	err := cmd.Run(context.Background())
	if ExitCode(err) != exitCodeUsage {
		t.Fatalf("expected usage error, got: %v", err)
	}
}

func TestFormListCmd_APIKeyMode(t *testing.T) {
	stubClientAt(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("unsupported operation must not reach the server")
	})

	cmd := &FormListCmd{}
	err := cmd.Run(context.Background())

	var unsupportedErr *gforms.UnsupportedOperationError
	if !errors.As(err, &unsupportedErr) {
		t.Fatalf("expected UnsupportedOperationError, got %T: %v", err, err)
	}
}

func TestFormResponsesCmd_EmptyID(t *testing.T) {
	cmd := &FormResponsesCmd{FormID: ""}

	err := cmd.Run(context.Background())
	if ExitCode(err) != exitCodeUsage {
		t.Fatalf("expected usage error, got: %v", err)
	}
}

func TestFormEditURL(t *testing.T) {
	if got := formEditURL(" F1 "); got != "https://docs.google.com/forms/d/F1/edit" {
		t.Fatalf("unexpected url: %q", got)
	}

	if got := formEditURL("  "); got != "" {
		t.Fatalf("expected empty url for empty id, got %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Fatalf("unexpected value: %q", got)
	}

	if got := firstNonEmpty("", " "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
