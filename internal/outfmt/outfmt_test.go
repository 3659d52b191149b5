package outfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFromFlags(t *testing.T) {
	if _, err := FromFlags(true, true); err == nil {
		t.Fatalf("expected conflict error")
	}

	mode, err := FromFlags(true, false)
	if err != nil || !mode.JSON || mode.Plain {
		t.Fatalf("unexpected mode: %#v err=%v", mode, err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GFORMS_JSON", "true")
	t.Setenv("GFORMS_PLAIN", "")

	mode := FromEnv()
	if !mode.JSON || mode.Plain {
		t.Fatalf("unexpected mode: %#v", mode)
	}

	t.Setenv("GFORMS_JSON", "nope")

	if FromEnv().JSON {
		t.Fatalf("invalid boolean must not enable JSON")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	if IsJSON(ctx) || IsPlain(ctx) {
		t.Fatalf("zero mode expected for bare context")
	}

	ctx = WithMode(ctx, Mode{JSON: true})

	if !IsJSON(ctx) {
		t.Fatalf("expected JSON mode")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSON(context.Background(), &buf, map[string]any{"url": "https://a/b?c=1&d=2"})
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"url": "https://a/b?c=1&d=2"`) {
		t.Fatalf("expected unescaped, indented output, got: %s", out)
	}

	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected trailing newline")
	}
}
