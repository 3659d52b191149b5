// Package ui owns the stdout/stderr printer pair used by commands.
// Colors go through termenv so `--color never` and piped output degrade
// to plain text.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
)

type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Color  string // auto|always|never
}

type UI struct {
	out     *Printer
	err     *Printer
	profile termenv.Profile
}

type Printer struct {
	w       io.Writer
	profile termenv.Profile
}

func New(opts Options) (*UI, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var profile termenv.Profile

	switch opts.Color {
	case "", "auto":
		profile = termenv.EnvColorProfile()
	case "always":
		profile = termenv.ANSI256
	case "never":
		profile = termenv.Ascii
	default:
		return nil, fmt.Errorf("invalid color mode: %q", opts.Color)
	}

	return &UI{
		out:     &Printer{w: stdout, profile: profile},
		err:     &Printer{w: stderr, profile: profile},
		profile: profile,
	}, nil
}

func (u *UI) Out() *Printer { return u.out }
func (u *UI) Err() *Printer { return u.err }

func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.w, args...)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Errorf renders the message in red when the profile supports it.
func (p *Printer) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	styled := p.profile.String(msg).Foreground(p.profile.Color("1"))
	_, _ = fmt.Fprintln(p.w, styled.String())
}

type ctxKey struct{}

func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func FromContext(ctx context.Context) *UI {
	if v := ctx.Value(ctxKey{}); v != nil {
		if u, ok := v.(*UI); ok {
			return u
		}
	}

	u, _ := New(Options{})

	return u
}
