package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Al3jandr032/gforms-go/internal/outfmt"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

func VersionString() string {
	v := strings.TrimSpace(version)
	if v == "" {
		v = "dev"
	}

	extras := make([]string, 0, 2)
	if c := strings.TrimSpace(commit); c != "" {
		extras = append(extras, c)
	}

	if d := strings.TrimSpace(date); d != "" {
		extras = append(extras, d)
	}

	if len(extras) == 0 {
		return v
	}

	return fmt.Sprintf("%s (%s)", v, strings.Join(extras, " "))
}

type VersionCmd struct{}

func (c *VersionCmd) Run(ctx context.Context) error {
	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(ctx, os.Stdout, map[string]any{
			"version": strings.TrimSpace(version),
			"commit":  strings.TrimSpace(commit),
			"date":    strings.TrimSpace(date),
		})
	}

	fmt.Fprintln(os.Stdout, VersionString())

	return nil
}
