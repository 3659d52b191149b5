// Package errfmt renders errors as single stderr lines.
package errfmt

import (
	"strings"
)

// Format produces the one-line "Error: ..." form printed to stderr.
// Nested wrap chains already read left-to-right, so the chain is kept as-is.
func Format(err error) string {
	if err == nil {
		return ""
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "unknown error"
	}

	return "Error: " + msg
}
