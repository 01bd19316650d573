// Package cliutil is the single write path for command output: run
// reports, inspect summaries and scaffolding notices all go through it.
package cliutil

import (
	"fmt"
	"io"
	"os"
)

// Writef prints formatted user-facing output. A failed write is reported
// on stderr instead of being silently dropped.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}
