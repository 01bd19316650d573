// Package writer materializes rendered output on disk.
//
// Output paths come from template patterns with {var} placeholders, are
// confined to the output root, and are claimed first-writer-wins: a second
// context substituting to an already-written path fails with an
// OutputCollision error while the first write stands.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/tools/imports"

	flavourgen "github.com/flavourgen/flavourgen"
	"github.com/flavourgen/flavourgen/generrors"
	"github.com/flavourgen/flavourgen/internal/fileutil"
	"github.com/flavourgen/flavourgen/iterate"
)

// Writer writes rendered outputs beneath a single root directory.
// It is safe for concurrent use by multiple rendering workers.
type Writer struct {
	// Root is the output directory all paths are resolved against.
	Root string
	// Flavour names the active flavour for error reporting.
	Flavour string
	// Logger receives write diagnostics.
	Logger flavourgen.Logger
	// FormatGoSources runs goimports-style formatting over .go outputs when
	// the flavour language is "go". Formatting failures are logged and the
	// unformatted output is kept; generated-but-unformatted beats lost.
	FormatGoSources bool

	mu   sync.Mutex
	seen map[string]string
}

// New returns a Writer rooted at dir.
func New(dir string) *Writer {
	return &Writer{
		Root:   dir,
		Logger: flavourgen.NopLogger{},
		seen:   make(map[string]string),
	}
}

// RenderPath substitutes {var} placeholders in an output pattern.
// Placeholder values are inserted literally; they are not re-scanned, so a
// brace inside a value cannot open a new placeholder.
func RenderPath(pattern string, vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); {
		if pattern[i] != '{' {
			b.WriteByte(pattern[i])
			i++
			continue
		}
		end := strings.IndexByte(pattern[i:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in output pattern %q", pattern)
		}
		name := pattern[i+1 : i+end]
		value, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("unknown placeholder {%s} in output pattern %q", name, pattern)
		}
		b.WriteString(value)
		i += end + 1
	}
	return b.String(), nil
}

// Write renders the context's output pattern, claims the resulting path and
// writes output there, creating parent directories as needed. It returns the
// slash-separated path relative to Root.
func (w *Writer) Write(gctx *iterate.GenerationContext, output []byte) (string, error) {
	rel, err := RenderPath(gctx.Template.Output, gctx.Vars)
	if err != nil {
		return "", &generrors.FlavourError{
			Kind:     generrors.FlavourInvalid,
			Flavour:  w.Flavour,
			Template: gctx.Template.Input,
			Message:  err.Error(),
		}
	}

	native := filepath.FromSlash(rel)
	if !filepath.IsLocal(native) {
		return "", &generrors.FlavourError{
			Kind:     generrors.FlavourInvalid,
			Flavour:  w.Flavour,
			Template: gctx.Template.Input,
			Path:     rel,
			Message:  "output path escapes the output directory",
		}
	}

	if err := w.claim(rel, gctx); err != nil {
		return "", err
	}

	abs := filepath.Join(w.Root, native)
	if err := os.MkdirAll(filepath.Dir(abs), fileutil.DirDefault); err != nil {
		return "", fmt.Errorf("failed to create output directory for %s: %w", rel, err)
	}

	output = w.postprocess(gctx, rel, abs, output)
	if err := os.WriteFile(abs, output, fileutil.ReadableByAll); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}

	w.logger().Debug("wrote output", "path", rel, "bytes", len(output), "key", gctx.Key)
	return rel, nil
}

// claim reserves an output path for one context. The reservation happens
// before any IO so that under concurrency exactly one context ever writes a
// given path.
func (w *Writer) claim(rel string, gctx *iterate.GenerationContext) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen == nil {
		w.seen = make(map[string]string)
	}
	if prev, ok := w.seen[rel]; ok {
		return &generrors.FlavourError{
			Kind:     generrors.FlavourOutputCollision,
			Flavour:  w.Flavour,
			Template: gctx.Template.Input,
			Path:     rel,
			Message:  fmt.Sprintf("already written for key %q", prev),
		}
	}
	w.seen[rel] = gctx.Key
	return nil
}

func (w *Writer) postprocess(gctx *iterate.GenerationContext, rel, abs string, output []byte) []byte {
	if !w.FormatGoSources || gctx.Vars["language"] != "go" || !strings.HasSuffix(rel, ".go") {
		return output
	}
	formatted, err := imports.Process(abs, output, nil)
	if err != nil {
		w.logger().Warn("failed to format generated source", "path", rel, "error", err)
		return output
	}
	return formatted
}

func (w *Writer) logger() flavourgen.Logger {
	if w.Logger == nil {
		return flavourgen.NopLogger{}
	}
	return w.Logger
}
