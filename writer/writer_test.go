package writer

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavourgen/flavourgen/flavour"
	"github.com/flavourgen/flavourgen/generrors"
	"github.com/flavourgen/flavourgen/iterate"
)

func handlerContext(key string) *iterate.GenerationContext {
	safe := iterate.Sanitize(key)
	return &iterate.GenerationContext{
		Template: flavour.Template{Input: "handler", Output: "handlers/{path}.out", Iteration: "paths"},
		Key:      key,
		Vars: map[string]string{
			"key": key, "path": safe, "name": safe,
			"Name": iterate.ExportedName(key), "language": "go", "template": "handler",
		},
	}
}

func TestRenderPath(t *testing.T) {
	vars := map[string]string{"path": "_users", "name": "_users", "language": "go"}

	got, err := RenderPath("handlers/{path}.out", vars)
	require.NoError(t, err)
	assert.Equal(t, "handlers/_users.out", got)

	got, err = RenderPath("{language}/{name}/{name}.txt", vars)
	require.NoError(t, err)
	assert.Equal(t, "go/_users/_users.txt", got)

	got, err = RenderPath("static/README.md", vars)
	require.NoError(t, err)
	assert.Equal(t, "static/README.md", got)
}

func TestRenderPathErrors(t *testing.T) {
	vars := map[string]string{"path": "_users"}

	_, err := RenderPath("handlers/{nope}.out", vars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{nope}")

	_, err = RenderPath("handlers/{path.out", vars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}

func TestWriteRoundTrip(t *testing.T) {
	w := New(t.TempDir())
	content := []byte("func handleUsers() {}\n\x00\x01binary ok\n")

	rel, err := w.Write(handlerContext("/users"), content)
	require.NoError(t, err)
	assert.Equal(t, "handlers/_users.out", rel)

	got, err := os.ReadFile(filepath.Join(w.Root, "handlers", "_users.out"))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestWriteCollision(t *testing.T) {
	w := New(t.TempDir())
	w.Flavour = "gopher"

	// Both keys sanitize to "_users".
	first := handlerContext("/users")
	second := handlerContext("/users")
	second.Key = "_users"
	second.Vars["key"] = "_users"

	rel, err := w.Write(first, []byte("first\n"))
	require.NoError(t, err)

	_, err = w.Write(second, []byte("second\n"))
	require.Error(t, err)
	require.ErrorIs(t, err, generrors.ErrOutputCollision)

	var fe *generrors.FlavourError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, generrors.FlavourOutputCollision, fe.Kind)
	assert.Equal(t, "gopher", fe.Flavour)
	assert.Equal(t, "handlers/_users.out", fe.Path)
	assert.Contains(t, fe.Message, `"/users"`)

	// First write stands.
	got, err := os.ReadFile(filepath.Join(w.Root, rel))
	require.NoError(t, err)
	assert.Equal(t, []byte("first\n"), got)
}

func TestWriteConcurrentCollision(t *testing.T) {
	w := New(t.TempDir())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.Write(handlerContext("/users"), []byte("x\n"))
		}(i)
	}
	wg.Wait()

	written := 0
	for _, err := range errs {
		if err == nil {
			written++
		} else {
			assert.True(t, errors.Is(err, generrors.ErrOutputCollision))
		}
	}
	assert.Equal(t, 1, written)
}

func TestWriteEscapeRejected(t *testing.T) {
	root := t.TempDir()
	w := New(root)

	for _, output := range []string{"../evil.txt", "/etc/evil.txt", "a/../../evil.txt"} {
		gctx := handlerContext("/users")
		gctx.Template.Output = output
		_, err := w.Write(gctx, []byte("x"))
		require.Error(t, err, "output %q", output)
		assert.ErrorIs(t, err, generrors.ErrFlavour)
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFormatsGoSources(t *testing.T) {
	w := New(t.TempDir())
	w.FormatGoSources = true

	gctx := handlerContext("/users")
	gctx.Template.Output = "handlers/{path}.go"
	rel, err := w.Write(gctx, []byte("package handlers\nfunc  HandleUsers( ) {   }\n"))
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(w.Root, rel))
	require.NoError(t, err)
	assert.Contains(t, string(got), "func HandleUsers() {")
}

func TestWriteKeepsUnformattableGoSource(t *testing.T) {
	w := New(t.TempDir())
	w.FormatGoSources = true

	broken := []byte("package handlers\nfunc {{{\n")
	gctx := handlerContext("/users")
	gctx.Template.Output = "handlers/{path}.go"
	rel, err := w.Write(gctx, broken)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(w.Root, rel))
	require.NoError(t, err)
	assert.Equal(t, broken, got)
}

func TestWriteNonGoNotFormatted(t *testing.T) {
	w := New(t.TempDir())
	w.FormatGoSources = true

	raw := []byte("def   handle_users( ):pass\n")
	gctx := handlerContext("/users")
	gctx.Vars["language"] = "python"
	gctx.Template.Output = "handlers/{path}.py"
	rel, err := w.Write(gctx, raw)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(w.Root, rel))
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}
