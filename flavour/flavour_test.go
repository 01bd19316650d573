package flavour

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavourgen/flavourgen/generrors"
)

// writeFlavour lays out a flavour directory under a fresh root and returns
// the root.
func writeFlavour(t *testing.T, name, configTOML string, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(configTOML), 0o644))
	for fname, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fname), body, 0o644))
	}
	return root
}

const basicConfig = `
language = "go"
version = "0.1.0"

[[templates]]
input = "handler.tmpl"
output = "handlers/{path}.go"
iteration = "paths"

[[templates]]
input = "readme.tmpl"
output = "README.md"
`

func TestLoad(t *testing.T) {
	root := writeFlavour(t, "gopher", basicConfig, map[string][]byte{
		"handler.tmpl":   []byte("handler body"),
		"readme.tmpl":    []byte("readme body"),
		"processor.wasm": {0x00, 0x61, 0x73, 0x6d},
	})

	f, err := Load(root, "gopher")
	require.NoError(t, err)
	assert.Equal(t, "gopher", f.Name)
	assert.Equal(t, "go", f.Language)
	assert.Equal(t, "0.1.0", f.Version)
	require.Len(t, f.Templates, 2)
	assert.Equal(t, "handler.tmpl", f.Templates[0].Input)
	assert.Equal(t, "handlers/{path}.go", f.Templates[0].Output)
	assert.Equal(t, "paths", f.Templates[0].Iteration)
	assert.Empty(t, f.Templates[1].Iteration)
	assert.Equal(t, []byte("handler body"), f.Body(f.Templates[0]))
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, f.Module)
}

func TestLoadTemplateAlias(t *testing.T) {
	cfg := `
language = "rust"

[[template]]
input = "main.tmpl"
output = "src/main.rs"
`
	root := writeFlavour(t, "axum", cfg, map[string][]byte{
		"main.tmpl":      []byte("x"),
		"processor.wasm": []byte("y"),
	})

	f, err := Load(root, "axum")
	require.NoError(t, err)
	require.Len(t, f.Templates, 1)
	assert.Equal(t, "main.tmpl", f.Templates[0].Input)
}

func TestLoadCustomModuleName(t *testing.T) {
	cfg := `
language = "go"
module = "transform.wasm"

[[templates]]
input = "t.tmpl"
output = "out.txt"
`
	root := writeFlavour(t, "custom", cfg, map[string][]byte{
		"t.tmpl":         []byte("x"),
		"transform.wasm": []byte("wasm!"),
	})

	f, err := Load(root, "custom")
	require.NoError(t, err)
	assert.Equal(t, []byte("wasm!"), f.Module)
}

func TestLoadNotFound(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrFlavourNotFound))

	var fe *generrors.FlavourError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, generrors.FlavourNotFound, fe.Kind)
	assert.Equal(t, "nope", fe.Flavour)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
		files  map[string][]byte
		want   string
	}{
		{
			name:   "malformed toml",
			config: "language = [broken",
			want:   "malformed configuration",
		},
		{
			name:   "missing language",
			config: "[[templates]]\ninput = \"a\"\noutput = \"b\"",
			files:  map[string][]byte{"a": []byte("x"), "processor.wasm": []byte("y")},
			want:   "missing required 'language'",
		},
		{
			name:   "no templates",
			config: `language = "go"`,
			want:   "declares no templates",
		},
		{
			name:   "missing output",
			config: "language = \"go\"\n[[templates]]\ninput = \"a\"",
			files:  map[string][]byte{"a": []byte("x")},
			want:   "missing 'output'",
		},
		{
			name:   "missing template body",
			config: "language = \"go\"\n[[templates]]\ninput = \"absent.tmpl\"\noutput = \"b\"",
			want:   "missing template body",
		},
		{
			name:   "escaping template input",
			config: "language = \"go\"\n[[templates]]\ninput = \"../../etc/passwd\"\noutput = \"b\"",
			want:   "inside the flavour directory",
		},
		{
			name:   "missing module",
			config: "language = \"go\"\n[[templates]]\ninput = \"a\"\noutput = \"b\"",
			files:  map[string][]byte{"a": []byte("x")},
			want:   "missing transformation module",
		},
		{
			name:   "both templates and alias",
			config: "language = \"go\"\n[[templates]]\ninput = \"a\"\noutput = \"b\"\n[[template]]\ninput = \"c\"\noutput = \"d\"",
			want:   "alias",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeFlavour(t, "f", tt.config, tt.files)
			_, err := Load(root, "f")
			require.Error(t, err)
			assert.True(t, errors.Is(err, generrors.ErrFlavour))
			var fe *generrors.FlavourError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, generrors.FlavourInvalid, fe.Kind)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadNamesOffendingTemplate(t *testing.T) {
	cfg := "language = \"go\"\n[[templates]]\ninput = \"gone.tmpl\"\noutput = \"b\""
	root := writeFlavour(t, "f", cfg, nil)
	_, err := Load(root, "f")
	var fe *generrors.FlavourError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "gone.tmpl", fe.Template)
}
