package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavourgen/flavourgen/internal/wasmtest"
)

const testSchema = `
openapi: 3.1.0
info: {title: Petstore, version: "1.0"}
paths:
  /users: {}
  /pets: {}
`

func TestHandleInitCreatesWorkspace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".openapi")

	require.NoError(t, handleInit([]string{"-dir", dir}))
	info, err := os.Stat(filepath.Join(dir, "flavours"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.FileExists(t, filepath.Join(dir, "config.toml"))

	// Idempotent, and an edited config survives a re-init.
	custom := []byte("schema = \"api/openapi.yaml\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), custom, 0o644))
	require.NoError(t, handleInit([]string{"-dir", dir}))
	got, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestLoadWorkspaceConfig(t *testing.T) {
	dir := t.TempDir()

	// Missing file yields the zero config.
	cfg, err := loadWorkspaceConfig(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Schema)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("schema = \"api/openapi.yaml\"\nflavour = \"server\"\n"), 0o644))
	cfg, err = loadWorkspaceConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "api/openapi.yaml", cfg.Schema)
	assert.Equal(t, "server", cfg.Flavour)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("schema = [\n"), 0o644))
	_, err = loadWorkspaceConfig(dir)
	require.Error(t, err)
}

func TestHandleRunUsesWorkspaceDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, handleInit(nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".openapi", "config.toml"),
		[]byte("schema = \"spec.yaml\"\nflavour = \"server\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spec.yaml"), []byte(testSchema), 0o644))

	root := filepath.Join(dir, ".openapi", "flavours")
	require.NoError(t, handleCreate([]string{"server"}))
	config := `
language = "go"

[[templates]]
input = "handler.tmpl"
output = "handlers/{path}.out"
iteration = "paths"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "server", "config.toml"), []byte(config), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "server", "processor.wasm"), wasmtest.EchoGuest(), 0o644))

	out := filepath.Join(dir, "gen")
	require.NoError(t, handleRun([]string{"-out", out}))
	assert.FileExists(t, filepath.Join(out, "handlers", "_users.out"))
}

func TestHandleCreateScaffoldsFlavour(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, handleCreate([]string{"-flavour-dir", root, "server"}))
	assert.FileExists(t, filepath.Join(root, "server", "config.toml"))
	assert.FileExists(t, filepath.Join(root, "server", "handler.tmpl"))

	err := handleCreate([]string{"-flavour-dir", root, "server"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestHandleCreateRejectsBadNames(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"../evil", "a/b", "."} {
		err := handleCreate([]string{"-flavour-dir", root, name})
		require.Error(t, err, "name %q", name)
	}
}

func TestHandleCreateRequiresName(t *testing.T) {
	err := handleCreate([]string{"-flavour-dir", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one flavour name")
}

func TestHandleRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "openapi.yaml")
	require.NoError(t, os.WriteFile(schema, []byte(testSchema), 0o644))

	root := filepath.Join(dir, "flavours")
	require.NoError(t, handleCreate([]string{"-flavour-dir", root, "default"}))
	// The scaffold names handlers/{path}.go outputs; keep .out to avoid
	// formatting echo JSON as Go source.
	config := `
language = "go"

[[templates]]
input = "handler.tmpl"
output = "handlers/{path}.out"
iteration = "paths"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "default", "config.toml"), []byte(config), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "default", "processor.wasm"), wasmtest.EchoGuest(), 0o644))

	out := filepath.Join(dir, "gen")
	require.NoError(t, handleRun([]string{
		"-schema", schema,
		"-flavour-dir", root,
		"-out", out,
	}))
	assert.FileExists(t, filepath.Join(out, "handlers", "_users.out"))
	assert.FileExists(t, filepath.Join(out, "handlers", "_pets.out"))
}

func TestHandleRunMissingFlavour(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "openapi.yaml")
	require.NoError(t, os.WriteFile(schema, []byte(testSchema), 0o644))

	err := handleRun([]string{
		"-schema", schema,
		"-flavour-dir", filepath.Join(dir, "flavours"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flavour not found")
}

func TestHandleInspect(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "openapi.yaml")
	require.NoError(t, os.WriteFile(schema, []byte(testSchema), 0o644))

	require.NoError(t, handleInspect([]string{"-schema", schema}))

	err := handleInspect([]string{"-schema", filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
}
