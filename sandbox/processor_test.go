package sandbox

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flavourgen "github.com/flavourgen/flavourgen"
	"github.com/flavourgen/flavourgen/flavour"
	"github.com/flavourgen/flavourgen/generrors"
	"github.com/flavourgen/flavourgen/internal/wasmtest"
	"github.com/flavourgen/flavourgen/iterate"
)

func testPayload(t *testing.T) *Payload {
	t.Helper()
	gctx := &iterate.GenerationContext{
		Template: flavour.Template{Input: "model", Output: "models/{name}.go", Iteration: "components.schemas"},
		Key:      "Pet",
		Element:  map[string]any{"type": "object"},
		Vars: map[string]string{
			"key": "Pet", "name": "Pet", "Name": "Pet", "language": "go", "template": "model",
		},
	}
	payload, err := NewPayload(gctx, []byte("type {{.Name}} struct {}\n"))
	require.NoError(t, err)
	return payload
}

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p := NewProcessor()
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestPayloadEncoding(t *testing.T) {
	payload := testPayload(t)
	encoded, err := payload.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, float64(ABIVersion), decoded["abi_version"])
	assert.Equal(t, "model", decoded["template"])
	assert.Equal(t, "Pet", decoded["key"])
	assert.Equal(t, map[string]any{"type": "object"}, decoded["element"])
	assert.Contains(t, decoded["template_body"], "{{.Name}}")
}

func TestRenderEcho(t *testing.T) {
	p := newTestProcessor(t)
	payload := testPayload(t)

	out, err := p.Render(context.Background(), wasmtest.EchoGuest(), payload)
	require.NoError(t, err)

	// The echo guest emits the payload verbatim, so the output is the exact
	// bytes the host wrote into guest memory.
	encoded, err := payload.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, out)
}

func TestRenderStaticOutput(t *testing.T) {
	p := newTestProcessor(t)
	want := []byte("package models\n\ntype Pet struct {}\n")

	out, err := p.Render(context.Background(), wasmtest.StaticGuest(want), testPayload(t))
	require.NoError(t, err)
	assert.Equal(t, want, out)
}

func TestRenderTrap(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.Render(context.Background(), wasmtest.TrapGuest(), testPayload(t))
	require.Error(t, err)
	require.ErrorIs(t, err, generrors.ErrSandbox)
	assert.NotErrorIs(t, err, generrors.ErrBudgetExceeded)

	var se *generrors.SandboxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, generrors.SandboxTrapped, se.Kind)
	assert.Equal(t, "model", se.Template)
	assert.Equal(t, "Pet", se.Key)
}

func TestRenderBudgetExceeded(t *testing.T) {
	p := newTestProcessor(t)
	p.Budget = 200 * time.Millisecond

	start := time.Now()
	_, err := p.Render(context.Background(), wasmtest.SpinGuest(), testPayload(t))
	require.Error(t, err)
	require.ErrorIs(t, err, generrors.ErrBudgetExceeded)

	var se *generrors.SandboxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, generrors.SandboxBudgetExceeded, se.Kind)
	// The guest must have been torn down near the budget, not run to some
	// much larger internal limit.
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRenderNonzeroStatus(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.Render(context.Background(), wasmtest.StatusGuest(7), testPayload(t))
	require.Error(t, err)
	require.ErrorIs(t, err, generrors.ErrSandbox)

	var se *generrors.SandboxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, generrors.SandboxTrapped, se.Kind)
	assert.Contains(t, se.Message, "status 7")
}

func TestRenderMemoryLimitEnforced(t *testing.T) {
	p := newTestProcessor(t)
	p.MemoryLimitPages = 2

	// The guest declares a 4-page memory minimum, above the 2-page ceiling,
	// so the runtime must refuse to run it.
	guest := wasmtest.Guest{
		RenderBody:     []byte{wasmtest.OpI32Const, 0, wasmtest.OpEnd},
		MemoryMinPages: 4,
	}.Build()

	_, err := p.Render(context.Background(), guest, testPayload(t))
	require.Error(t, err)
	require.ErrorIs(t, err, generrors.ErrSandbox)
	assert.NotErrorIs(t, err, generrors.ErrBudgetExceeded)

	var se *generrors.SandboxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, generrors.SandboxTrapped, se.Kind)
	assert.Equal(t, "model", se.Template)
	assert.Equal(t, "Pet", se.Key)
}

func TestRenderMissingAllocExport(t *testing.T) {
	p := newTestProcessor(t)
	guest := wasmtest.Guest{
		RenderBody: []byte{wasmtest.OpI32Const, 0, wasmtest.OpEnd},
		OmitAlloc:  true,
	}.Build()

	_, err := p.Render(context.Background(), guest, testPayload(t))
	require.Error(t, err)

	var se *generrors.SandboxError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "alloc")
}

func TestRenderInvalidModule(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.Render(context.Background(), []byte{0xDE, 0xAD, 0xBE, 0xEF}, testPayload(t))
	require.Error(t, err)
	require.ErrorIs(t, err, generrors.ErrSandbox)

	var se *generrors.SandboxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, generrors.SandboxTrapped, se.Kind)
	assert.Contains(t, se.Message, "compile")
}

func TestRenderGuestLog(t *testing.T) {
	p := newTestProcessor(t)
	logger := &recordingLogger{}
	p.Logger = logger

	_, err := p.Render(context.Background(), wasmtest.LoggingGuest([]byte("hello from guest")), testPayload(t))
	require.NoError(t, err)
	assert.Contains(t, logger.messages(), "hello from guest")
}

func TestRenderConcurrent(t *testing.T) {
	p := newTestProcessor(t)
	guest := wasmtest.EchoGuest()
	payload := testPayload(t)
	encoded, err := payload.Encode()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := p.Render(context.Background(), guest, payload)
			assert.NoError(t, err)
			assert.Equal(t, encoded, out)
		}()
	}
	wg.Wait()
}

// recordingLogger captures guest log lines for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordingLogger) record(_ string, attrs ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i] == "message" {
			if s, ok := attrs[i+1].(string); ok {
				r.entries = append(r.entries, s)
			}
		}
	}
}

func (r *recordingLogger) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries...)
}

func (r *recordingLogger) Debug(msg string, attrs ...any) { r.record(msg, attrs...) }
func (r *recordingLogger) Info(msg string, attrs ...any)  { r.record(msg, attrs...) }
func (r *recordingLogger) Warn(msg string, attrs ...any)  { r.record(msg, attrs...) }
func (r *recordingLogger) Error(msg string, attrs ...any) { r.record(msg, attrs...) }
func (r *recordingLogger) With(_ ...any) flavourgen.Logger { return r }
