package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"

	flavourgen "github.com/flavourgen/flavourgen"
	"github.com/flavourgen/flavourgen/generrors"
)

const (
	// DefaultMemoryLimitPages caps guest linear memory at 64 pages (4 MiB).
	DefaultMemoryLimitPages = 64
	// DefaultBudget is the wall-clock execution budget per invocation.
	DefaultBudget = 5 * time.Second
	// MaxOutputSize caps the total bytes a single invocation may emit.
	MaxOutputSize = 10 * 1024 * 1024
)

// Processor renders generation contexts through a WebAssembly transformation
// module. A Processor is safe for concurrent use: each Render gets a fresh
// runtime and module instance, while compiled code is shared through an
// internal compilation cache.
type Processor struct {
	// Logger receives invocation diagnostics and guest env.log lines.
	Logger flavourgen.Logger
	// MemoryLimitPages caps guest linear memory, in 64 KiB pages.
	MemoryLimitPages uint32
	// Budget is the wall-clock execution budget per invocation.
	Budget time.Duration

	cache wazero.CompilationCache
}

// NewProcessor returns a Processor with default limits and a fresh
// compilation cache. Close must be called to release the cache.
func NewProcessor() *Processor {
	return &Processor{
		Logger:           flavourgen.NopLogger{},
		MemoryLimitPages: DefaultMemoryLimitPages,
		Budget:           DefaultBudget,
		cache:            wazero.NewCompilationCache(),
	}
}

// Close releases the shared compilation cache.
func (p *Processor) Close(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Close(ctx)
}

// hostState collects what one invocation's host functions observe.
type hostState struct {
	output   []byte
	overflow bool
	logger   flavourgen.Logger
}

func (h *hostState) emit(_ context.Context, m api.Module, ptr, length uint32) {
	data, ok := m.Memory().Read(ptr, length)
	if !ok {
		// Out-of-bounds emit; render will fail on the overflow flag.
		h.overflow = true
		return
	}
	if len(h.output)+len(data) > MaxOutputSize {
		h.overflow = true
		return
	}
	h.output = append(h.output, data...)
}

func (h *hostState) log(_ context.Context, m api.Module, ptr, length uint32) {
	data, ok := m.Memory().Read(ptr, length)
	if !ok {
		return
	}
	h.logger.Debug("module log", "message", string(data))
}

// Render executes the transformation module against one encoded payload and
// returns the concatenated emit output.
//
// Every guest fault is mapped to a *generrors.SandboxError: budget overruns
// to SandboxBudgetExceeded, everything else (traps, memory violations,
// missing exports, nonzero status) to SandboxTrapped. The template and key
// fields of the error identify the failed context.
func (p *Processor) Render(ctx context.Context, module []byte, payload *Payload) ([]byte, error) {
	encoded, err := payload.Encode()
	if err != nil {
		return nil, p.trapped(payload, "failed to encode payload", err)
	}

	budget := p.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	pages := p.MemoryLimitPages
	if pages == 0 {
		pages = DefaultMemoryLimitPages
	}
	cfg := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(pages).
		WithCloseOnContextDone(true)
	if p.cache != nil {
		cfg = cfg.WithCompilationCache(p.cache)
	}
	runtime := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer runtime.Close(context.WithoutCancel(ctx))

	logger := p.Logger
	if logger == nil {
		logger = flavourgen.NopLogger{}
	}
	host := &hostState{logger: logger.With("template", payload.Template, "key", payload.Key)}

	_, err = runtime.NewHostModuleBuilder("env").
		NewFunctionBuilder().WithFunc(host.emit).Export("emit").
		NewFunctionBuilder().WithFunc(host.log).Export("log").
		Instantiate(ctx)
	if err != nil {
		return nil, p.trapped(payload, "failed to instantiate host module", err)
	}

	compiled, err := runtime.CompileModule(ctx, module)
	if err != nil {
		return nil, p.trapped(payload, "failed to compile module", err)
	}

	started := time.Now()
	instance, err := runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("flavour").WithStartFunctions())
	if err != nil {
		return nil, p.guestError(payload, "failed to instantiate module", err)
	}

	allocFn := instance.ExportedFunction("alloc")
	if allocFn == nil {
		return nil, p.trapped(payload, "module does not export alloc", nil)
	}
	renderFn := instance.ExportedFunction("render")
	if renderFn == nil {
		return nil, p.trapped(payload, "module does not export render", nil)
	}
	memory := instance.Memory()
	if memory == nil {
		return nil, p.trapped(payload, "module does not export memory", nil)
	}

	allocated, err := allocFn.Call(ctx, uint64(len(encoded)))
	if err != nil {
		return nil, p.guestError(payload, "alloc failed", err)
	}
	ptr := uint32(allocated[0])
	if !memory.Write(ptr, encoded) {
		return nil, p.trapped(payload,
			fmt.Sprintf("alloc returned an out-of-bounds region (ptr=%d len=%d)", ptr, len(encoded)), nil)
	}

	status, err := renderFn.Call(ctx, uint64(ptr), uint64(len(encoded)))
	if err != nil {
		return nil, p.guestError(payload, "render failed", err)
	}
	if code := uint32(status[0]); code != 0 {
		return nil, p.trapped(payload, fmt.Sprintf("module reported failure (status %d)", code), nil)
	}
	if host.overflow {
		return nil, p.trapped(payload, "module output exceeds limit", nil)
	}

	logger.Debug("rendered context",
		"template", payload.Template,
		"key", payload.Key,
		"output_bytes", len(host.output),
		"elapsed", time.Since(started))
	return host.output, nil
}

// guestError maps a fault raised while guest code was executing. Budget
// overruns surface either as a deadline-exceeded context error or as the
// synthetic exit wazero injects when it tears the module down.
func (p *Processor) guestError(payload *Payload, msg string, err error) *generrors.SandboxError {
	kind := generrors.SandboxTrapped
	var exit *sys.ExitError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = generrors.SandboxBudgetExceeded
	case errors.As(err, &exit) && exit.ExitCode() == sys.ExitCodeDeadlineExceeded:
		kind = generrors.SandboxBudgetExceeded
	}
	return &generrors.SandboxError{
		Kind:     kind,
		Template: payload.Template,
		Key:      payload.Key,
		Message:  msg,
		Cause:    err,
	}
}

func (p *Processor) trapped(payload *Payload, msg string, err error) *generrors.SandboxError {
	return &generrors.SandboxError{
		Kind:     generrors.SandboxTrapped,
		Template: payload.Template,
		Key:      payload.Key,
		Message:  msg,
		Cause:    err,
	}
}
