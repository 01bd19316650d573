// Package wasmtest assembles tiny WebAssembly guests for tests.
//
// Building guests byte-by-byte keeps the repository free of a wasm
// toolchain and keeps each guest's behavior visible next to the test that
// uses it. The guests follow the sandbox ABI: exports memory, alloc and
// render; imports env.emit and env.log.
package wasmtest

// uleb encodes an unsigned LEB128 integer.
func uleb(v int) []byte {
	var out []byte
	u := uint64(v)
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

// sleb encodes a signed LEB128 integer.
func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func name(s string) []byte {
	return append(uleb(len(s)), s...)
}

func section(id byte, payload []byte) []byte {
	out := append([]byte{id}, uleb(len(payload))...)
	return append(out, payload...)
}

func vec(items ...[]byte) []byte {
	out := uleb(len(items))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

// Opcodes used by the guests.
const (
	OpUnreachable = 0x00
	OpLoop        = 0x03
	OpIf          = 0x04
	OpElse        = 0x05
	OpEnd         = 0x0B
	OpBr          = 0x0C
	OpCall        = 0x10
	OpLocalGet    = 0x20
	OpI32Const    = 0x41
	OpI32LtU      = 0x49

	BlockTypeVoid = 0x40
	BlockTypeI32  = 0x7F
)

// Guest memory layout: alloc hands out a fixed region at AllocBase; static
// data segments live at DataBase, far above any test payload.
const (
	AllocBase = 1024
	DataBase  = 32768
)

// Guest describes one test module.
type Guest struct {
	// RenderBody is the render function's instruction sequence, including
	// the terminating end opcode.
	RenderBody []byte
	// Data, when non-nil, is placed at DataBase by an active data segment.
	Data []byte
	// OmitAlloc drops the alloc export to exercise the missing-export path.
	OmitAlloc bool
	// MemoryMinPages overrides the declared memory minimum (default 1).
	// A minimum above the host's page ceiling makes the module rejectable.
	MemoryMinPages int
}

// Build assembles the guest into a complete wasm binary.
//
// Function index space: 0=env.emit, 1=env.log (imports), then alloc (when
// present) and render.
func (g Guest) Build() []byte {
	mod := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	// Types: 0 = (i32,i32)->(), 1 = (i32,i32)->i32, 2 = (i32)->i32.
	mod = append(mod, section(1, vec(
		[]byte{0x60, 2, 0x7F, 0x7F, 0},
		[]byte{0x60, 2, 0x7F, 0x7F, 1, 0x7F},
		[]byte{0x60, 1, 0x7F, 1, 0x7F},
	))...)

	imp := func(field string) []byte {
		out := name("env")
		out = append(out, name(field)...)
		return append(out, 0x00, 0) // func import, type 0
	}
	mod = append(mod, section(2, vec(imp("emit"), imp("log")))...)

	var funcTypes [][]byte
	if !g.OmitAlloc {
		funcTypes = append(funcTypes, uleb(2)) // alloc: type 2
	}
	funcTypes = append(funcTypes, uleb(1)) // render: type 1
	mod = append(mod, section(3, vec(funcTypes...))...)

	// One memory, min 1 page unless overridden.
	minPages := g.MemoryMinPages
	if minPages == 0 {
		minPages = 1
	}
	mod = append(mod, section(5, vec(append([]byte{0x00}, uleb(minPages)...)))...)

	funcIdx := 2
	var exports [][]byte
	exports = append(exports, append(name("memory"), 0x02, 0))
	if !g.OmitAlloc {
		exports = append(exports, append(name("alloc"), append([]byte{0x00}, uleb(funcIdx)...)...))
		funcIdx++
	}
	exports = append(exports, append(name("render"), append([]byte{0x00}, uleb(funcIdx)...)...))
	mod = append(mod, section(7, vec(exports...))...)

	body := func(instrs []byte) []byte {
		inner := append(uleb(0), instrs...) // no locals
		return append(uleb(len(inner)), inner...)
	}
	var bodies [][]byte
	if !g.OmitAlloc {
		allocInstrs := append([]byte{OpI32Const}, sleb(AllocBase)...)
		allocInstrs = append(allocInstrs, OpEnd)
		bodies = append(bodies, body(allocInstrs))
	}
	bodies = append(bodies, body(g.RenderBody))
	mod = append(mod, section(10, vec(bodies...))...)

	if g.Data != nil {
		seg := append([]byte{0x00, OpI32Const}, sleb(DataBase)...)
		seg = append(seg, OpEnd)
		seg = append(seg, uleb(len(g.Data))...)
		seg = append(seg, g.Data...)
		mod = append(mod, section(11, vec(seg))...)
	}
	return mod
}

// EchoGuest emits its input payload back verbatim and returns 0.
func EchoGuest() []byte {
	return Guest{RenderBody: []byte{
		OpLocalGet, 0,
		OpLocalGet, 1,
		OpCall, 0, // emit(ptr, len)
		OpI32Const, 0,
		OpEnd,
	}}.Build()
}

// StaticGuest emits a fixed byte string from its data segment and returns 0.
func StaticGuest(output []byte) []byte {
	instrs := append([]byte{OpI32Const}, sleb(DataBase)...)
	instrs = append(instrs, OpI32Const)
	instrs = append(instrs, sleb(int64(len(output)))...)
	instrs = append(instrs, OpCall, 0, OpI32Const, 0, OpEnd)
	return Guest{RenderBody: instrs, Data: output}.Build()
}

// LoggingGuest sends a fixed line to env.log and returns 0 without output.
func LoggingGuest(line []byte) []byte {
	instrs := append([]byte{OpI32Const}, sleb(DataBase)...)
	instrs = append(instrs, OpI32Const)
	instrs = append(instrs, sleb(int64(len(line)))...)
	instrs = append(instrs, OpCall, 1, OpI32Const, 0, OpEnd)
	return Guest{RenderBody: instrs, Data: line}.Build()
}

// TrapGuest hits an unreachable instruction immediately.
func TrapGuest() []byte {
	return Guest{RenderBody: []byte{OpUnreachable, OpEnd}}.Build()
}

// SpinGuest loops forever, never yielding a result.
func SpinGuest() []byte {
	return Guest{RenderBody: []byte{
		OpLoop, BlockTypeVoid,
		OpBr, 0,
		OpEnd,
		OpI32Const, 0,
		OpEnd,
	}}.Build()
}

// SizeGateGuest echoes payloads smaller than limit bytes and spins forever
// on larger ones. Lets one run mix completed and budget-exceeded contexts.
func SizeGateGuest(limit int) []byte {
	instrs := []byte{OpLocalGet, 1}
	instrs = append(instrs, OpI32Const)
	instrs = append(instrs, sleb(int64(limit))...)
	instrs = append(instrs,
		OpI32LtU,
		OpIf, BlockTypeI32,
		OpLocalGet, 0,
		OpLocalGet, 1,
		OpCall, 0, // emit(ptr, len)
		OpI32Const, 0,
		OpElse,
		OpLoop, BlockTypeVoid,
		OpBr, 0,
		OpEnd,
		OpI32Const, 0,
		OpEnd,
		OpEnd,
	)
	return Guest{RenderBody: instrs}.Build()
}

// StatusGuest returns the given nonzero render status without emitting.
func StatusGuest(status int) []byte {
	instrs := append([]byte{OpI32Const}, sleb(int64(status))...)
	instrs = append(instrs, OpEnd)
	return Guest{RenderBody: instrs}.Build()
}
