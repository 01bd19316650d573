// Package sandbox executes flavour transformation modules in an isolated
// WebAssembly runtime.
//
// The module is fully untrusted input. The runtime exposes exactly two host
// capabilities, env.log (diagnostics) and env.emit (output), and enforces a
// linear-memory ceiling and an execution budget. A trap, memory violation
// or budget overrun is caught and reported as a *generrors.SandboxError,
// never propagated as a host-process fault. One module instance serves one
// invocation; no state survives between generation contexts.
//
// # Module ABI (version 1)
//
// Guest exports:
//
//	memory                          the module's linear memory
//	alloc(size: i32) -> i32         reserve size bytes, return the offset
//	render(ptr: i32, len: i32) -> i32
//
// The host calls alloc, writes the generation context payload (JSON, see
// [Payload]) at the returned offset, then calls render with that offset and
// length. A zero return status is success; any other value is a
// module-declared failure. Output is whatever the module passed to env.emit,
// concatenated in call order.
//
// Host imports (module "env"):
//
//	log(ptr: i32, len: i32)         UTF-8 diagnostic line
//	emit(ptr: i32, len: i32)        output chunk
package sandbox
