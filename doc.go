// Package flavourgen generates source code from OpenAPI descriptions using
// pluggable flavours: catalogs of templates, each paired with an untrusted
// WebAssembly transformation module executed in a resource-bounded sandbox.
//
// The root package holds build metadata and the Logger interface shared by
// all subpackages. The interesting work lives in:
//
//   - parser: typed OpenAPI 3.1 document model and YAML/JSON parsing
//   - resolver: eager $ref resolution with cycle detection
//   - flavour: flavour catalog loading (config, templates, module bytes)
//   - iterate: per-template generation context enumeration
//   - sandbox: WebAssembly execution of flavour transformation modules
//   - writer: output path substitution and file persistence
//   - pipeline: the orchestrator tying the above together
//
// Most callers should use pipeline.Run; the cmd/flavourgen CLI is a thin
// shell over it.
package flavourgen
