// Package resolver performs eager $ref resolution over a parsed document.
//
// Resolve walks every reference-or-value node depth-first, resolving each
// reference against the document's component tables before any generation
// context is produced, so later stages never observe partial resolution
// state. Multiple references to one component name share a single resolved
// identity. Cycles are never silently broken: a reference chain that
// revisits a node currently being resolved fails with a circular
// ReferenceError naming the chain, because code generators cannot emit a
// well-formed recursive output type without explicit indirection support,
// which is a flavour-level concern.
package resolver
