package resolver

import (
	"fmt"
	"strings"

	"github.com/flavourgen/flavourgen/internal/maputil"
	"github.com/flavourgen/flavourgen/parser"
)

// RefState is the resolution state of one reference string.
type RefState int

const (
	// StateUnresolved means the reference has not been visited.
	StateUnresolved RefState = iota
	// StateResolving marks a reference on the active resolution stack.
	// Observing it again is the cycle sentinel.
	StateResolving
	// StateResolved means the reference resolved to a shared target.
	StateResolved
	// StateFailed means resolution of the reference failed.
	StateFailed
)

// String returns a string representation of the state.
func (s RefState) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("RefState(%d)", int(s))
	}
}

// refEntry is one row of the graph's resolution side-table.
type refEntry struct {
	state  RefState
	target any // shared resolved node (*parser.Schema, *parser.Response, ...)
	err    error
}

// Graph is the resolved view of a document: the document itself plus a
// side-table mapping each reference string to its resolution state.
//
// The Graph exclusively owns resolved node storage; all other components
// hold read-only shared views into it, never copies, so identity-sharing
// is preserved. Once built, a Graph is immutable and safe for concurrent
// read access.
type Graph struct {
	// Document is the underlying parsed document with every Ref node's
	// Value filled in.
	Document *parser.Document

	entries map[string]*refEntry
}

// State returns the resolution state for a reference string.
// Unvisited references report StateUnresolved.
func (g *Graph) State(ref string) RefState {
	if e, ok := g.entries[ref]; ok {
		return e.state
	}
	return StateUnresolved
}

// Resolved returns the shared resolved node for a reference string.
func (g *Graph) Resolved(ref string) (any, bool) {
	e, ok := g.entries[ref]
	if !ok || e.state != StateResolved {
		return nil, false
	}
	return e.target, true
}

// RefCount returns the number of distinct reference strings tracked.
func (g *Graph) RefCount() int {
	return len(g.entries)
}

// Entry is one element of an iterable collection of the resolved graph.
type Entry struct {
	// Key is the element's key: a path string or component name.
	Key string
	// Value is a read-only shared view of the resolved element.
	Value any
}

// Collection resolves a named collection path against the graph and returns
// its entries in lexicographic key order for determinism (the surrounding
// format guarantees no emission order).
//
// Supported paths are "paths", "webhooks" and "components.<category>" for
// every reusable-component category. An unknown path is an error; a known
// but absent collection yields zero entries.
func (g *Graph) Collection(path string) ([]Entry, error) {
	doc := g.Document
	switch path {
	case "paths":
		return refEntries(doc.Paths), nil
	case "webhooks":
		return refEntries(doc.Webhooks), nil
	}

	category, ok := strings.CutPrefix(path, "components.")
	if !ok {
		return nil, fmt.Errorf("unknown collection path %q", path)
	}
	var comps parser.Components
	if doc.Components != nil {
		comps = *doc.Components
	}
	switch category {
	case "schemas":
		return refEntries(comps.Schemas), nil
	case "responses":
		return refEntries(comps.Responses), nil
	case "parameters":
		return refEntries(comps.Parameters), nil
	case "examples":
		return refEntries(comps.Examples), nil
	case "requestBodies":
		return refEntries(comps.RequestBodies), nil
	case "headers":
		return refEntries(comps.Headers), nil
	case "securitySchemes":
		return refEntries(comps.SecuritySchemes), nil
	case "links":
		return refEntries(comps.Links), nil
	case "callbacks":
		return refEntries(comps.Callbacks), nil
	case "pathItems":
		return refEntries(comps.PathItems), nil
	}
	return nil, fmt.Errorf("unknown collection path %q", path)
}

// CollectionPaths lists every collection path Collection accepts.
func CollectionPaths() []string {
	return []string{
		"paths",
		"webhooks",
		"components.schemas",
		"components.responses",
		"components.parameters",
		"components.examples",
		"components.requestBodies",
		"components.headers",
		"components.securitySchemes",
		"components.links",
		"components.callbacks",
		"components.pathItems",
	}
}

// refEntries flattens a reference-or-value map into ordered entries of
// resolved elements.
func refEntries[T any](m map[string]*parser.Ref[T]) []Entry {
	entries := make([]Entry, 0, len(m))
	for _, key := range maputil.SortedKeys(m) {
		node := m[key]
		if node == nil || node.Value == nil {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: node.Value})
	}
	return entries
}
