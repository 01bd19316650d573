package resolver

import (
	"fmt"
	"strings"

	"github.com/flavourgen/flavourgen"
	"github.com/flavourgen/flavourgen/generrors"
	"github.com/flavourgen/flavourgen/internal/maputil"
	"github.com/flavourgen/flavourgen/parser"
)

// MaxDepth is the maximum nesting depth followed during resolution.
// Cycle detection bounds reference chains; this bounds deeply nested
// inline structures.
const MaxDepth = 100

// Resolver resolves every reference of a parsed document.
// The zero value is usable; Logger defaults to a no-op logger.
type Resolver struct {
	// Logger is the structured logger for debug output
	Logger flavourgen.Logger
}

// New creates a new Resolver with default settings.
func New() *Resolver {
	return &Resolver{}
}

// Resolve is a convenience for New().Resolve(doc).
func Resolve(doc *parser.Document) (*Graph, error) {
	return New().Resolve(doc)
}

// Resolve eagerly resolves every reference-or-value node of doc against its
// component tables and returns the resolved Graph. The first unresolved
// target or circular chain aborts with a *generrors.ReferenceError;
// generation cannot proceed over an incomplete graph.
//
// Resolution mutates doc in place (filling Ref values with shared targets);
// doc is owned by the returned Graph afterwards.
func (r *Resolver) Resolve(doc *parser.Document) (*Graph, error) {
	if doc == nil {
		return nil, &generrors.ReferenceError{Message: "nil document"}
	}
	rn := &run{
		doc:     doc,
		entries: make(map[string]*refEntry),
		logger:  r.log(),
	}
	if err := visitDocument(rn, doc); err != nil {
		return nil, err
	}
	rn.logger.Debug("resolved document references", "refs", len(rn.entries))
	return &Graph{Document: doc, entries: rn.entries}, nil
}

func (r *Resolver) log() flavourgen.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return flavourgen.NopLogger{}
}

// run carries the mutable state of one resolution pass.
type run struct {
	doc     *parser.Document
	entries map[string]*refEntry
	// stack is the chain of reference strings currently being resolved,
	// used to name cycles.
	stack []string
	// depth counts nesting across inline structures and references.
	depth  int
	logger flavourgen.Logger
}

func (rn *run) entry(ref string) *refEntry {
	if e, ok := rn.entries[ref]; ok {
		return e
	}
	e := &refEntry{state: StateUnresolved}
	rn.entries[ref] = e
	return e
}

// chain returns the cycle path for ref: the active stack from ref's first
// occurrence, ending at the revisited ref.
func (rn *run) chain(ref string) []string {
	for i, r := range rn.stack {
		if r == ref {
			chain := make([]string, 0, len(rn.stack)-i+1)
			chain = append(chain, rn.stack[i:]...)
			return append(chain, ref)
		}
	}
	chain := make([]string, 0, len(rn.stack)+1)
	chain = append(chain, rn.stack...)
	return append(chain, ref)
}

func (rn *run) enter() error {
	rn.depth++
	if rn.depth > MaxDepth {
		return &generrors.ReferenceError{
			Message: fmt.Sprintf("structure exceeds maximum nesting depth (%d)", MaxDepth),
		}
	}
	return nil
}

func (rn *run) leave() {
	rn.depth--
}

func (rn *run) components() parser.Components {
	if rn.doc.Components == nil {
		return parser.Components{}
	}
	return *rn.doc.Components
}

// componentName validates ref as a local reference into the given component
// table category and returns the component name.
func componentName(rn *run, ref, category string) (string, error) {
	prefix := "#/components/" + category + "/"
	rest, ok := strings.CutPrefix(ref, prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", &generrors.ReferenceError{
			Ref:     ref,
			Chain:   rn.chain(ref),
			Message: fmt.Sprintf("expected a local %q component reference (%s<name>)", category, prefix),
		}
	}
	return unescapeJSONPointer(rest), nil
}

// componentRef builds the canonical reference string for a component name.
func componentRef(category, name string) string {
	return "#/components/" + category + "/" + escapeJSONPointer(name)
}

// unescapeJSONPointer unescapes JSON Pointer tokens.
// Per RFC 6901, ~1 represents / and ~0 represents ~.
func unescapeJSONPointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}

// escapeJSONPointer escapes JSON Pointer tokens per RFC 6901.
func escapeJSONPointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return token
}

// resolveNode resolves one reference-or-value node: references are looked
// up through byRef (which caches by reference string, giving all references
// to one target a single shared identity), inline values are descended into
// with visit.
func resolveNode[T any](rn *run, node *parser.Ref[T], byRef func(*run, string) (*T, error), visit func(*run, *T) error) error {
	if node == nil {
		return nil
	}
	if err := rn.enter(); err != nil {
		return err
	}
	defer rn.leave()

	if node.Ref == "" {
		if node.Value == nil {
			return nil
		}
		return visit(rn, node.Value)
	}
	target, err := byRef(rn, node.Ref)
	if err != nil {
		return err
	}
	node.Value = target
	return nil
}

// componentByRef resolves a reference string against one component table,
// driving the per-reference state machine: a Resolving entry seen again is
// a cycle; a Resolved entry returns the cached shared target.
func componentByRef[T any](rn *run, ref, category string, table map[string]*parser.Ref[T], visit func(*run, *T) error) (*T, error) {
	e := rn.entry(ref)
	switch e.state {
	case StateResolved:
		return e.target.(*T), nil
	case StateFailed:
		return nil, e.err
	case StateResolving:
		err := &generrors.ReferenceError{
			Ref:        ref,
			Chain:      rn.chain(ref),
			IsCircular: true,
		}
		e.state = StateFailed
		e.err = err
		return nil, err
	}

	name, err := componentName(rn, ref, category)
	if err != nil {
		e.state = StateFailed
		e.err = err
		return nil, err
	}
	node, ok := table[name]
	if !ok || node == nil {
		err := &generrors.ReferenceError{
			Ref:     ref,
			Chain:   rn.chain(ref),
			Message: fmt.Sprintf("no %q component named %q", category, name),
		}
		e.state = StateFailed
		e.err = err
		return nil, err
	}

	e.state = StateResolving
	rn.stack = append(rn.stack, ref)

	var target *T
	if node.Ref != "" {
		// A component entry that is itself a reference: continue recursively.
		target, err = componentByRef(rn, node.Ref, category, table, visit)
		if err == nil {
			node.Value = target
		}
	} else {
		target = node.Value
		err = visit(rn, target)
	}

	rn.stack = rn.stack[:len(rn.stack)-1]
	if err != nil {
		e.state = StateFailed
		e.err = err
		return nil, err
	}
	e.state = StateResolved
	e.target = target
	return target, nil
}

// Per-category reference lookups. Each closes over its component table type
// so the resolver can pattern-match the closed set of referenceable types.

func schemaByRef(rn *run, ref string) (*parser.Schema, error) {
	return componentByRef(rn, ref, "schemas", rn.components().Schemas, visitSchema)
}

func responseByRef(rn *run, ref string) (*parser.Response, error) {
	return componentByRef(rn, ref, "responses", rn.components().Responses, visitResponse)
}

func parameterByRef(rn *run, ref string) (*parser.Parameter, error) {
	return componentByRef(rn, ref, "parameters", rn.components().Parameters, visitParameter)
}

func exampleByRef(rn *run, ref string) (*parser.Example, error) {
	return componentByRef(rn, ref, "examples", rn.components().Examples, visitExample)
}

func requestBodyByRef(rn *run, ref string) (*parser.RequestBody, error) {
	return componentByRef(rn, ref, "requestBodies", rn.components().RequestBodies, visitRequestBody)
}

func headerByRef(rn *run, ref string) (*parser.Header, error) {
	return componentByRef(rn, ref, "headers", rn.components().Headers, visitHeader)
}

func securitySchemeByRef(rn *run, ref string) (*parser.SecurityScheme, error) {
	return componentByRef(rn, ref, "securitySchemes", rn.components().SecuritySchemes, visitSecurityScheme)
}

func linkByRef(rn *run, ref string) (*parser.Link, error) {
	return componentByRef(rn, ref, "links", rn.components().Links, visitLink)
}

func callbackByRef(rn *run, ref string) (*parser.Callback, error) {
	return componentByRef(rn, ref, "callbacks", rn.components().Callbacks, visitCallback)
}

func pathItemByRef(rn *run, ref string) (*parser.PathItem, error) {
	return componentByRef(rn, ref, "pathItems", rn.components().PathItems, visitPathItem)
}

// Visit functions descend into inline values, resolving every nested
// reference-or-value node. Map iteration is key-sorted so failures are
// deterministic for a given document.

func visitDocument(rn *run, doc *parser.Document) error {
	for _, key := range maputil.SortedKeys(doc.Paths) {
		if err := resolveNode(rn, doc.Paths[key], pathItemByRef, visitPathItem); err != nil {
			return err
		}
	}
	for _, key := range maputil.SortedKeys(doc.Webhooks) {
		if err := resolveNode(rn, doc.Webhooks[key], pathItemByRef, visitPathItem); err != nil {
			return err
		}
	}
	return visitComponents(rn, doc.Components)
}

// visitComponents resolves every component table entry, referenced or not,
// so iteration over component collections observes a fully resolved graph.
func visitComponents(rn *run, comps *parser.Components) error {
	if comps == nil {
		return nil
	}
	if err := resolveTable(rn, comps.Schemas, "schemas", schemaByRef); err != nil {
		return err
	}
	if err := resolveTable(rn, comps.Responses, "responses", responseByRef); err != nil {
		return err
	}
	if err := resolveTable(rn, comps.Parameters, "parameters", parameterByRef); err != nil {
		return err
	}
	if err := resolveTable(rn, comps.Examples, "examples", exampleByRef); err != nil {
		return err
	}
	if err := resolveTable(rn, comps.RequestBodies, "requestBodies", requestBodyByRef); err != nil {
		return err
	}
	if err := resolveTable(rn, comps.Headers, "headers", headerByRef); err != nil {
		return err
	}
	if err := resolveTable(rn, comps.SecuritySchemes, "securitySchemes", securitySchemeByRef); err != nil {
		return err
	}
	if err := resolveTable(rn, comps.Links, "links", linkByRef); err != nil {
		return err
	}
	if err := resolveTable(rn, comps.Callbacks, "callbacks", callbackByRef); err != nil {
		return err
	}
	return resolveTable(rn, comps.PathItems, "pathItems", pathItemByRef)
}

// resolveTable resolves every entry of one component table through its
// canonical reference string, sharing the cache with in-document refs.
func resolveTable[T any](rn *run, table map[string]*parser.Ref[T], category string, byRef func(*run, string) (*T, error)) error {
	for _, name := range maputil.SortedKeys(table) {
		node := table[name]
		if node == nil {
			continue
		}
		target, err := byRef(rn, componentRef(category, name))
		if err != nil {
			return err
		}
		node.Value = target
	}
	return nil
}

func visitPathItem(rn *run, pi *parser.PathItem) error {
	for _, p := range pi.Parameters {
		if err := resolveNode(rn, p, parameterByRef, visitParameter); err != nil {
			return err
		}
	}
	for _, method := range []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"} {
		op := pi.Operations()[method]
		if op == nil {
			continue
		}
		if err := visitOperation(rn, op); err != nil {
			return err
		}
	}
	return nil
}

func visitOperation(rn *run, op *parser.Operation) error {
	for _, p := range op.Parameters {
		if err := resolveNode(rn, p, parameterByRef, visitParameter); err != nil {
			return err
		}
	}
	if err := resolveNode(rn, op.RequestBody, requestBodyByRef, visitRequestBody); err != nil {
		return err
	}
	for _, status := range maputil.SortedKeys(op.Responses) {
		if err := resolveNode(rn, op.Responses[status], responseByRef, visitResponse); err != nil {
			return err
		}
	}
	for _, name := range maputil.SortedKeys(op.Callbacks) {
		if err := resolveNode(rn, op.Callbacks[name], callbackByRef, visitCallback); err != nil {
			return err
		}
	}
	return nil
}

func visitParameter(rn *run, p *parser.Parameter) error {
	if err := resolveNode(rn, p.Schema, schemaByRef, visitSchema); err != nil {
		return err
	}
	if err := visitExamples(rn, p.Examples); err != nil {
		return err
	}
	return visitContent(rn, p.Content)
}

func visitRequestBody(rn *run, rb *parser.RequestBody) error {
	return visitContent(rn, rb.Content)
}

func visitContent(rn *run, content map[string]*parser.MediaType) error {
	for _, mediaType := range maputil.SortedKeys(content) {
		mt := content[mediaType]
		if mt == nil {
			continue
		}
		if err := resolveNode(rn, mt.Schema, schemaByRef, visitSchema); err != nil {
			return err
		}
		if err := visitExamples(rn, mt.Examples); err != nil {
			return err
		}
		for _, prop := range maputil.SortedKeys(mt.Encoding) {
			enc := mt.Encoding[prop]
			if enc == nil {
				continue
			}
			if err := visitHeaderRefs(rn, enc.Headers); err != nil {
				return err
			}
		}
	}
	return nil
}

func visitResponse(rn *run, resp *parser.Response) error {
	if err := visitHeaderRefs(rn, resp.Headers); err != nil {
		return err
	}
	if err := visitContent(rn, resp.Content); err != nil {
		return err
	}
	for _, name := range maputil.SortedKeys(resp.Links) {
		if err := resolveNode(rn, resp.Links[name], linkByRef, visitLink); err != nil {
			return err
		}
	}
	return nil
}

func visitHeaderRefs(rn *run, headers map[string]*parser.Ref[parser.Header]) error {
	for _, name := range maputil.SortedKeys(headers) {
		if err := resolveNode(rn, headers[name], headerByRef, visitHeader); err != nil {
			return err
		}
	}
	return nil
}

func visitHeader(rn *run, h *parser.Header) error {
	if err := resolveNode(rn, h.Schema, schemaByRef, visitSchema); err != nil {
		return err
	}
	return visitExamples(rn, h.Examples)
}

func visitExamples(rn *run, examples map[string]*parser.Ref[parser.Example]) error {
	for _, name := range maputil.SortedKeys(examples) {
		if err := resolveNode(rn, examples[name], exampleByRef, visitExample); err != nil {
			return err
		}
	}
	return nil
}

func visitCallback(rn *run, cb *parser.Callback) error {
	for _, expr := range maputil.SortedKeys(*cb) {
		if err := resolveNode(rn, (*cb)[expr], pathItemByRef, visitPathItem); err != nil {
			return err
		}
	}
	return nil
}

func visitSchema(rn *run, s *parser.Schema) error {
	for _, name := range maputil.SortedKeys(s.Properties) {
		if err := resolveNode(rn, s.Properties[name], schemaByRef, visitSchema); err != nil {
			return err
		}
	}
	if err := resolveNode(rn, s.Items, schemaByRef, visitSchema); err != nil {
		return err
	}
	for _, group := range [][]*parser.Ref[parser.Schema]{s.AllOf, s.OneOf, s.AnyOf} {
		for _, sub := range group {
			if err := resolveNode(rn, sub, schemaByRef, visitSchema); err != nil {
				return err
			}
		}
	}
	return resolveNode(rn, s.Not, schemaByRef, visitSchema)
}

// Leaf component types carry no nested references.

func visitExample(_ *run, _ *parser.Example) error { return nil }

func visitLink(_ *run, _ *parser.Link) error { return nil }

func visitSecurityScheme(_ *run, _ *parser.SecurityScheme) error { return nil }
