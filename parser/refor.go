package parser

import (
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v4"
)

// Ref is a reference-or-value node: either an inline value of type T or a
// $ref string locating another node inside the document's component tables,
// plus optional summary/description overrides.
//
// Before resolution, exactly one of Ref and Value is set. Resolution fills
// Value with a handle to the shared resolved T while leaving Ref intact, so
// multiple references to the same component name resolve to the same
// identity, never independent copies.
type Ref[T any] struct {
	// Ref is the reference string (e.g. "#/components/schemas/Pet").
	// Empty for inline values.
	Ref string `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	// Summary optionally overrides the target's summary.
	Summary string `yaml:"summary,omitempty" json:"-"`
	// Description optionally overrides the target's description.
	Description string `yaml:"description,omitempty" json:"-"`
	// Value is the inline value, or the shared resolved target after
	// resolution.
	Value *T `yaml:"-" json:"-"`
}

// IsRef reports whether this node was written as a $ref in the source.
func (r *Ref[T]) IsRef() bool {
	return r != nil && r.Ref != ""
}

// Resolved reports whether a value is available, either because the node is
// inline or because resolution has filled it in.
func (r *Ref[T]) Resolved() bool {
	return r != nil && r.Value != nil
}

// refHeader is the shape of a $ref mapping node.
type refHeader struct {
	Ref         string `yaml:"$ref"`
	Summary     string `yaml:"summary"`
	Description string `yaml:"description"`
}

// UnmarshalYAML decodes either variant: a mapping carrying a "$ref" key
// becomes a reference, anything else decodes as an inline T.
func (r *Ref[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode && mappingHasKey(node, "$ref") {
		var h refHeader
		if err := node.Decode(&h); err != nil {
			return err
		}
		if h.Ref == "" {
			return fmt.Errorf("line %d: $ref must be a non-empty string", node.Line)
		}
		r.Ref = h.Ref
		r.Summary = h.Summary
		r.Description = h.Description
		return nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	r.Value = &v
	return nil
}

// MarshalJSON emits the resolved value when available, otherwise the $ref.
// This is the serialized view handed to sandboxed modules: a plain data
// tree with no host-internal layout. Resolution rejects cyclic documents,
// so the resolved structure is a finite DAG and marshaling terminates.
func (r *Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Value != nil {
		return json.Marshal(r.Value)
	}
	return json.Marshal(jsonRef{Ref: r.Ref})
}

// jsonRef is the JSON shape of an unresolved reference.
type jsonRef struct {
	Ref string `json:"$ref"`
}

// mappingHasKey reports whether a YAML mapping node contains the given key.
func mappingHasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
