// Package parser provides the typed OpenAPI 3.1 document model and parsing.
//
// The model is pure data: every "inline or reusable" position in the
// specification is a [Ref] node, the central polymorphic type of the whole
// model. Parsing is total over the specification's optional-field structure:
// a field absent in the source stays nil, never implicitly defaulted, so
// consumers can distinguish "not specified" from "specified as empty".
//
// Parsing performs no reference resolution; see the resolver package.
package parser
