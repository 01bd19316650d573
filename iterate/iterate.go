// Package iterate derives generation contexts from a resolved graph.
//
// For each template of a flavour, the engine yields one generation context
// per element of the template's iteration target (or exactly one context
// rooted at the document when no directive is present), in lexicographic
// key order for determinism. Context enumeration is a pure function of the
// resolved graph: re-deriving from a fresh resolve yields the same
// sequence.
package iterate

import (
	"github.com/flavourgen/flavourgen/flavour"
	"github.com/flavourgen/flavourgen/generrors"
	"github.com/flavourgen/flavourgen/resolver"
)

// GenerationContext is one unit of rendering work: a (template, element)
// pair plus the substitution variables derived from the element's key.
// Contexts are produced once per pipeline run and consumed exactly once
// each by the sandboxed processor.
type GenerationContext struct {
	// Template is the catalog entry this context renders.
	Template flavour.Template
	// Key is the iterated element's key: a path string or component name.
	// Empty for the single root context of a non-iterating template.
	Key string
	// Element is a read-only shared view into the resolved graph: the
	// iterated element, or the whole document for a root context.
	Element any
	// Vars holds the substitution variables for output-path rendering and
	// for the transformation module.
	Vars map[string]string
}

// Contexts enumerates the generation contexts for one template against a
// resolved graph.
//
// A directive naming a path that does not exist, or that does not resolve
// to an iterable collection, fails with an InvalidIterationTarget
// FlavourError; per the orchestrator's policy this aborts generation for
// that one template only.
func Contexts(f *flavour.Flavour, tpl flavour.Template, graph *resolver.Graph) ([]*GenerationContext, error) {
	if tpl.Iteration == "" {
		return []*GenerationContext{{
			Template: tpl,
			Element:  graph.Document,
			Vars:     vars(f, tpl, ""),
		}}, nil
	}

	entries, err := graph.Collection(tpl.Iteration)
	if err != nil {
		return nil, &generrors.FlavourError{
			Kind:     generrors.FlavourInvalidIterationTarget,
			Flavour:  f.Name,
			Template: tpl.Input,
			Message:  err.Error(),
		}
	}

	contexts := make([]*GenerationContext, 0, len(entries))
	for _, entry := range entries {
		contexts = append(contexts, &GenerationContext{
			Template: tpl,
			Key:      entry.Key,
			Element:  entry.Value,
			Vars:     vars(f, tpl, entry.Key),
		})
	}
	return contexts, nil
}

// vars derives the substitution variable set for one context key.
func vars(f *flavour.Flavour, tpl flavour.Template, key string) map[string]string {
	safe := Sanitize(key)
	return map[string]string{
		"key":      key,
		"path":     safe,
		"name":     safe,
		"Name":     ExportedName(key),
		"language": f.Language,
		"template": tpl.Input,
	}
}
