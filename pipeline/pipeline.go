// Package pipeline orchestrates a full generation run: parse the API
// description, resolve its reference graph, load the flavour, derive
// generation contexts, render each through the sandboxed transformation
// module, and write the outputs.
//
// # Error policy
//
// Parse failures, reference failures (including cycles), a document that
// declares none of paths, webhooks or components, and a missing or
// invalid flavour abort the whole run. An invalid iteration target aborts
// generation for that one template. A sandbox failure or write failure is
// scoped to its one generation context and recorded as an Issue; the rest
// of the run proceeds.
package pipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flavourgen/flavourgen/flavour"
	"github.com/flavourgen/flavourgen/generrors"
	"github.com/flavourgen/flavourgen/iterate"
	"github.com/flavourgen/flavourgen/parser"
	"github.com/flavourgen/flavourgen/resolver"
	"github.com/flavourgen/flavourgen/sandbox"
	"github.com/flavourgen/flavourgen/writer"
)

// Issue is one scoped failure recorded during a run.
type Issue struct {
	// Template is the template input identifier the failure belongs to.
	Template string
	// Key is the generation context key, empty for template-level failures.
	Key string
	// Err is the underlying error.
	Err error
}

// RunResult summarizes a completed generation run.
type RunResult struct {
	// SchemaPath is the API description that was read.
	SchemaPath string
	// Flavour is the flavour that ran.
	Flavour string
	// Language is the flavour's target language tag.
	Language string
	// Contexts is the number of generation contexts derived.
	Contexts int
	// Written lists the output paths written, relative to the output
	// directory, in template order then context key order.
	Written []string
	// Issues lists the scoped failures, in the same deterministic order.
	Issues []Issue
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Run executes one generation run. Scoped failures are reported through
// RunResult.Issues; only run-fatal failures are returned as an error.
func Run(ctx context.Context, opts ...Option) (*RunResult, error) {
	o := newOptions(opts)
	logger := o.logger
	started := time.Now()

	p := parser.New()
	p.Logger = logger
	parsed, err := p.Parse(o.schemaPath)
	if err != nil {
		return nil, err
	}

	res := resolver.New()
	res.Logger = logger
	graph, err := res.Resolve(parsed.Document)
	if err != nil {
		return nil, err
	}
	doc := graph.Document
	if doc.Paths == nil && doc.Webhooks == nil && doc.Components == nil {
		return nil, &generrors.ParseError{
			Path:    o.schemaPath,
			Message: "document declares none of paths, webhooks or components; nothing to generate from",
		}
	}

	cat := &flavour.Catalog{Root: o.flavourDir, Logger: logger}
	f, err := cat.Load(o.flavourName)
	if err != nil {
		return nil, err
	}

	proc := sandbox.NewProcessor()
	proc.Logger = logger
	proc.Budget = o.budget
	proc.MemoryLimitPages = o.memoryPages
	defer proc.Close(context.WithoutCancel(ctx))

	w := writer.New(o.outputDir)
	w.Flavour = f.Name
	w.Logger = logger
	w.FormatGoSources = o.formatGo && f.Language == "go"

	result := &RunResult{
		SchemaPath: o.schemaPath,
		Flavour:    f.Name,
		Language:   f.Language,
	}

	for _, tpl := range f.Templates {
		if err := runTemplate(ctx, o, f, tpl, graph, proc, w, result); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(started)
	logger.Info("generation complete",
		"schema", o.schemaPath,
		"flavour", f.Name,
		"contexts", result.Contexts,
		"written", len(result.Written),
		"issues", len(result.Issues),
		"duration", result.Duration)
	return result, nil
}

// runTemplate renders every generation context of one template. Contexts
// render concurrently; outcomes are folded back in context order so that
// Written and Issues are deterministic regardless of scheduling.
func runTemplate(ctx context.Context, o *options, f *flavour.Flavour, tpl flavour.Template,
	graph *resolver.Graph, proc *sandbox.Processor, w *writer.Writer, result *RunResult) error {

	contexts, err := iterate.Contexts(f, tpl, graph)
	if err != nil {
		var fe *generrors.FlavourError
		if errors.As(err, &fe) && fe.Kind.Fatal() {
			return err
		}
		o.logger.Warn("skipping template", "template", tpl.Input, "error", err)
		result.Issues = append(result.Issues, Issue{Template: tpl.Input, Err: err})
		return nil
	}
	result.Contexts += len(contexts)

	type outcome struct {
		path string
		err  error
	}
	outcomes := make([]outcome, len(contexts))

	g := new(errgroup.Group)
	g.SetLimit(o.workers)
	for i, gctx := range contexts {
		g.Go(func() error {
			path, err := renderContext(ctx, f, gctx, proc, w)
			outcomes[i] = outcome{path: path, err: err}
			return nil
		})
	}
	// Workers never return errors through the group; scoped failures land
	// in their outcome slot.
	_ = g.Wait()

	for i, out := range outcomes {
		if out.err == nil {
			result.Written = append(result.Written, out.path)
			continue
		}
		var fe *generrors.FlavourError
		if errors.As(out.err, &fe) && fe.Kind.Fatal() {
			return out.err
		}
		o.logger.Warn("generation context failed",
			"template", tpl.Input, "key", contexts[i].Key, "error", out.err)
		result.Issues = append(result.Issues, Issue{
			Template: tpl.Input,
			Key:      contexts[i].Key,
			Err:      out.err,
		})
	}
	return nil
}

func renderContext(ctx context.Context, f *flavour.Flavour, gctx *iterate.GenerationContext,
	proc *sandbox.Processor, w *writer.Writer) (string, error) {

	payload, err := sandbox.NewPayload(gctx, f.Body(gctx.Template))
	if err != nil {
		return "", err
	}
	output, err := proc.Render(ctx, f.Module, payload)
	if err != nil {
		return "", err
	}
	return w.Write(gctx, output)
}
