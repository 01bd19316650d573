package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/flavourgen/flavourgen/parser"
	"github.com/flavourgen/flavourgen/resolver"
)

type inspectInput struct {
	Schema string `json:"schema" jsonschema:"Path to the OpenAPI description file"`
}

type inspectOutput struct {
	OpenAPI      string         `json:"openapi"`
	Title        string         `json:"title,omitempty"`
	Version      string         `json:"version,omitempty"`
	Format       string         `json:"format"`
	PathCount    int            `json:"path_count"`
	WebhookCount int            `json:"webhook_count"`
	Components   map[string]int `json:"components,omitempty"`
	RefCount     int            `json:"ref_count"`
	// Collections lists the non-empty collection paths, i.e. the iteration
	// directives that would yield at least one generation context.
	Collections []string `json:"collections,omitempty"`
}

func handleInspect(_ context.Context, _ *mcp.CallToolRequest, input inspectInput) (*mcp.CallToolResult, inspectOutput, error) {
	result, err := parser.New().Parse(input.Schema)
	if err != nil {
		return errResult(err), inspectOutput{}, nil
	}
	graph, err := resolver.Resolve(result.Document)
	if err != nil {
		return errResult(err), inspectOutput{}, nil
	}

	doc := graph.Document
	output := inspectOutput{
		OpenAPI:      doc.OpenAPI,
		Format:       string(result.SourceFormat),
		PathCount:    len(doc.Paths),
		WebhookCount: len(doc.Webhooks),
		RefCount:     graph.RefCount(),
	}
	if doc.Info != nil {
		output.Title = doc.Info.Title
		output.Version = doc.Info.Version
	}

	for _, path := range resolver.CollectionPaths() {
		entries, err := graph.Collection(path)
		if err != nil || len(entries) == 0 {
			continue
		}
		output.Collections = append(output.Collections, path)
		if category, ok := componentCategory(path); ok {
			if output.Components == nil {
				output.Components = make(map[string]int)
			}
			output.Components[category] = len(entries)
		}
	}
	return nil, output, nil
}

func componentCategory(path string) (string, bool) {
	const prefix = "components."
	if len(path) <= len(prefix) || path[:len(prefix)] != prefix {
		return "", false
	}
	return path[len(prefix):], true
}
