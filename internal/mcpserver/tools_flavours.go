package mcpserver

import (
	"context"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/flavourgen/flavourgen/flavour"
)

type listFlavoursInput struct {
	FlavourDir string `json:"flavour_dir,omitempty" jsonschema:"Flavour root directory (default .openapi/flavours)"`
}

type flavourSummary struct {
	Name      string `json:"name"`
	Language  string `json:"language,omitempty"`
	Version   string `json:"version,omitempty"`
	Templates int    `json:"templates,omitempty"`
	// Error is set when the flavour directory exists but fails to load.
	Error string `json:"error,omitempty"`
}

type listFlavoursOutput struct {
	Root     string           `json:"root"`
	Flavours []flavourSummary `json:"flavours,omitempty"`
}

func handleListFlavours(_ context.Context, _ *mcp.CallToolRequest, input listFlavoursInput) (*mcp.CallToolResult, listFlavoursOutput, error) {
	root := input.FlavourDir
	if root == "" {
		root = flavour.DefaultDir
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return errResult(err), listFlavoursOutput{}, nil
	}

	output := listFlavoursOutput{Root: root}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		f, err := flavour.Load(root, entry.Name())
		if err != nil {
			output.Flavours = append(output.Flavours, flavourSummary{
				Name:  entry.Name(),
				Error: sanitizeError(err),
			})
			continue
		}
		output.Flavours = append(output.Flavours, flavourSummary{
			Name:      f.Name,
			Language:  f.Language,
			Version:   f.Version,
			Templates: len(f.Templates),
		})
	}
	return nil, output, nil
}
