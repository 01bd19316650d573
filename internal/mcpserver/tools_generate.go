package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/flavourgen/flavourgen/pipeline"
)

type generateInput struct {
	Schema     string `json:"schema,omitempty"      jsonschema:"Path to the OpenAPI description file (default openapi.yaml)"`
	Flavour    string `json:"flavour,omitempty"     jsonschema:"Flavour name (default default)"`
	FlavourDir string `json:"flavour_dir,omitempty" jsonschema:"Flavour root directory (default .openapi/flavours)"`
	OutputDir  string `json:"output_dir"            jsonschema:"Directory generated files are written to"`
	Workers    int    `json:"workers,omitempty"     jsonschema:"Concurrent rendering workers"`
	BudgetMS   int    `json:"budget_ms,omitempty"   jsonschema:"Per-context execution budget in milliseconds"`
}

type generateIssue struct {
	Template string `json:"template"`
	Key      string `json:"key,omitempty"`
	Error    string `json:"error"`
}

type generateOutput struct {
	Flavour    string          `json:"flavour"`
	Language   string          `json:"language"`
	Contexts   int             `json:"contexts"`
	Written    []string        `json:"written,omitempty"`
	Issues     []generateIssue `json:"issues,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

func handleGenerate(ctx context.Context, _ *mcp.CallToolRequest, input generateInput) (*mcp.CallToolResult, generateOutput, error) {
	if input.OutputDir == "" {
		return errResult(fmt.Errorf("output_dir is required")), generateOutput{}, nil
	}

	opts := []pipeline.Option{
		pipeline.WithSchemaPath(input.Schema),
		pipeline.WithFlavourName(input.Flavour),
		pipeline.WithFlavourDir(input.FlavourDir),
		pipeline.WithOutputDir(input.OutputDir),
		pipeline.WithWorkers(input.Workers),
	}
	if input.BudgetMS > 0 {
		opts = append(opts, pipeline.WithRenderBudget(time.Duration(input.BudgetMS)*time.Millisecond))
	}

	result, err := pipeline.Run(ctx, opts...)
	if err != nil {
		return errResult(err), generateOutput{}, nil
	}

	output := generateOutput{
		Flavour:    result.Flavour,
		Language:   result.Language,
		Contexts:   result.Contexts,
		Written:    result.Written,
		DurationMS: result.Duration.Milliseconds(),
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, generateIssue{
			Template: issue.Template,
			Key:      issue.Key,
			Error:    sanitizeError(issue.Err),
		})
	}
	return nil, output, nil
}
