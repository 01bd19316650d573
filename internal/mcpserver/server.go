// Package mcpserver implements an MCP (Model Context Protocol) server that
// exposes flavourgen capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	flavourgen "github.com/flavourgen/flavourgen"
)

const serverInstructions = `flavourgen MCP server — parses OpenAPI 3.x descriptions and generates code through flavour catalogs with sandboxed WASM transformation modules.

Workflow: flavours live under .openapi/flavours/<name>/, each with a config.toml naming template entries, the raw template bodies, and a processor.wasm transformation module. Use inspect to see which collections of a description are iterable, list_flavours to see what is installed, and generate to run a full generation pass.

Generation failure policy: parse failures, unresolvable or circular references, and a missing or invalid flavour fail the whole call; a sandbox trap, exhausted execution budget, or output path collision is scoped to its one generation context and reported in the issues list.`

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "flavourgen", Version: flavourgen.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "inspect",
		Description: "Parse an OpenAPI description and resolve its reference graph. Returns a structural summary: OAS version, title, path/webhook counts, per-category component counts, resolved reference count, and the iterable collection paths usable as template iteration directives.",
	}, handleInspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_flavours",
		Description: "List the flavours installed under a flavour root directory (default .openapi/flavours). Returns each flavour's language, version and template count; flavours with a broken configuration are listed with their load error.",
	}, handleListFlavours)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate",
		Description: "Run a full generation pass: parse the description, resolve references, load the flavour, and render every generation context through the flavour's sandboxed transformation module. Requires output_dir. Returns the written file manifest and any per-context issues.",
	}, handleGenerate)
}

// sanitizeError strips absolute filesystem paths from error messages to
// avoid leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
