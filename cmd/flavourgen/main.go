package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	flavourgen "github.com/flavourgen/flavourgen"
	"github.com/flavourgen/flavourgen/flavour"
	"github.com/flavourgen/flavourgen/internal/cliutil"
	"github.com/flavourgen/flavourgen/internal/mcpserver"
	"github.com/flavourgen/flavourgen/parser"
	"github.com/flavourgen/flavourgen/pipeline"
	"github.com/flavourgen/flavourgen/resolver"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		cliutil.Writef(os.Stdout, "flavourgen v%s\n", flavourgen.Version())
	case "help", "-h", "--help":
		printUsage()
	case "init":
		if err := handleInit(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "create":
		if err := handleCreate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "run":
		if err := handleRun(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "inspect":
		if err := handleInspect(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := mcpserver.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	cliutil.Writef(os.Stdout, `flavourgen v%s - flavour-driven code generation from OpenAPI descriptions

Usage: flavourgen <command> [flags]

Commands:
  init      Initialize the workspace flavour directory layout
  create    Scaffold a new flavour under the flavour directory
  run       Run code generation for a flavour
  inspect   Parse a description and print its structure
  mcp       Start the MCP server over stdio
  version   Show version information
  help      Show this help message

Run 'flavourgen <command> -h' for command-specific flags.
`, flavourgen.Version())
}

// runFlags contains flags for the run command
type runFlags struct {
	schema     string
	flavour    string
	flavourDir string
	out        string
	workers    int
	budget     time.Duration
	noFormat   bool
	verbose    bool
}

func setupRunFlags() (*flag.FlagSet, *runFlags) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	flags := &runFlags{}

	fs.StringVar(&flags.schema, "schema", "", "path to the OpenAPI description (default from .openapi/config.toml, else "+pipeline.DefaultSchemaPath+")")
	fs.StringVar(&flags.flavour, "flavour", "", "flavour to run (default from .openapi/config.toml, else "+pipeline.DefaultFlavourName+")")
	fs.StringVar(&flags.flavourDir, "flavour-dir", flavour.DefaultDir, "flavour root directory")
	fs.StringVar(&flags.out, "out", ".", "output directory")
	fs.IntVar(&flags.workers, "workers", pipeline.DefaultWorkers, "concurrent rendering workers")
	fs.DurationVar(&flags.budget, "budget", 0, "per-context execution budget (default 5s)")
	fs.BoolVar(&flags.noFormat, "no-format", false, "skip gofmt-style formatting of generated .go files")
	fs.BoolVar(&flags.verbose, "verbose", false, "enable debug logging")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: flavourgen run [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Run code generation for a flavour against an OpenAPI description.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  flavourgen run\n")
		_, _ = fmt.Fprintf(output, "  flavourgen run --schema api/openapi.yaml --flavour server --out gen/\n")
		_, _ = fmt.Fprintf(output, "  flavourgen run --workers 8 --budget 10s\n")
	}

	return fs, flags
}

func handleRun(args []string) error {
	fs, flags := setupRunFlags()

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("run command takes no positional arguments")
	}

	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := flavourgen.NewSlogAdapter(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Flags beat workspace config beats built-in defaults.
	cfg, err := loadWorkspaceConfig(defaultWorkspaceDir)
	if err != nil {
		return err
	}
	if flags.schema == "" {
		flags.schema = cfg.Schema
	}
	if flags.flavour == "" {
		flags.flavour = cfg.Flavour
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := pipeline.Run(ctx,
		pipeline.WithSchemaPath(flags.schema),
		pipeline.WithFlavourName(flags.flavour),
		pipeline.WithFlavourDir(flags.flavourDir),
		pipeline.WithOutputDir(flags.out),
		pipeline.WithWorkers(flags.workers),
		pipeline.WithRenderBudget(flags.budget),
		pipeline.WithGoFormatting(!flags.noFormat),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("generating: %w", err)
	}

	cliutil.Writef(os.Stdout, "Flavour: %s (%s)\n", result.Flavour, result.Language)
	cliutil.Writef(os.Stdout, "Contexts: %d\n", result.Contexts)
	cliutil.Writef(os.Stdout, "Duration: %v\n\n", result.Duration.Round(time.Millisecond))
	for _, path := range result.Written {
		cliutil.Writef(os.Stdout, "  wrote %s\n", path)
	}
	if len(result.Issues) > 0 {
		cliutil.Writef(os.Stdout, "\nIssues:\n")
		for _, issue := range result.Issues {
			if issue.Key != "" {
				cliutil.Writef(os.Stdout, "  - %s (%s): %v\n", issue.Template, issue.Key, issue.Err)
			} else {
				cliutil.Writef(os.Stdout, "  - %s: %v\n", issue.Template, issue.Err)
			}
		}
		return fmt.Errorf("generation completed with %d issue(s)", len(result.Issues))
	}
	cliutil.Writef(os.Stdout, "\nGeneration completed successfully!\n")
	return nil
}

// inspectFlags contains flags for the inspect command
type inspectFlags struct {
	schema string
}

func setupInspectFlags() (*flag.FlagSet, *inspectFlags) {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	flags := &inspectFlags{}

	fs.StringVar(&flags.schema, "schema", pipeline.DefaultSchemaPath, "path to the OpenAPI description")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: flavourgen inspect [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Parse an OpenAPI description, resolve its references and print a structural summary.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
	}

	return fs, flags
}

func handleInspect(args []string) error {
	fs, flags := setupInspectFlags()

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("inspect command takes no positional arguments")
	}

	result, err := parser.New().Parse(flags.schema)
	if err != nil {
		return fmt.Errorf("parsing description: %w", err)
	}
	graph, err := resolver.Resolve(result.Document)
	if err != nil {
		return fmt.Errorf("resolving references: %w", err)
	}

	doc := graph.Document
	cliutil.Writef(os.Stdout, "Specification: %s\n", flags.schema)
	cliutil.Writef(os.Stdout, "OAS Version: %s\n", doc.OpenAPI)
	cliutil.Writef(os.Stdout, "Format: %s\n", result.SourceFormat)
	if doc.Info != nil {
		cliutil.Writef(os.Stdout, "Title: %s\n", doc.Info.Title)
		cliutil.Writef(os.Stdout, "Version: %s\n", doc.Info.Version)
	}
	cliutil.Writef(os.Stdout, "Resolved Refs: %d\n", graph.RefCount())
	cliutil.Writef(os.Stdout, "\nIterable collections:\n")
	for _, path := range resolver.CollectionPaths() {
		entries, err := graph.Collection(path)
		if err != nil || len(entries) == 0 {
			continue
		}
		cliutil.Writef(os.Stdout, "  %-28s %d\n", path, len(entries))
	}
	return nil
}
