package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/flavourgen/flavourgen/flavour"
	"github.com/flavourgen/flavourgen/internal/cliutil"
	"github.com/flavourgen/flavourgen/internal/fileutil"
)

// defaultWorkspaceDir is the workspace configuration directory; the flavour
// root lives beneath it.
const defaultWorkspaceDir = ".openapi"

const starterWorkspaceConfig = `# Workspace defaults for flavourgen run.
schema = "openapi.yaml"
flavour = "default"
`

// workspaceConfig is the on-disk shape of .openapi/config.toml. Values act
// as defaults for run; flags override them.
type workspaceConfig struct {
	Schema  string `toml:"schema,omitempty"`
	Flavour string `toml:"flavour,omitempty"`
}

// loadWorkspaceConfig reads <dir>/config.toml. A missing file yields the
// zero config; a malformed one is an error so typos do not silently fall
// back to built-in defaults.
func loadWorkspaceConfig(dir string) (workspaceConfig, error) {
	var cfg workspaceConfig
	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("malformed %s: %w", filepath.Join(dir, "config.toml"), err)
	}
	return cfg, nil
}

const starterConfig = `# Flavour configuration.
#
# Each [[templates]] entry names a template body file inside this directory,
# the output path pattern it renders to, and optionally the collection of the
# resolved description it iterates over. Available {var} placeholders:
# {key} {path} {name} {Name} {language} {template}.

language = "go"
version = "0.1.0"

# The transformation module. Must export memory, alloc(size) and
# render(ptr, len), and may import env.emit and env.log.
# module = "processor.wasm"

[[templates]]
input = "handler.tmpl"
output = "handlers/{path}.go"
iteration = "paths"
`

const starterTemplate = `// Starter template body. The transformation module receives this body
// verbatim along with the generation context; its meaning is entirely up to
// the module.
`

// initFlags contains flags for the init command
type initFlags struct {
	dir string
}

func setupInitFlags() (*flag.FlagSet, *initFlags) {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	flags := &initFlags{}

	fs.StringVar(&flags.dir, "dir", defaultWorkspaceDir, "workspace directory to create")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: flavourgen init [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Initialize the workspace layout: the flavour root directory and a\n")
		_, _ = fmt.Fprintf(output, "config.toml holding run defaults.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
	}

	return fs, flags
}

func handleInit(args []string) error {
	fs, flags := setupInitFlags()

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("init command takes no positional arguments")
	}

	if err := os.MkdirAll(filepath.Join(flags.dir, "flavours"), fileutil.DirDefault); err != nil {
		return fmt.Errorf("creating flavour directory: %w", err)
	}
	configPath := filepath.Join(flags.dir, "config.toml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(starterWorkspaceConfig), fileutil.ReadableByAll); err != nil {
			return fmt.Errorf("writing workspace configuration: %w", err)
		}
	}
	cliutil.Writef(os.Stdout, "Initialized workspace at %s\n", flags.dir)
	cliutil.Writef(os.Stdout, "Next: flavourgen create <name> to scaffold a flavour.\n")
	return nil
}

// createFlags contains flags for the create command
type createFlags struct {
	flavourDir string
}

func setupCreateFlags() (*flag.FlagSet, *createFlags) {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	flags := &createFlags{}

	fs.StringVar(&flags.flavourDir, "flavour-dir", flavour.DefaultDir, "flavour root directory")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: flavourgen create [flags] <name>\n\n")
		_, _ = fmt.Fprintf(output, "Scaffold a new flavour: a config.toml and a starter template body.\n")
		_, _ = fmt.Fprintf(output, "The transformation module (processor.wasm) must be supplied separately.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  flavourgen create default\n")
		_, _ = fmt.Fprintf(output, "  flavourgen create server --flavour-dir tools/flavours\n")
	}

	return fs, flags
}

func handleCreate(args []string) error {
	fs, flags := setupCreateFlags()

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("create command requires exactly one flavour name")
	}

	name := fs.Arg(0)
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return fmt.Errorf("invalid flavour name %q", name)
	}

	dir := filepath.Join(flags.flavourDir, name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("flavour %q already exists at %s", name, dir)
	}
	if err := os.MkdirAll(dir, fileutil.DirDefault); err != nil {
		return fmt.Errorf("creating flavour directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, flavour.ConfigFileName), []byte(starterConfig), fileutil.ReadableByAll); err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "handler.tmpl"), []byte(starterTemplate), fileutil.ReadableByAll); err != nil {
		return fmt.Errorf("writing starter template: %w", err)
	}

	cliutil.Writef(os.Stdout, "Created flavour %q at %s\n", name, dir)
	cliutil.Writef(os.Stdout, "Add a transformation module at %s before running.\n", filepath.Join(dir, flavour.DefaultModuleName))
	return nil
}
