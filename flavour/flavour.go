// Package flavour loads flavour catalogs from the local workspace.
//
// A flavour is a directory under the workspace flavour root containing a
// config.toml listing template entries, the raw template bodies, and the
// flavour's sandboxed transformation module. The catalog performs no
// template-body parsing: templates and module bytes are opaque payloads
// handed to the sandbox package.
package flavour

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/flavourgen/flavourgen"
	"github.com/flavourgen/flavourgen/generrors"
)

const (
	// DefaultDir is the workspace-relative flavour root directory.
	DefaultDir = ".openapi/flavours"

	// ConfigFileName is the per-flavour configuration file name.
	ConfigFileName = "config.toml"

	// DefaultModuleName is the transformation module file name used when
	// the configuration does not name one.
	DefaultModuleName = "processor.wasm"
)

// Template is one catalog entry: an input template identifier, an output
// path pattern (may contain {var} substitution placeholders), and an
// optional iteration directive naming a collection path of the resolved
// graph (e.g. "paths", "components.schemas").
type Template struct {
	Input     string `toml:"input"`
	Output    string `toml:"output"`
	Iteration string `toml:"iteration,omitempty"`
}

// config is the on-disk shape of config.toml.
// "template" is accepted as an alias for "templates".
type config struct {
	Version   string     `toml:"version,omitempty"`
	Language  string     `toml:"language"`
	Module    string     `toml:"module,omitempty"`
	Templates []Template `toml:"templates"`
	Aliased   []Template `toml:"template"`
}

// Flavour is a loaded catalog: a language tag, an ordered sequence of
// template entries, and the opaque payloads they need. Immutable once
// loaded.
type Flavour struct {
	// Name is the flavour directory name.
	Name string
	// Dir is the flavour directory path.
	Dir string
	// Language is the target language tag.
	Language string
	// Version is the flavour's declared version, if any.
	Version string
	// Templates is the ordered template list.
	Templates []Template
	// Module is the raw transformation module (WASM bytes).
	Module []byte
	// Bodies holds the raw template bodies keyed by template input
	// identifier.
	Bodies map[string][]byte
}

// Catalog loads flavours from a flavour root directory.
// The zero value loads from DefaultDir; Logger defaults to a no-op logger.
type Catalog struct {
	// Root is the flavour root directory. Empty means DefaultDir.
	Root string
	// Logger is the structured logger for debug output
	Logger flavourgen.Logger
}

// Load is a convenience for (&Catalog{Root: root}).Load(name).
func Load(root, name string) (*Flavour, error) {
	return (&Catalog{Root: root}).Load(name)
}

// Load reads the named flavour's configuration, template bodies and
// transformation module. A missing flavour directory is a NotFound
// FlavourError; a malformed configuration or missing payload file is an
// Invalid FlavourError naming the offending template entry when possible.
func (c *Catalog) Load(name string) (*Flavour, error) {
	root := c.Root
	if root == "" {
		root = DefaultDir
	}
	dir := filepath.Join(root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &generrors.FlavourError{
			Kind:    generrors.FlavourNotFound,
			Flavour: name,
			Path:    dir,
			Cause:   err,
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		return nil, &generrors.FlavourError{
			Kind:    generrors.FlavourInvalid,
			Flavour: name,
			Path:    filepath.Join(dir, ConfigFileName),
			Message: "missing configuration",
			Cause:   err,
		}
	}

	var cfg config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &generrors.FlavourError{
			Kind:    generrors.FlavourInvalid,
			Flavour: name,
			Path:    filepath.Join(dir, ConfigFileName),
			Message: "malformed configuration",
			Cause:   err,
		}
	}

	templates, err := cfg.templateList(name)
	if err != nil {
		return nil, err
	}
	if cfg.Language == "" {
		return nil, invalid(name, "", "missing required 'language' field")
	}
	if len(templates) == 0 {
		return nil, invalid(name, "", "configuration declares no templates")
	}

	f := &Flavour{
		Name:      name,
		Dir:       dir,
		Language:  cfg.Language,
		Version:   cfg.Version,
		Templates: templates,
		Bodies:    make(map[string][]byte, len(templates)),
	}

	seen := make(map[string]bool, len(templates))
	for _, tpl := range templates {
		if tpl.Input == "" {
			return nil, invalid(name, "", "template entry missing 'input'")
		}
		if tpl.Output == "" {
			return nil, invalid(name, tpl.Input, "template entry missing 'output'")
		}
		if !filepath.IsLocal(tpl.Input) {
			return nil, invalid(name, tpl.Input, "template input must be a path inside the flavour directory")
		}
		if seen[tpl.Input] {
			continue
		}
		seen[tpl.Input] = true
		body, err := os.ReadFile(filepath.Join(dir, tpl.Input))
		if err != nil {
			fe := invalid(name, tpl.Input, "missing template body")
			fe.Cause = err
			return nil, fe
		}
		f.Bodies[tpl.Input] = body
	}

	moduleName := cfg.Module
	if moduleName == "" {
		moduleName = DefaultModuleName
	}
	if !filepath.IsLocal(moduleName) {
		return nil, invalid(name, "", fmt.Sprintf("module %q must be a path inside the flavour directory", moduleName))
	}
	f.Module, err = os.ReadFile(filepath.Join(dir, moduleName))
	if err != nil {
		fe := invalid(name, "", fmt.Sprintf("missing transformation module %q", moduleName))
		fe.Cause = err
		return nil, fe
	}

	c.log().Debug("loaded flavour",
		"flavour", name,
		"language", f.Language,
		"templates", len(f.Templates),
		"module_bytes", len(f.Module))
	return f, nil
}

// templateList merges the "templates" and aliased "template" keys.
func (cfg *config) templateList(name string) ([]Template, error) {
	if len(cfg.Templates) > 0 && len(cfg.Aliased) > 0 {
		return nil, invalid(name, "", "configuration sets both 'templates' and its alias 'template'")
	}
	if len(cfg.Templates) > 0 {
		return cfg.Templates, nil
	}
	return cfg.Aliased, nil
}

func (c *Catalog) log() flavourgen.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return flavourgen.NopLogger{}
}

func invalid(flavour, template, msg string) *generrors.FlavourError {
	return &generrors.FlavourError{
		Kind:     generrors.FlavourInvalid,
		Flavour:  flavour,
		Template: template,
		Message:  msg,
	}
}

// Body returns the raw template body for a template entry.
func (f *Flavour) Body(tpl Template) []byte {
	return f.Bodies[tpl.Input]
}
