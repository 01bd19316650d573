package pipeline

import (
	"time"

	flavourgen "github.com/flavourgen/flavourgen"
	"github.com/flavourgen/flavourgen/flavour"
	"github.com/flavourgen/flavourgen/sandbox"
)

const (
	// DefaultSchemaPath is the API description read when no path is given.
	DefaultSchemaPath = "openapi.yaml"
	// DefaultFlavourName is the flavour used when no name is given.
	DefaultFlavourName = "default"
	// DefaultWorkers is the rendering worker count when no count is given.
	DefaultWorkers = 4
)

// Option configures a pipeline run.
type Option func(*options)

type options struct {
	schemaPath  string
	flavourName string
	flavourDir  string
	outputDir   string
	logger      flavourgen.Logger
	workers     int
	budget      time.Duration
	memoryPages uint32
	formatGo    bool
}

func newOptions(opts []Option) *options {
	o := &options{
		schemaPath:  DefaultSchemaPath,
		flavourName: DefaultFlavourName,
		flavourDir:  flavour.DefaultDir,
		outputDir:   ".",
		logger:      flavourgen.NopLogger{},
		workers:     DefaultWorkers,
		budget:      sandbox.DefaultBudget,
		memoryPages: sandbox.DefaultMemoryLimitPages,
		formatGo:    true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = flavourgen.NopLogger{}
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}

// WithSchemaPath sets the API description path. Default "openapi.yaml".
func WithSchemaPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.schemaPath = path
		}
	}
}

// WithFlavourName selects the flavour to run. Default "default".
func WithFlavourName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.flavourName = name
		}
	}
}

// WithFlavourDir sets the flavour root directory.
// Default ".openapi/flavours".
func WithFlavourDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.flavourDir = dir
		}
	}
}

// WithOutputDir sets the directory output paths are resolved against.
// Default is the current directory.
func WithOutputDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.outputDir = dir
		}
	}
}

// WithLogger sets the structured logger for the run.
func WithLogger(logger flavourgen.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithWorkers sets the number of concurrent rendering workers.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithRenderBudget sets the per-context execution budget for the
// transformation module.
func WithRenderBudget(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.budget = d
		}
	}
}

// WithMemoryLimitPages caps the transformation module's linear memory, in
// 64 KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(o *options) {
		if pages > 0 {
			o.memoryPages = pages
		}
	}
}

// WithGoFormatting controls goimports-style formatting of generated .go
// files for flavours targeting Go. Enabled by default.
func WithGoFormatting(enabled bool) Option {
	return func(o *options) { o.formatGo = enabled }
}
