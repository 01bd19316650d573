package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/flavourgen/flavourgen"
	"github.com/flavourgen/flavourgen/generrors"
)

// MaxDocumentSize is the maximum size (in bytes) allowed for a description
// document. This prevents resource exhaustion from arbitrarily large inputs.
const MaxDocumentSize = 10 * 1024 * 1024 // 10MB

// SourceFormat represents the format of the source description file.
type SourceFormat string

const (
	// SourceFormatYAML indicates the source was in YAML format
	SourceFormatYAML SourceFormat = "yaml"
	// SourceFormatJSON indicates the source was in JSON format
	SourceFormatJSON SourceFormat = "json"
)

// Parser handles description document parsing.
// The zero value is usable; Logger defaults to a no-op logger.
type Parser struct {
	// Logger is the structured logger for debug output
	// If nil, logging is disabled (default)
	Logger flavourgen.Logger

	// MaxDocumentSize overrides the document size limit in bytes.
	// Zero means use the package default.
	MaxDocumentSize int64
}

// New creates a new Parser instance with default settings.
func New() *Parser {
	return &Parser{}
}

// log returns the configured logger, or a no-op logger if none is set.
func (p *Parser) log() flavourgen.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return flavourgen.NopLogger{}
}

// Result contains the parsed document and source metadata.
//
// Callers should treat Result as read-only after parsing: the resolver and
// iteration engine share the document by pointer, and identity-sharing of
// resolved components depends on nobody mutating it.
type Result struct {
	// SourcePath is the input source path the document was read from.
	// For non-file sources this names the entry method with a format suffix.
	SourcePath string
	// SourceFormat is the detected format of the source (JSON or YAML)
	SourceFormat SourceFormat
	// Document is the typed document
	Document *Document
	// SourceSize is the size of the source data in bytes
	SourceSize int64
}

// Parse reads and parses a description document from a file path.
func (p *Parser) Parse(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &generrors.ParseError{
			Path:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}
	return p.parse(data, path)
}

// ParseReader parses a description document from a reader.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	limit := p.maxSize()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &generrors.ParseError{
			Path:    "ParseReader",
			Message: "failed to read input",
			Cause:   err,
		}
	}
	return p.parse(data, "ParseReader")
}

// ParseBytes parses a description document from raw bytes.
func (p *Parser) ParseBytes(data []byte) (*Result, error) {
	return p.parse(data, "ParseBytes")
}

func (p *Parser) parse(data []byte, sourcePath string) (*Result, error) {
	if int64(len(data)) > p.maxSize() {
		return nil, &generrors.ParseError{
			Path:    sourcePath,
			Message: fmt.Sprintf("document exceeds maximum size limit (%d bytes): input is %d bytes", p.maxSize(), len(data)),
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &generrors.ParseError{
			Path:    sourcePath,
			Message: "empty document",
		}
	}

	format := detectFormat(data)

	// The YAML parser handles both YAML and JSON input.
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		pe := &generrors.ParseError{
			Path:    sourcePath,
			Message: "malformed document",
			Cause:   err,
		}
		pe.Line, pe.Column = errorPosition(err)
		return nil, pe
	}

	if doc.OpenAPI == "" {
		return nil, &generrors.ParseError{
			Path:    sourcePath,
			Message: "missing required 'openapi' version field",
		}
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		return nil, &generrors.ParseError{
			Path:    sourcePath,
			Message: fmt.Sprintf("unsupported OpenAPI version %q: this tool assumes the 3.x object model", doc.OpenAPI),
		}
	}

	p.log().Debug("parsed description document",
		"source", sourcePath,
		"format", string(format),
		"version", doc.OpenAPI,
		"paths", len(doc.Paths))

	return &Result{
		SourcePath:   sourcePath,
		SourceFormat: format,
		Document:     &doc,
		SourceSize:   int64(len(data)),
	}, nil
}

func (p *Parser) maxSize() int64 {
	if p.MaxDocumentSize > 0 {
		return p.MaxDocumentSize
	}
	return MaxDocumentSize
}

// detectFormat distinguishes JSON from YAML by the first non-space byte.
func detectFormat(data []byte) SourceFormat {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return SourceFormatJSON
	}
	return SourceFormatYAML
}

// errorPosition extracts a line/column position from a yaml error when the
// library exposes one. Returns zeros when unknown.
func errorPosition(err error) (line, column int) {
	// yaml/v4 reports positions inside its message text ("yaml: line N: ...");
	// only structured positions are worth extracting.
	msg := err.Error()
	if _, scanErr := fmt.Sscanf(msg, "yaml: line %d:", &line); scanErr != nil {
		return 0, 0
	}
	return line, 0
}
