// Package generrors provides structured error types for flavourgen.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of errors and implement appropriate recovery strategies.
//
// # Error Categories
//
//   - ParseError: YAML/JSON parsing failures in the API description
//   - ReferenceError: $ref resolution failures and circular references
//   - FlavourError: flavour catalog and template-level failures
//   - SandboxError: transformation module traps and budget exhaustion
//
// # Fatality
//
// ParseError, ReferenceError and the NotFound/Invalid flavour kinds abort a
// whole pipeline run. InvalidIterationTarget is scoped to one template;
// OutputCollision and SandboxError are scoped to one generation context.
//
// # Usage with errors.Is
//
//	result, err := pipeline.Run(ctx, pipeline.WithSchemaPath("openapi.yaml"))
//	if err != nil {
//	    var refErr *generrors.ReferenceError
//	    if errors.As(err, &refErr) {
//	        if refErr.IsCircular {
//	            // Handle circular reference specifically
//	        }
//	    }
//	}
package generrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrParse indicates a parsing failure occurred.
	ErrParse = errors.New("parse error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a circular $ref was detected.
	ErrCircularReference = errors.New("circular reference")

	// ErrFlavour indicates a flavour catalog or template failure.
	ErrFlavour = errors.New("flavour error")

	// ErrFlavourNotFound indicates the named flavour directory does not exist.
	ErrFlavourNotFound = errors.New("flavour not found")

	// ErrInvalidIterationTarget indicates a template's iteration directive
	// does not name an iterable collection of the resolved graph.
	ErrInvalidIterationTarget = errors.New("invalid iteration target")

	// ErrOutputCollision indicates two contexts produced the same output path.
	ErrOutputCollision = errors.New("output collision")

	// ErrSandbox indicates a transformation module failure.
	ErrSandbox = errors.New("sandbox error")

	// ErrBudgetExceeded indicates a module exhausted its execution budget.
	ErrBudgetExceeded = errors.New("execution budget exceeded")
)

// ParseError represents a failure to parse an API description document.
// This includes YAML/JSON deserialization errors and structural issues.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError represents a failure to resolve a $ref.
// This includes missing reference targets and circular reference chains.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// Chain is the resolution chain that led to the failure. For circular
	// references it names the cycle, ending at the revisited reference.
	Chain []string
	// IsCircular is true if this error is due to a circular reference
	IsCircular bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "unresolved reference"
	if e.IsCircular {
		msg = "circular reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if len(e.Chain) > 0 {
		msg += " (chain: " + strings.Join(e.Chain, " -> ") + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference when IsCircular is set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	return target == ErrCircularReference && e.IsCircular
}

// FlavourErrorKind distinguishes the failure modes of the flavour catalog
// and the per-template stages that consume it.
type FlavourErrorKind int

const (
	// FlavourNotFound means the flavour directory does not exist.
	FlavourNotFound FlavourErrorKind = iota
	// FlavourInvalid means the flavour configuration is malformed or a
	// referenced template/module file is missing.
	FlavourInvalid
	// FlavourInvalidIterationTarget means a template's iteration directive
	// does not resolve to an iterable collection.
	FlavourInvalidIterationTarget
	// FlavourOutputCollision means two contexts substituted to the same
	// output path.
	FlavourOutputCollision
)

// String returns a string representation of the kind.
func (k FlavourErrorKind) String() string {
	switch k {
	case FlavourNotFound:
		return "not found"
	case FlavourInvalid:
		return "invalid"
	case FlavourInvalidIterationTarget:
		return "invalid iteration target"
	case FlavourOutputCollision:
		return "output collision"
	default:
		return fmt.Sprintf("FlavourErrorKind(%d)", int(k))
	}
}

// Fatal reports whether this kind aborts a whole pipeline run.
// NotFound and Invalid are fatal; the others are scoped to one template or
// one generation context.
func (k FlavourErrorKind) Fatal() bool {
	return k == FlavourNotFound || k == FlavourInvalid
}

// FlavourError represents a flavour catalog or template failure.
type FlavourError struct {
	// Kind is the failure mode
	Kind FlavourErrorKind
	// Flavour is the flavour name
	Flavour string
	// Template is the offending template input identifier, when known
	Template string
	// Path is the offending file or output path, when known
	Path string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *FlavourError) Error() string {
	msg := "flavour error"
	switch e.Kind {
	case FlavourNotFound:
		msg = "flavour not found"
	case FlavourInvalid:
		msg = "invalid flavour"
	case FlavourInvalidIterationTarget:
		msg = "invalid iteration target"
	case FlavourOutputCollision:
		msg = "output collision"
	}
	if e.Flavour != "" {
		msg += ": " + e.Flavour
	}
	if e.Template != "" {
		msg += " (template: " + e.Template + ")"
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *FlavourError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrFlavour, and the kind-specific sentinels when appropriate.
func (e *FlavourError) Is(target error) bool {
	switch target {
	case ErrFlavour:
		return true
	case ErrFlavourNotFound:
		return e.Kind == FlavourNotFound
	case ErrInvalidIterationTarget:
		return e.Kind == FlavourInvalidIterationTarget
	case ErrOutputCollision:
		return e.Kind == FlavourOutputCollision
	}
	return false
}

// SandboxErrorKind distinguishes transformation module failure modes.
type SandboxErrorKind int

const (
	// SandboxTrapped means the module hit an illegal instruction, memory
	// violation, or declared failure through its exit status.
	SandboxTrapped SandboxErrorKind = iota
	// SandboxBudgetExceeded means the module exhausted its execution budget.
	SandboxBudgetExceeded
)

// String returns a string representation of the kind.
func (k SandboxErrorKind) String() string {
	switch k {
	case SandboxTrapped:
		return "trapped"
	case SandboxBudgetExceeded:
		return "budget exceeded"
	default:
		return fmt.Sprintf("SandboxErrorKind(%d)", int(k))
	}
}

// SandboxError represents a transformation module failure for one
// generation context. It never aborts the whole run.
type SandboxError struct {
	// Kind is the failure mode
	Kind SandboxErrorKind
	// Template is the template input identifier being rendered
	Template string
	// Key is the generation context key (path string or component name)
	Key string
	// Message describes the failure
	Message string
	// Cause is the underlying runtime error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *SandboxError) Error() string {
	msg := "sandbox trapped"
	if e.Kind == SandboxBudgetExceeded {
		msg = "sandbox budget exceeded"
	}
	if e.Template != "" {
		msg += ": template " + e.Template
	}
	if e.Key != "" {
		msg += " (key: " + e.Key + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *SandboxError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *SandboxError) Is(target error) bool {
	if target == ErrSandbox {
		return true
	}
	return target == ErrBudgetExceeded && e.Kind == SandboxBudgetExceeded
}
