package generrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	cause := errors.New("yaml: unexpected node")
	err := &ParseError{
		Path:    "openapi.yaml",
		Line:    12,
		Column:  3,
		Message: "malformed document",
		Cause:   cause,
	}

	assert.Contains(t, err.Error(), "openapi.yaml")
	assert.Contains(t, err.Error(), "line 12")
	assert.Contains(t, err.Error(), "column 3")
	assert.True(t, errors.Is(err, ErrParse))
	assert.ErrorIs(t, err, cause)
}

func TestReferenceError(t *testing.T) {
	tests := []struct {
		name         string
		err          *ReferenceError
		wantCircular bool
		wantContains []string
	}{
		{
			name: "unresolved target",
			err: &ReferenceError{
				Ref: "#/components/schemas/Missing",
			},
			wantContains: []string{"unresolved reference", "#/components/schemas/Missing"},
		},
		{
			name: "circular chain",
			err: &ReferenceError{
				Ref:        "#/components/schemas/Pet",
				Chain:      []string{"#/components/schemas/Pet", "#/components/schemas/Pet"},
				IsCircular: true,
			},
			wantCircular: true,
			wantContains: []string{"circular reference", "Pet", "->"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.wantContains {
				assert.Contains(t, tt.err.Error(), want)
			}
			assert.True(t, errors.Is(tt.err, ErrReference))
			assert.Equal(t, tt.wantCircular, errors.Is(tt.err, ErrCircularReference))
		})
	}
}

func TestFlavourErrorKinds(t *testing.T) {
	tests := []struct {
		kind     FlavourErrorKind
		sentinel error
		fatal    bool
	}{
		{FlavourNotFound, ErrFlavourNotFound, true},
		{FlavourInvalid, nil, true},
		{FlavourInvalidIterationTarget, ErrInvalidIterationTarget, false},
		{FlavourOutputCollision, ErrOutputCollision, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := &FlavourError{Kind: tt.kind, Flavour: "axum"}
			assert.True(t, errors.Is(err, ErrFlavour))
			assert.Equal(t, tt.fatal, tt.kind.Fatal())
			if tt.sentinel != nil {
				assert.True(t, errors.Is(err, tt.sentinel))
			}
		})
	}
}

func TestFlavourErrorMessage(t *testing.T) {
	err := &FlavourError{
		Kind:     FlavourInvalid,
		Flavour:  "axum",
		Template: "handler",
		Message:  "missing output pattern",
	}
	assert.Contains(t, err.Error(), "invalid flavour")
	assert.Contains(t, err.Error(), "axum")
	assert.Contains(t, err.Error(), "template: handler")
	assert.Contains(t, err.Error(), "missing output pattern")
}

func TestSandboxError(t *testing.T) {
	trapped := &SandboxError{Kind: SandboxTrapped, Template: "handler", Key: "/users"}
	assert.True(t, errors.Is(trapped, ErrSandbox))
	assert.False(t, errors.Is(trapped, ErrBudgetExceeded))
	assert.Contains(t, trapped.Error(), "sandbox trapped")
	assert.Contains(t, trapped.Error(), "/users")

	budget := &SandboxError{Kind: SandboxBudgetExceeded, Template: "handler"}
	assert.True(t, errors.Is(budget, ErrSandbox))
	assert.True(t, errors.Is(budget, ErrBudgetExceeded))
	assert.Contains(t, budget.Error(), "budget exceeded")
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	inner := &FlavourError{Kind: FlavourOutputCollision, Path: "handlers/_users.out"}
	wrapped := fmt.Errorf("template handler: %w", inner)

	var fe *FlavourError
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, FlavourOutputCollision, fe.Kind)
	assert.True(t, errors.Is(wrapped, ErrOutputCollision))
}
