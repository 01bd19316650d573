package sandbox

import (
	"encoding/json"
	"fmt"

	"github.com/flavourgen/flavourgen/iterate"
)

// ABIVersion is the interchange schema version written into every payload.
// Guests should reject versions they do not understand.
const ABIVersion = 1

// Payload is the serialized view of one generation context handed to the
// guest: a flat, versioned schema independent of any host-internal memory
// layout.
type Payload struct {
	// Version is the ABI version of this payload (always ABIVersion).
	Version int `json:"abi_version"`
	// Template is the template input identifier being rendered.
	Template string `json:"template"`
	// TemplateBody is the raw template body, opaque to the host.
	TemplateBody string `json:"template_body"`
	// Key is the iterated element's key ("" for a root context).
	Key string `json:"key"`
	// Vars are the substitution variables derived from the key.
	Vars map[string]string `json:"vars"`
	// Element is the resolved element serialized as plain JSON data.
	Element json.RawMessage `json:"element"`
}

// NewPayload builds the payload for one generation context.
// The element is serialized eagerly; resolution guarantees the element
// graph is acyclic, so marshaling terminates.
func NewPayload(gctx *iterate.GenerationContext, templateBody []byte) (*Payload, error) {
	element, err := json.Marshal(gctx.Element)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize element for key %q: %w", gctx.Key, err)
	}
	return &Payload{
		Version:      ABIVersion,
		Template:     gctx.Template.Input,
		TemplateBody: string(templateBody),
		Key:          gctx.Key,
		Vars:         gctx.Vars,
		Element:      element,
	}, nil
}

// Encode serializes the payload for transfer into guest memory.
func (p *Payload) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}
