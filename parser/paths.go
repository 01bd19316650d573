package parser

// PathItem describes the operations available on a single path.
type PathItem struct {
	Summary     string            `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Get         *Operation        `yaml:"get,omitempty" json:"get,omitempty"`
	Put         *Operation        `yaml:"put,omitempty" json:"put,omitempty"`
	Post        *Operation        `yaml:"post,omitempty" json:"post,omitempty"`
	Delete      *Operation        `yaml:"delete,omitempty" json:"delete,omitempty"`
	Options     *Operation        `yaml:"options,omitempty" json:"options,omitempty"`
	Head        *Operation        `yaml:"head,omitempty" json:"head,omitempty"`
	Patch       *Operation        `yaml:"patch,omitempty" json:"patch,omitempty"`
	Trace       *Operation        `yaml:"trace,omitempty" json:"trace,omitempty"`
	Servers     []*Server         `yaml:"servers,omitempty" json:"servers,omitempty"`
	Parameters  []*Ref[Parameter] `yaml:"parameters,omitempty" json:"parameters,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Operations returns the defined operations keyed by lowercase HTTP method.
// The map is rebuilt on each call; mutating it does not affect the PathItem.
func (pi *PathItem) Operations() map[string]*Operation {
	ops := make(map[string]*Operation, 8)
	for method, op := range map[string]*Operation{
		"get": pi.Get, "put": pi.Put, "post": pi.Post, "delete": pi.Delete,
		"options": pi.Options, "head": pi.Head, "patch": pi.Patch, "trace": pi.Trace,
	} {
		if op != nil {
			ops[method] = op
		}
	}
	return ops
}

// Operation describes a single API operation on a path.
type Operation struct {
	Tags         []string                  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Summary      string                    `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description  string                    `yaml:"description,omitempty" json:"description,omitempty"`
	ExternalDocs *ExternalDocs             `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`
	OperationID  string                    `yaml:"operationId,omitempty" json:"operationId,omitempty"`
	Parameters   []*Ref[Parameter]         `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	RequestBody  *Ref[RequestBody]         `yaml:"requestBody,omitempty" json:"requestBody,omitempty"`
	Responses    map[string]*Ref[Response] `yaml:"responses,omitempty" json:"responses,omitempty"`
	Callbacks    map[string]*Ref[Callback] `yaml:"callbacks,omitempty" json:"callbacks,omitempty"`
	Deprecated   *bool                     `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	Security     []SecurityRequirement     `yaml:"security,omitempty" json:"security,omitempty"`
	Servers      []*Server                 `yaml:"servers,omitempty" json:"servers,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Parameter describes a single operation parameter, uniquely identified by
// the combination of name and location.
type Parameter struct {
	Name            string                   `yaml:"name" json:"name"` // Required
	In              string                   `yaml:"in" json:"in"`     // Required: query, header, path, cookie
	Description     string                   `yaml:"description,omitempty" json:"description,omitempty"`
	Required        *bool                    `yaml:"required,omitempty" json:"required,omitempty"`
	Deprecated      *bool                    `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	AllowEmptyValue *bool                    `yaml:"allowEmptyValue,omitempty" json:"allowEmptyValue,omitempty"`
	Style           string                   `yaml:"style,omitempty" json:"style,omitempty"`
	Explode         *bool                    `yaml:"explode,omitempty" json:"explode,omitempty"`
	AllowReserved   *bool                    `yaml:"allowReserved,omitempty" json:"allowReserved,omitempty"`
	Schema          *Ref[Schema]             `yaml:"schema,omitempty" json:"schema,omitempty"`
	Example         any                      `yaml:"example,omitempty" json:"example,omitempty"`
	Examples        map[string]*Ref[Example] `yaml:"examples,omitempty" json:"examples,omitempty"`
	Content         map[string]*MediaType    `yaml:"content,omitempty" json:"content,omitempty"`
}

// RequestBody describes a single request body.
type RequestBody struct {
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty" json:"content,omitempty"`
	Required    *bool                 `yaml:"required,omitempty" json:"required,omitempty"`
}

// MediaType provides the schema and examples for one media type key.
type MediaType struct {
	Schema   *Ref[Schema]             `yaml:"schema,omitempty" json:"schema,omitempty"`
	Example  any                      `yaml:"example,omitempty" json:"example,omitempty"`
	Examples map[string]*Ref[Example] `yaml:"examples,omitempty" json:"examples,omitempty"`
	Encoding map[string]*Encoding     `yaml:"encoding,omitempty" json:"encoding,omitempty"`
}

// Encoding is a single encoding definition applied to one schema property.
type Encoding struct {
	ContentType   string                  `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	Headers       map[string]*Ref[Header] `yaml:"headers,omitempty" json:"headers,omitempty"`
	Style         string                  `yaml:"style,omitempty" json:"style,omitempty"`
	Explode       *bool                   `yaml:"explode,omitempty" json:"explode,omitempty"`
	AllowReserved *bool                   `yaml:"allowReserved,omitempty" json:"allowReserved,omitempty"`
}

// Response describes a single response from an API operation.
type Response struct {
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Headers     map[string]*Ref[Header] `yaml:"headers,omitempty" json:"headers,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty" json:"content,omitempty"`
	Links       map[string]*Ref[Link] `yaml:"links,omitempty" json:"links,omitempty"`
}

// Header follows the structure of Parameter, minus name and location
// (the name is the headers map key, the location implicitly "header").
type Header struct {
	Description     string                   `yaml:"description,omitempty" json:"description,omitempty"`
	Required        *bool                    `yaml:"required,omitempty" json:"required,omitempty"`
	Deprecated      *bool                    `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	AllowEmptyValue *bool                    `yaml:"allowEmptyValue,omitempty" json:"allowEmptyValue,omitempty"`
	Style           string                   `yaml:"style,omitempty" json:"style,omitempty"`
	Explode         *bool                    `yaml:"explode,omitempty" json:"explode,omitempty"`
	Schema          *Ref[Schema]             `yaml:"schema,omitempty" json:"schema,omitempty"`
	Example         any                      `yaml:"example,omitempty" json:"example,omitempty"`
	Examples        map[string]*Ref[Example] `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// Link represents a possible design-time link for a response.
type Link struct {
	OperationRef string         `yaml:"operationRef,omitempty" json:"operationRef,omitempty"`
	OperationID  string         `yaml:"operationId,omitempty" json:"operationId,omitempty"`
	Parameters   map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	RequestBody  any            `yaml:"requestBody,omitempty" json:"requestBody,omitempty"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	Server       *Server        `yaml:"server,omitempty" json:"server,omitempty"`
}

// Example describes an internal or external example.
type Example struct {
	Summary       string `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description   string `yaml:"description,omitempty" json:"description,omitempty"`
	Value         any    `yaml:"value,omitempty" json:"value,omitempty"`
	ExternalValue string `yaml:"externalValue,omitempty" json:"externalValue,omitempty"`
}

// Callback maps runtime expressions to the path items invoked out-of-band.
type Callback map[string]*Ref[PathItem]
