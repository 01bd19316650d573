package parser

// Document represents an OpenAPI 3.1 description document.
// A meaningful document resolves to at least one of paths, components or
// webhooks being present; the parser does not enforce this structurally,
// the consuming pipeline does.
// Reference: https://spec.openapis.org/oas/v3.1.0.html
type Document struct {
	OpenAPI      string                  `yaml:"openapi" json:"openapi"` // Required: "3.x.y"
	Info         *Info                   `yaml:"info,omitempty" json:"info,omitempty"`
	Servers      []*Server               `yaml:"servers,omitempty" json:"servers,omitempty"`
	Paths        map[string]*Ref[PathItem] `yaml:"paths,omitempty" json:"paths,omitempty"`
	Webhooks     map[string]*Ref[PathItem] `yaml:"webhooks,omitempty" json:"webhooks,omitempty"`
	Components   *Components             `yaml:"components,omitempty" json:"components,omitempty"`
	Security     []SecurityRequirement   `yaml:"security,omitempty" json:"security,omitempty"`
	Tags         []*Tag                  `yaml:"tags,omitempty" json:"tags,omitempty"`
	ExternalDocs *ExternalDocs           `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Info provides metadata about the API.
type Info struct {
	Title          string   `yaml:"title" json:"title"` // Required
	Summary        string   `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	TermsOfService string   `yaml:"termsOfService,omitempty" json:"termsOfService,omitempty"`
	Contact        *Contact `yaml:"contact,omitempty" json:"contact,omitempty"`
	License        *License `yaml:"license,omitempty" json:"license,omitempty"`
	Version        string   `yaml:"version" json:"version"` // Required

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Contact information for the exposed API.
type Contact struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
}

// License information for the exposed API.
// Identifier and URL are mutually exclusive.
type License struct {
	Name       string `yaml:"name" json:"name"` // Required
	Identifier string `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	URL        string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Server represents a server hosting the API.
type Server struct {
	URL         string                     `yaml:"url" json:"url"` // Required
	Description string                     `yaml:"description,omitempty" json:"description,omitempty"`
	Variables   map[string]*ServerVariable `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// ServerVariable is a variable for server URL template substitution.
type ServerVariable struct {
	Enum        []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	Default     string   `yaml:"default" json:"default"` // Required
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// Tag adds metadata to a single tag used by operations.
type Tag struct {
	Name         string        `yaml:"name" json:"name"` // Required
	Description  string        `yaml:"description,omitempty" json:"description,omitempty"`
	ExternalDocs *ExternalDocs `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`
}

// ExternalDocs references an external resource for extended documentation.
type ExternalDocs struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	URL         string `yaml:"url" json:"url"` // Required
}

// SecurityRequirement lists required security schemes and their scopes.
// Each name must correspond to a declared security scheme.
type SecurityRequirement map[string][]string

// Components holds reusable objects for different aspects of the document.
// Objects defined here have no effect on the API unless explicitly
// referenced from outside the components object.
type Components struct {
	Schemas         map[string]*Ref[Schema]         `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	Responses       map[string]*Ref[Response]       `yaml:"responses,omitempty" json:"responses,omitempty"`
	Parameters      map[string]*Ref[Parameter]      `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Examples        map[string]*Ref[Example]        `yaml:"examples,omitempty" json:"examples,omitempty"`
	RequestBodies   map[string]*Ref[RequestBody]    `yaml:"requestBodies,omitempty" json:"requestBodies,omitempty"`
	Headers         map[string]*Ref[Header]         `yaml:"headers,omitempty" json:"headers,omitempty"`
	SecuritySchemes map[string]*Ref[SecurityScheme] `yaml:"securitySchemes,omitempty" json:"securitySchemes,omitempty"`
	Links           map[string]*Ref[Link]           `yaml:"links,omitempty" json:"links,omitempty"`
	Callbacks       map[string]*Ref[Callback]       `yaml:"callbacks,omitempty" json:"callbacks,omitempty"`
	PathItems       map[string]*Ref[PathItem]       `yaml:"pathItems,omitempty" json:"pathItems,omitempty"`

	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline" json:"-"`
}

// SecurityScheme defines a security scheme usable by operations.
// The populated fields depend on Type: "apiKey" uses Name/In, "http" uses
// Scheme/BearerFormat, "oauth2" uses Flows, "openIdConnect" uses
// OpenIDConnectURL, and "mutualTLS" carries only the description.
type SecurityScheme struct {
	Type             string      `yaml:"type" json:"type"` // Required
	Description      string      `yaml:"description,omitempty" json:"description,omitempty"`
	Name             string      `yaml:"name,omitempty" json:"name,omitempty"`
	In               string      `yaml:"in,omitempty" json:"in,omitempty"`
	Scheme           string      `yaml:"scheme,omitempty" json:"scheme,omitempty"`
	BearerFormat     string      `yaml:"bearerFormat,omitempty" json:"bearerFormat,omitempty"`
	Flows            *OAuthFlows `yaml:"flows,omitempty" json:"flows,omitempty"`
	OpenIDConnectURL string      `yaml:"openIdConnectUrl,omitempty" json:"openIdConnectUrl,omitempty"`
}

// OAuthFlows holds configuration for the supported OAuth flow types.
type OAuthFlows struct {
	Implicit          *OAuthFlow `yaml:"implicit,omitempty" json:"implicit,omitempty"`
	Password          *OAuthFlow `yaml:"password,omitempty" json:"password,omitempty"`
	ClientCredentials *OAuthFlow `yaml:"clientCredentials,omitempty" json:"clientCredentials,omitempty"`
	AuthorizationCode *OAuthFlow `yaml:"authorizationCode,omitempty" json:"authorizationCode,omitempty"`
}

// OAuthFlow holds configuration details for one OAuth flow type.
type OAuthFlow struct {
	AuthorizationURL string            `yaml:"authorizationUrl,omitempty" json:"authorizationUrl,omitempty"`
	TokenURL         string            `yaml:"tokenUrl,omitempty" json:"tokenUrl,omitempty"`
	RefreshURL       string            `yaml:"refreshUrl,omitempty" json:"refreshUrl,omitempty"`
	Scopes           map[string]string `yaml:"scopes,omitempty" json:"scopes,omitempty"`
}
