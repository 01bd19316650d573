package parser

// Schema defines an input or output data type.
// This is the subset of JSON Schema that code generation flavours consume;
// structural validation keywords outside it land in Extra.
type Schema struct {
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Type        string `yaml:"type,omitempty" json:"type,omitempty"`
	Format      string `yaml:"format,omitempty" json:"format,omitempty"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
	Example     any    `yaml:"example,omitempty" json:"example,omitempty"`
	Enum        []any  `yaml:"enum,omitempty" json:"enum,omitempty"`

	// Object keywords
	Properties map[string]*Ref[Schema] `yaml:"properties,omitempty" json:"properties,omitempty"`
	Required   []string                `yaml:"required,omitempty" json:"required,omitempty"`

	// Array keywords
	Items       *Ref[Schema] `yaml:"items,omitempty" json:"items,omitempty"`
	MinItems    *int         `yaml:"minItems,omitempty" json:"minItems,omitempty"`
	MaxItems    *int         `yaml:"maxItems,omitempty" json:"maxItems,omitempty"`
	UniqueItems *bool        `yaml:"uniqueItems,omitempty" json:"uniqueItems,omitempty"`

	// Composition keywords
	AllOf []*Ref[Schema] `yaml:"allOf,omitempty" json:"allOf,omitempty"`
	OneOf []*Ref[Schema] `yaml:"oneOf,omitempty" json:"oneOf,omitempty"`
	AnyOf []*Ref[Schema] `yaml:"anyOf,omitempty" json:"anyOf,omitempty"`
	Not   *Ref[Schema]   `yaml:"not,omitempty" json:"not,omitempty"`

	// String and number constraints
	Pattern    string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	MinLength  *int     `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	MaxLength  *int     `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	Minimum    *float64 `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum    *float64 `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	MultipleOf *float64 `yaml:"multipleOf,omitempty" json:"multipleOf,omitempty"`

	// Annotations
	Deprecated    *bool          `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	ReadOnly      *bool          `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	WriteOnly     *bool          `yaml:"writeOnly,omitempty" json:"writeOnly,omitempty"`
	Discriminator *Discriminator `yaml:"discriminator,omitempty" json:"discriminator,omitempty"`
	XML           *XML           `yaml:"xml,omitempty" json:"xml,omitempty"`
	ExternalDocs  *ExternalDocs  `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`

	// Extra captures unmodeled keywords and specification extensions
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Discriminator aids serialization and deserialization when a payload may
// be one of a number of different schemas.
type Discriminator struct {
	PropertyName string            `yaml:"propertyName" json:"propertyName"` // Required
	Mapping      map[string]string `yaml:"mapping,omitempty" json:"mapping,omitempty"`
}

// XML allows for fine-tuned XML model definitions.
type XML struct {
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Prefix    string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Attribute *bool  `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Wrapped   *bool  `yaml:"wrapped,omitempty" json:"wrapped,omitempty"`
}
