package schema

// Schema is the subset of JSON Schema understood by the built-in provider.
//
// Schemas decode from YAML or JSON endpoint descriptions. Type is either a
// single type name or a list of names; "null" in the list, or Nullable, admits
// nil values.
type Schema struct {
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`

	Type     any   `yaml:"type,omitempty" json:"type,omitempty"`
	Nullable bool  `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Enum     []any `yaml:"enum,omitempty" json:"enum,omitempty"`
	Const    any   `yaml:"const,omitempty" json:"const,omitempty"`

	// Numbers
	MultipleOf       *float64 `yaml:"multipleOf,omitempty" json:"multipleOf,omitempty"`
	Minimum          *float64 `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum          *float64 `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	ExclusiveMinimum bool     `yaml:"exclusiveMinimum,omitempty" json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `yaml:"exclusiveMaximum,omitempty" json:"exclusiveMaximum,omitempty"`

	// Strings
	MinLength *int   `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	MaxLength *int   `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	Pattern   string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Format    string `yaml:"format,omitempty" json:"format,omitempty"`

	// Arrays
	Items       *Schema `yaml:"items,omitempty" json:"items,omitempty"`
	MinItems    *int    `yaml:"minItems,omitempty" json:"minItems,omitempty"`
	MaxItems    *int    `yaml:"maxItems,omitempty" json:"maxItems,omitempty"`
	UniqueItems bool    `yaml:"uniqueItems,omitempty" json:"uniqueItems,omitempty"`

	// Objects
	Properties map[string]*Schema `yaml:"properties,omitempty" json:"properties,omitempty"`
	Required   []string           `yaml:"required,omitempty" json:"required,omitempty"`
	// AdditionalProperties, when set to false, rejects undeclared properties.
	AdditionalProperties *bool `yaml:"additionalProperties,omitempty" json:"additionalProperties,omitempty"`
	MinProperties        *int  `yaml:"minProperties,omitempty" json:"minProperties,omitempty"`
	MaxProperties        *int  `yaml:"maxProperties,omitempty" json:"maxProperties,omitempty"`

	// Composition
	AllOf []*Schema `yaml:"allOf,omitempty" json:"allOf,omitempty"`
	AnyOf []*Schema `yaml:"anyOf,omitempty" json:"anyOf,omitempty"`
	OneOf []*Schema `yaml:"oneOf,omitempty" json:"oneOf,omitempty"`
	Not   *Schema   `yaml:"not,omitempty" json:"not,omitempty"`
}

// Types returns the declared type names.
func (s *Schema) Types() []string {
	switch t := s.Type.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		types := make([]string, 0, len(t))
		for _, v := range t {
			if name, ok := v.(string); ok {
				types = append(types, name)
			}
		}
		return types
	}
	return nil
}

// IsNullable reports whether nil is an acceptable value.
func (s *Schema) IsNullable() bool {
	if s.Nullable {
		return true
	}
	for _, t := range s.Types() {
		if t == "null" {
			return true
		}
	}
	return false
}

// Constructors for the common shapes, mostly useful in Go-declared endpoints.

// String returns a schema accepting any string.
func String() *Schema { return &Schema{Type: "string"} }

// Number returns a schema accepting any number.
func Number() *Schema { return &Schema{Type: "number"} }

// Integer returns a schema accepting whole numbers.
func Integer() *Schema { return &Schema{Type: "integer"} }

// Boolean returns a schema accepting true or false.
func Boolean() *Schema { return &Schema{Type: "boolean"} }

// Array returns a schema accepting arrays whose items satisfy items.
func Array(items *Schema) *Schema { return &Schema{Type: "array", Items: items} }

// Object returns a schema for an object with the given properties, all of
// them required.
//
//	schema.Object(map[string]*schema.Schema{
//	    "id":   schema.Number(),
//	    "name": schema.String(),
//	})
func Object(props map[string]*Schema) *Schema {
	s := &Schema{Type: "object", Properties: props}
	for name := range props {
		s.Required = append(s.Required, name)
	}
	sortStrings(s.Required)
	return s
}

// Optional returns a copy of s that also admits nil.
func Optional(s *Schema) *Schema {
	cp := *s
	cp.Nullable = true
	return &cp
}
