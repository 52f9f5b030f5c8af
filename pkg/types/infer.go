package types

// InferTypesOutput is the output of the json2gql_infer_types tool.
type InferTypesOutput struct {
	// Root type name; always the last entry of Types.
	RootType string `json:"root_type"`

	// Format of Schema: graphql or jsonschema.
	Format string `json:"format"`

	// Rendered schema text.
	Schema string `json:"schema"`

	// Declarations in emission order: nested types before their parents.
	Types []TypeInfo `json:"types,omitzero"`

	TypeCount int `json:"type_count"`

	// JSON Schema of the root, set when format is jsonschema.
	JSONSchema any `json:"json_schema,omitempty"`

	// Hint for the next step
	Hint string `json:"hint,omitempty"`
}

// TypeInfo is one declared type.
type TypeInfo struct {
	Name   string      `json:"name"`
	Fields []FieldInfo `json:"fields,omitzero"`
}

// FieldInfo is one field of a declared type.
type FieldInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ListTagsOutput is the output of the json2gql_list_tags tool.
type ListTagsOutput struct {
	Prefix string    `json:"prefix"`
	Tags   []TagInfo `json:"tags,omitzero"`
}

// TagInfo is one wrapper key and the type name it produces.
type TagInfo struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	TypeName string `json:"type_name"` // prefix + name
}
