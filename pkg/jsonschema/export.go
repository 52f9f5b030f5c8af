// Package jsonschema exports inferred type tables as JSON Schema
// (Draft 2020-12) documents.
package jsonschema

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/usestring/json2gql/pkg/typesystem"
)

const defsPrefix = "#/$defs/"

// Exporter maps type names to JSON Schema. Scalar names map to JSON types
// and formats, list types to arrays, table types to $ref links and tagged
// scalar names to single-key objects.
type Exporter struct {
	cfg    *typesystem.Config
	tagged map[string]string // prefixed tag name -> wrapper key
}

// NewExporter returns an Exporter using cfg for the placeholder and tag
// names. A nil cfg uses the defaults.
func NewExporter(cfg *typesystem.Config) *Exporter {
	if cfg == nil {
		cfg = typesystem.Resolve()
	}
	tags := cfg.Tags()
	tagged := make(map[string]string, len(tags))
	for _, key := range tags.Keys() {
		name := cfg.TagPrefix() + tags[key]
		if _, dup := tagged[name]; !dup {
			tagged[name] = key
		}
	}
	return &Exporter{cfg: cfg, tagged: tagged}
}

// FromTable builds a schema whose root is a $ref to the root declaration.
// Every declaration of table becomes an entry of $defs. An empty root
// selects the last declaration, which is where conversions store the root.
func (e *Exporter) FromTable(table *typesystem.TypeTable, root string) *jsonschema.Schema {
	names := table.Names()
	if root == "" && len(names) > 0 {
		root = names[len(names)-1]
	}

	defs := make(jsonschema.Definitions, len(names))
	for _, decl := range table.Declarations() {
		defs[decl.Name] = e.declaration(table, decl)
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       root,
		Ref:         ref(root),
		Definitions: defs,
	}
}

func (e *Exporter) declaration(table *typesystem.TypeTable, decl typesystem.Declaration) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, f := range decl.Fields {
		props.Set(f.Name, e.TypeSchema(table, f.Type))
	}
	return &jsonschema.Schema{
		Type:       "object",
		Title:      decl.Name,
		Properties: props,
	}
}

// TypeSchema returns the schema of one type name as it appears in a field.
func (e *Exporter) TypeSchema(table *typesystem.TypeTable, name string) *jsonschema.Schema {
	if inner, ok := listElement(name); ok {
		s := &jsonschema.Schema{Type: "array"}
		if inner != e.cfg.NullTypeName() {
			s.Items = e.TypeSchema(table, inner)
		}
		return s
	}

	switch name {
	case typesystem.TypeInt:
		return &jsonschema.Schema{Type: "integer"}
	case typesystem.TypeFloat:
		return &jsonschema.Schema{Type: "number"}
	case typesystem.TypeBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	case typesystem.TypeString:
		return &jsonschema.Schema{Type: "string"}
	case typesystem.TypeDate:
		return &jsonschema.Schema{Type: "string", Format: "date"}
	case typesystem.TypeDateTime:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case typesystem.TypeID:
		return &jsonschema.Schema{Type: "string", Format: "uri"}
	case e.cfg.NullTypeName():
		return jsonschema.TrueSchema
	}

	if table != nil {
		if _, ok := table.Get(name); ok {
			return &jsonschema.Schema{Ref: ref(name)}
		}
	}
	if key, ok := e.tagged[name]; ok {
		props := jsonschema.NewProperties()
		props.Set(key, jsonschema.TrueSchema)
		return &jsonschema.Schema{
			Type:       "object",
			Title:      name,
			Properties: props,
			Required:   []string{key},
		}
	}
	return jsonschema.TrueSchema
}

// ref builds a $defs reference, escaping name as a JSON pointer token
// inside a URI fragment.
func ref(name string) string {
	token := strings.NewReplacer("~", "~0", "/", "~1").Replace(name)
	return defsPrefix + url.PathEscape(token)
}

func listElement(name string) (string, bool) {
	if len(name) >= 2 && strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		return name[1 : len(name)-1], true
	}
	return "", false
}

// FromTable exports table with the default configuration.
func FromTable(table *typesystem.TypeTable, root string) *jsonschema.Schema {
	return NewExporter(nil).FromTable(table, root)
}

// Marshal renders a schema as indented JSON.
func Marshal(s *jsonschema.Schema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
