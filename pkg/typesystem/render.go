package typesystem

import "strings"

// Field is one line of a declaration.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Declaration is a named type and its fields in source key order.
type Declaration struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// RenderType renders a type block:
//
//	type <name> {
//	  <field>: <Type><suffix>
//	}
//
// Lines are joined by the configured line separator. The field suffix is
// skipped for fields typed with the null placeholder.
func RenderType(cfg *Config, name string, fields []Field) string {
	if cfg == nil {
		cfg = Resolve()
	}
	suffix := cfg.FieldSuffix()
	null := cfg.NullTypeName()

	lines := make([]string, 0, len(fields)+2)
	lines = append(lines, "type "+name+" {")
	for _, f := range fields {
		line := "  " + f.Name + ": " + f.Type
		if suffix != "" && f.Type != null {
			line += suffix
		}
		lines = append(lines, line)
	}
	lines = append(lines, "}")
	return strings.Join(lines, cfg.LineSeparator())
}
