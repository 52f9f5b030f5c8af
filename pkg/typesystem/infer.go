package typesystem

import (
	"errors"
	"fmt"
)

// ErrMaxDepthExceeded is returned when a document nests deeper than the
// configured MaxDepth. Cyclic values always end in this error.
var ErrMaxDepthExceeded = errors.New("maximum nesting depth exceeded")

// Converter synthesizes type tables from values. It holds no per-run state
// and is safe for concurrent use.
type Converter struct {
	cfg        *Config
	classifier *Classifier
}

// NewConverter returns a Converter for cfg. A nil cfg uses the defaults.
func NewConverter(cfg *Config) *Converter {
	if cfg == nil {
		cfg = Resolve()
	}
	return &Converter{cfg: cfg, classifier: NewClassifier(cfg)}
}

// Config returns the converter's configuration.
func (c *Converter) Config() *Config { return c.cfg }

// Classifier returns the converter's classifier.
func (c *Converter) Classifier() *Classifier { return c.classifier }

// InferType returns the type name of v found under field of the owner type.
// Nested plain objects are declared in table under owner+delimiter+field.
// Arrays infer from their first element in the same owner/field context.
func (c *Converter) InferType(owner, field string, v Value, table *TypeTable) (string, error) {
	return c.infer(owner, field, v, table, 1)
}

// ConvertToTable builds the type table of root. The root declaration is
// stored under rootType, or the configured root type when empty, after the
// types nested in it.
//
// An array root is unwrapped to its first element until a non-array is
// reached. A root that is not an object yields an empty declaration.
func (c *Converter) ConvertToTable(root Value, rootType string) (*TypeTable, error) {
	if rootType == "" {
		rootType = c.cfg.RootType()
	}
	for depth := 1; root.Kind() == KindArray; depth++ {
		if depth > c.cfg.MaxDepth() {
			return nil, fmt.Errorf("%w: %s (limit %d)", ErrMaxDepthExceeded, rootType, c.cfg.MaxDepth())
		}
		root = root.Index(0)
	}

	table := NewTypeTable()
	decl := Declaration{Name: rootType, Fields: []Field{}}
	if root.Kind() == KindObject {
		var err error
		decl, err = c.declare(rootType, root, table, 1)
		if err != nil {
			return nil, err
		}
	}
	table.Set(decl, RenderType(c.cfg, decl.Name, decl.Fields))
	return table, nil
}

// Convert returns all declarations of root joined by "\n".
func (c *Converter) Convert(root Value, rootType string) (string, error) {
	table, err := c.ConvertToTable(root, rootType)
	if err != nil {
		return "", err
	}
	return table.String(), nil
}

func (c *Converter) infer(owner, field string, v Value, table *TypeTable, depth int) (string, error) {
	if depth > c.cfg.MaxDepth() {
		return "", fmt.Errorf("%w: %s%s%s (limit %d)",
			ErrMaxDepthExceeded, owner, c.cfg.NestedDelimiter(), field, c.cfg.MaxDepth())
	}

	cl := c.classifier.Classify(v)
	switch cl.Class {
	case ClassArray:
		elem, err := c.infer(owner, field, v.Index(0), table, depth+1)
		if err != nil {
			return "", err
		}
		return "[" + elem + "]", nil
	case ClassPlainObject:
		name := owner + c.cfg.NestedDelimiter() + field
		decl, err := c.declare(name, v, table, depth+1)
		if err != nil {
			return "", err
		}
		table.Set(decl, RenderType(c.cfg, decl.Name, decl.Fields))
		return name, nil
	default:
		return cl.TypeName, nil
	}
}

func (c *Converter) declare(name string, obj Value, table *TypeTable, depth int) (Declaration, error) {
	decl := Declaration{Name: name, Fields: make([]Field, 0, obj.Len())}
	for key, member := range obj.Members() {
		typ, err := c.infer(name, key, member, table, depth)
		if err != nil {
			return Declaration{}, err
		}
		decl.Fields = append(decl.Fields, Field{Name: key, Type: typ})
	}
	return decl, nil
}

// Convert converts a Go value (see FromAny) and returns its declarations.
func Convert(v any, rootType string, opts ...Option) (string, error) {
	value, err := FromAny(v)
	if err != nil {
		return "", err
	}
	return NewConverter(Resolve(opts...)).Convert(value, rootType)
}
