// Package typesystem infers GraphQL-style type declarations from JSON-like
// documents.
//
// A conversion walks one document, assigns a type name to every value and
// synthesizes a named type for every nested object. Nested type names are
// derived from the owning type and the field name, never from the content:
//
//	conv := typesystem.NewConverter(typesystem.Resolve(typesystem.WithBuiltinTags(true)))
//	out, err := conv.Convert(doc, "todos")
//
// Single-key wrapper objects whose key is in the tag table (MongoDB extended
// JSON such as {"$oid": "..."}) classify as scalars instead of nested types.
package typesystem

import (
	"encoding/json"
	"log/slog"
	"maps"
	"math"
)

// Option keys understood by ResolveMap. The names follow the option names of
// the original command line tool; snake_case aliases are accepted as well.
const (
	KeyRootType        = "rootType"
	KeyTagPrefix       = "bson_prefix"
	KeyLineSeparator   = "eol"
	KeyNestedDelimiter = "nestedDelimiter"
	KeyNullTypeName    = "nullData"
	KeyFieldSuffix     = "suffix"
	KeyBuiltinTags     = "BSON"
	KeyMaxDepth        = "maxDepth"
)

// Default option values.
const (
	DefaultRootType        = "RootType"
	DefaultTagPrefix       = "BSON_"
	DefaultLineSeparator   = "\n"
	DefaultNestedDelimiter = "_"
	DefaultNullTypeName    = "TBD"
	DefaultMaxDepth        = 1000
)

// Options is the enumerated set of conversion options.
type Options struct {
	RootType        string   // Name of the top-level type when the caller passes none
	TagPrefix       string   // Prepended to tag table names (e.g. "BSON_" + "Int64")
	LineSeparator   string   // Joins the lines of one declaration
	NestedDelimiter string   // Joins owner type and field name into a nested type name
	NullTypeName    string   // Type emitted for null and missing values
	FieldSuffix     string   // Appended to every field whose type is not NullTypeName
	BuiltinTags     bool     // Start the tag table from BuiltinTags()
	MaxDepth        int      // Nesting limit; deeper input fails with ErrMaxDepthExceeded
	Tags            TagTable // User tag entries, overlaid on the built-ins
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		RootType:        DefaultRootType,
		TagPrefix:       DefaultTagPrefix,
		LineSeparator:   DefaultLineSeparator,
		NestedDelimiter: DefaultNestedDelimiter,
		NullTypeName:    DefaultNullTypeName,
		MaxDepth:        DefaultMaxDepth,
	}
}

// Option overrides one field of Options.
type Option func(*Options)

// WithRootType sets the default root type name.
func WithRootType(name string) Option {
	return func(o *Options) { o.RootType = name }
}

// WithTagPrefix sets the prefix of tagged scalar type names.
func WithTagPrefix(prefix string) Option {
	return func(o *Options) { o.TagPrefix = prefix }
}

// WithLineSeparator sets the separator between declaration lines.
func WithLineSeparator(sep string) Option {
	return func(o *Options) { o.LineSeparator = sep }
}

// WithNestedDelimiter sets the string joining owner type and field name.
func WithNestedDelimiter(delim string) Option {
	return func(o *Options) { o.NestedDelimiter = delim }
}

// WithNullTypeName sets the placeholder type for null values.
func WithNullTypeName(name string) Option {
	return func(o *Options) { o.NullTypeName = name }
}

// WithFieldSuffix sets the suffix appended to non-placeholder fields.
func WithFieldSuffix(suffix string) Option {
	return func(o *Options) { o.FieldSuffix = suffix }
}

// WithBuiltinTags opts in to (or out of) the built-in extended JSON tags.
func WithBuiltinTags(enabled bool) Option {
	return func(o *Options) { o.BuiltinTags = enabled }
}

// WithMaxDepth sets the nesting limit. Values <= 0 are ignored.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		if depth > 0 {
			o.MaxDepth = depth
		}
	}
}

// WithTags overlays user tag entries. Later calls win on key collision.
func WithTags(tags map[string]string) Option {
	return func(o *Options) {
		if len(tags) == 0 {
			return
		}
		if o.Tags == nil {
			o.Tags = make(TagTable, len(tags))
		}
		maps.Copy(o.Tags, tags)
	}
}

// Config is a resolved, immutable conversion configuration.
type Config struct {
	opts Options
	tags TagTable
}

// Resolve applies opts over DefaultOptions and builds the tag table.
func Resolve(opts ...Option) *Config {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newConfig(o)
}

// ResolveMap resolves untyped options, as found in config files and tool
// inputs, over DefaultOptions and any base options. Unknown keys and values
// of the wrong type are skipped. userTags is overlaid last.
func ResolveMap(userOptions map[string]any, userTags map[string]string, base ...Option) *Config {
	o := DefaultOptions()
	for _, opt := range base {
		opt(&o)
	}
	for key, raw := range userOptions {
		setter, ok := optionSetters[key]
		if !ok {
			slog.Debug("ignoring unknown conversion option", slog.String("key", key))
			continue
		}
		if !setter(&o, raw) {
			slog.Debug("ignoring conversion option with unexpected value",
				slog.String("key", key),
				slog.Any("value", raw),
			)
		}
	}
	WithTags(userTags)(&o)
	return newConfig(o)
}

func newConfig(o Options) *Config {
	tags := make(TagTable)
	if o.BuiltinTags {
		maps.Copy(tags, builtinTags)
	}
	maps.Copy(tags, o.Tags)
	o.Tags = nil
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return &Config{opts: o, tags: tags}
}

// Options returns a copy of the resolved options, including the effective tag table.
func (c *Config) Options() Options {
	o := c.opts
	o.Tags = c.Tags()
	return o
}

// RootType returns the default root type name.
func (c *Config) RootType() string { return c.opts.RootType }

// TagPrefix returns the tagged scalar prefix.
func (c *Config) TagPrefix() string { return c.opts.TagPrefix }

// LineSeparator returns the declaration line separator.
func (c *Config) LineSeparator() string { return c.opts.LineSeparator }

// NestedDelimiter returns the nested type name delimiter.
func (c *Config) NestedDelimiter() string { return c.opts.NestedDelimiter }

// NullTypeName returns the placeholder type name.
func (c *Config) NullTypeName() string { return c.opts.NullTypeName }

// FieldSuffix returns the field suffix.
func (c *Config) FieldSuffix() string { return c.opts.FieldSuffix }

// MaxDepth returns the nesting limit.
func (c *Config) MaxDepth() int { return c.opts.MaxDepth }

// Tags returns a copy of the effective tag table.
func (c *Config) Tags() TagTable {
	return maps.Clone(c.tags)
}

// LookupTag returns the semantic name registered for a wrapper key.
func (c *Config) LookupTag(key string) (string, bool) {
	name, ok := c.tags[key]
	return name, ok
}

type optionSetter func(*Options, any) bool

var optionSetters = map[string]optionSetter{
	KeyRootType:        stringSetter(func(o *Options) *string { return &o.RootType }),
	"root_type":        stringSetter(func(o *Options) *string { return &o.RootType }),
	KeyTagPrefix:       stringSetter(func(o *Options) *string { return &o.TagPrefix }),
	"tag_prefix":       stringSetter(func(o *Options) *string { return &o.TagPrefix }),
	KeyLineSeparator:   stringSetter(func(o *Options) *string { return &o.LineSeparator }),
	"line_separator":   stringSetter(func(o *Options) *string { return &o.LineSeparator }),
	KeyNestedDelimiter: stringSetter(func(o *Options) *string { return &o.NestedDelimiter }),
	"nested_delimiter": stringSetter(func(o *Options) *string { return &o.NestedDelimiter }),
	KeyNullTypeName:    stringSetter(func(o *Options) *string { return &o.NullTypeName }),
	"null_data":        stringSetter(func(o *Options) *string { return &o.NullTypeName }),
	KeyFieldSuffix:     stringSetter(func(o *Options) *string { return &o.FieldSuffix }),
	"field_suffix":     stringSetter(func(o *Options) *string { return &o.FieldSuffix }),
	KeyBuiltinTags:     setBuiltinTags,
	"builtin_tags":     setBuiltinTags,
	KeyMaxDepth:        setMaxDepth,
	"max_depth":        setMaxDepth,
}

func stringSetter(field func(*Options) *string) optionSetter {
	return func(o *Options, v any) bool {
		s, ok := v.(string)
		if ok {
			*field(o) = s
		}
		return ok
	}
}

func setBuiltinTags(o *Options, v any) bool {
	b, ok := v.(bool)
	if ok {
		o.BuiltinTags = b
	}
	return ok
}

func setMaxDepth(o *Options, v any) bool {
	var n int
	switch val := v.(type) {
	case int:
		n = val
	case int64:
		n = int(val)
	case float64:
		if math.Trunc(val) != val {
			return false
		}
		n = int(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return false
		}
		n = int(i)
	default:
		return false
	}
	if n <= 0 {
		return false
	}
	o.MaxDepth = n
	return true
}
