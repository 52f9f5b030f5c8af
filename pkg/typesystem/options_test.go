package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	cfg := Resolve()

	assert.Equal(t, "RootType", cfg.RootType())
	assert.Equal(t, "BSON_", cfg.TagPrefix())
	assert.Equal(t, "\n", cfg.LineSeparator())
	assert.Equal(t, "_", cfg.NestedDelimiter())
	assert.Equal(t, "TBD", cfg.NullTypeName())
	assert.Empty(t, cfg.FieldSuffix())
	assert.Equal(t, 1000, cfg.MaxDepth())
	assert.Empty(t, cfg.Tags(), "built-in tags are opt-in")
}

func TestResolve_Overrides(t *testing.T) {
	cfg := Resolve(
		WithRootType("Query"),
		WithTagPrefix("Mongo"),
		WithLineSeparator("\r\n"),
		WithNestedDelimiter("__"),
		WithNullTypeName("Unknown"),
		WithFieldSuffix("!"),
		WithMaxDepth(0), // ignored
		WithMaxDepth(12),
	)

	assert.Equal(t, "Query", cfg.RootType())
	assert.Equal(t, "Mongo", cfg.TagPrefix())
	assert.Equal(t, "\r\n", cfg.LineSeparator())
	assert.Equal(t, "__", cfg.NestedDelimiter())
	assert.Equal(t, "Unknown", cfg.NullTypeName())
	assert.Equal(t, "!", cfg.FieldSuffix())
	assert.Equal(t, 12, cfg.MaxDepth())
}

func TestResolve_TagTable(t *testing.T) {
	t.Run("user tags only", func(t *testing.T) {
		cfg := Resolve(WithTags(map[string]string{"$custom": "Custom"}))
		assert.Equal(t, TagTable{"$custom": "Custom"}, cfg.Tags())
	})

	t.Run("built-ins overlaid by user tags", func(t *testing.T) {
		cfg := Resolve(
			WithBuiltinTags(true),
			WithTags(map[string]string{"$oid": "ObjectID", "$custom": "Custom"}),
		)
		tags := cfg.Tags()
		assert.Len(t, tags, len(BuiltinTags())+1)
		assert.Equal(t, "ObjectID", tags["$oid"])
		assert.Equal(t, "Custom", tags["$custom"])
		assert.Equal(t, "Int64", tags["$numberLong"])
		assert.Equal(t, "Regular Expression", tags["$regularExpression"])
	})

	t.Run("later tags win", func(t *testing.T) {
		cfg := Resolve(
			WithTags(map[string]string{"$x": "A"}),
			WithTags(map[string]string{"$x": "B"}),
		)
		name, ok := cfg.LookupTag("$x")
		require.True(t, ok)
		assert.Equal(t, "B", name)
	})
}

func TestConfig_IsImmutable(t *testing.T) {
	cfg := Resolve(WithBuiltinTags(true))

	tags := cfg.Tags()
	tags["$new"] = "New"
	delete(tags, "$oid")

	_, ok := cfg.LookupTag("$new")
	assert.False(t, ok)
	_, ok = cfg.LookupTag("$oid")
	assert.True(t, ok)

	builtins := BuiltinTags()
	builtins["$oid"] = "Changed"
	name, _ := Resolve(WithBuiltinTags(true)).LookupTag("$oid")
	assert.Equal(t, "Objectid", name)

	opts := cfg.Options()
	opts.Tags["$another"] = "X"
	_, ok = cfg.LookupTag("$another")
	assert.False(t, ok)
}

func TestResolveMap(t *testing.T) {
	cfg := ResolveMap(map[string]any{
		"rootType":        "Q",
		"nestedDelimiter": "__",
		"suffix":          "!",
		"maxDepth":        float64(5),
		"BSON":            true,
		"bogus":           1,
		"eol":             42,   // wrong type, default kept
		"nullData":        true, // wrong type, default kept
	}, map[string]string{"$custom": "Custom", "$oid": "ObjectID"})

	assert.Equal(t, "Q", cfg.RootType())
	assert.Equal(t, "__", cfg.NestedDelimiter())
	assert.Equal(t, "!", cfg.FieldSuffix())
	assert.Equal(t, 5, cfg.MaxDepth())
	assert.Equal(t, "\n", cfg.LineSeparator())
	assert.Equal(t, "TBD", cfg.NullTypeName())

	tags := cfg.Tags()
	assert.Equal(t, "Custom", tags["$custom"])
	assert.Equal(t, "ObjectID", tags["$oid"])
	assert.Equal(t, "Datetime", tags["$date"])
}

func TestResolveMap_Aliases(t *testing.T) {
	cfg := ResolveMap(map[string]any{
		"root_type":        "Alias",
		"tag_prefix":       "T_",
		"line_separator":   "\r\n",
		"nested_delimiter": ".",
		"null_data":        "Null",
		"field_suffix":     "?",
		"builtin_tags":     true,
		"max_depth":        7,
	}, nil)

	opts := cfg.Options()
	assert.Equal(t, "Alias", opts.RootType)
	assert.Equal(t, "T_", opts.TagPrefix)
	assert.Equal(t, "\r\n", opts.LineSeparator)
	assert.Equal(t, ".", opts.NestedDelimiter)
	assert.Equal(t, "Null", opts.NullTypeName)
	assert.Equal(t, "?", opts.FieldSuffix)
	assert.True(t, opts.BuiltinTags)
	assert.Equal(t, 7, opts.MaxDepth)
	assert.Equal(t, BuiltinTags(), opts.Tags)
}

func TestResolveMap_BaseOptions(t *testing.T) {
	cfg := ResolveMap(
		map[string]any{"suffix": "!"},
		nil,
		WithRootType("FromBase"),
		WithFieldSuffix("?"),
	)

	assert.Equal(t, "FromBase", cfg.RootType())
	assert.Equal(t, "!", cfg.FieldSuffix(), "untyped options win over base options")
}

func TestResolveMap_RejectsBadDepth(t *testing.T) {
	for _, raw := range []any{-1, 0, 2.5, "10", nil} {
		cfg := ResolveMap(map[string]any{"maxDepth": raw}, nil)
		assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth(), "maxDepth=%v", raw)
	}
}

func TestTagTable_Keys(t *testing.T) {
	keys := TagTable{"$b": "B", "$a": "A", "$c": "C"}.Keys()
	assert.Equal(t, []string{"$a", "$b", "$c"}, keys)
	assert.Len(t, BuiltinTags().Keys(), 16)
}
