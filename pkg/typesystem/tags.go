package typesystem

import (
	"maps"
	"slices"
)

// TagTable maps a reserved wrapper key to a semantic type name.
type TagTable map[string]string

// Keys returns the table keys in sorted order.
func (t TagTable) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}

// MongoDB extended JSON wrappers.
// See https://github.com/mongodb/specifications/blob/master/source/extended-json.rst
var builtinTags = TagTable{
	"$oid":               "Objectid",
	"$symbol":            "Symbol",
	"$numberInt":         "Int32",
	"$numberLong":        "Int64",
	"$numberDouble":      "Double",
	"$numberDecimal":     "Decimal128",
	"$binary":            "Binary",
	"$code":              "Code",
	"$timestamp":         "Timestamp",
	"$regularExpression": "Regular Expression",
	"$dbPointer":         "DBPointer",
	"$date":              "Datetime",
	"$ref":               "DBRef",
	"$minKey":            "MinKey",
	"$maxKey":            "MaxKey",
	"$undefined":         "Undefined",
}

// BuiltinTags returns a copy of the built-in extended JSON tag table.
func BuiltinTags() TagTable {
	return maps.Clone(builtinTags)
}
