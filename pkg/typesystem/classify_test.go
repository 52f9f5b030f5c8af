package typesystem

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPrimitive(t *testing.T) {
	c := NewClassifier(Resolve())

	tests := []struct {
		name  string
		value Value
		want  string
		ok    bool
	}{
		{"null", Null(), "TBD", true},
		{"string", String("hello"), "String", true},
		{"empty string", String(""), "String", true},
		{"url", String("https://example.com"), "Id", true},
		{"date", String("2020-01-01"), "Date", true},
		{"datetime string", String("2020-01-01 10:11:12"), "DateTime", true},
		{"true", Bool(true), "Boolean", true},
		{"false", Bool(false), "Boolean", true},
		{"zero", Number(0), "Int", true},
		{"negative int", Number(-7), "Int", true},
		{"whole float", Number(1.0), "Int", true},
		{"float", Number(3.14), "Float", true},
		{"time", Time(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), "DateTime", true},
		{"nan", Number(math.NaN()), "", false},
		{"inf", Number(math.Inf(1)), "", false},
		{"array", Array(Number(1)), "", false},
		{"object", NewObject(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.ClassifyPrimitive(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyPrimitive_CustomNullName(t *testing.T) {
	c := NewClassifier(Resolve(WithNullTypeName("Unknown")))
	got, ok := c.ClassifyPrimitive(Null())
	assert.True(t, ok)
	assert.Equal(t, "Unknown", got)
}

func TestSpecialString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://x", "Id"},
		{"HTTPS://EXAMPLE.COM", "Id"},
		{"HttpFoo", "Id"},
		{"htt", ""},
		{"ftp://x", ""},
		{"2020-01-01", "Date"},
		{"2020-1-5", "Date"},
		{"2024-02-29", "Date"},
		{"2000-02-29", "Date"},
		{"2023-02-29", ""},
		{"1900-02-29", ""},
		{"2020-04-31", ""},
		{"2020-13-01", ""},
		{"2020-00-10", ""},
		{"0999-01-01", ""},
		{"3000-12-31", "Date"},
		{"3001-01-01", ""},
		{" 2020-01-01", ""},
		{"2020-01-01 00:00:00", "DateTime"},
		{"2020-12-31 24:59:59", "DateTime"},
		{"created 2020-01-01 12:30:45 UTC", "DateTime"},
		{"2020-01-01 25:00:00", ""},
		{"2020-01-01 12:60:00", ""},
		{"2020-01-01T12:00:00", ""},
		{"http://host/2020-01-01 12:00:00", "Id"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := SpecialString(tt.in)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateBoundary(t *testing.T) {
	c := NewClassifier(nil)

	leap, _ := c.ClassifyPrimitive(String("2024-02-29"))
	assert.Equal(t, TypeDate, leap)

	notLeap, _ := c.ClassifyPrimitive(String("2023-02-29"))
	assert.Equal(t, TypeString, notLeap)
}

func TestClassifyTag(t *testing.T) {
	c := NewClassifier(Resolve(WithBuiltinTags(true)))

	tagged := NewObject(Member{Key: "$numberLong", Value: String("42")})
	for range 3 {
		name, ok := c.ClassifyTag(tagged)
		assert.True(t, ok)
		assert.Equal(t, "BSON_Int64", name)
	}

	none := []Value{
		NewObject(),
		NewObject(
			Member{Key: "$oid", Value: String("a")},
			Member{Key: "$date", Value: String("b")},
		),
		NewObject(Member{Key: "$unknown", Value: String("a")}),
		NewObject(Member{Key: "oid", Value: String("a")}),
		String("$oid"),
		Array(NewObject(Member{Key: "$oid", Value: String("a")})),
	}
	for _, v := range none {
		name, ok := c.ClassifyTag(v)
		assert.False(t, ok)
		assert.Empty(t, name)
	}
}

func TestClassifyTag_WithoutBuiltins(t *testing.T) {
	c := NewClassifier(Resolve())
	_, ok := c.ClassifyTag(NewObject(Member{Key: "$oid", Value: String("a")}))
	assert.False(t, ok)

	c = NewClassifier(Resolve(WithTags(map[string]string{"$ref": "Ref"}), WithTagPrefix("")))
	name, ok := c.ClassifyTag(NewObject(Member{Key: "$ref", Value: String("a")}))
	assert.True(t, ok)
	assert.Equal(t, "Ref", name)
}

func TestClassify(t *testing.T) {
	c := NewClassifier(Resolve(WithBuiltinTags(true)))

	tests := []struct {
		name  string
		value Value
		class Class
		typ   string
	}{
		{"null", Null(), ClassNull, "TBD"},
		{"bool", Bool(true), ClassBool, "Boolean"},
		{"int", Number(3), ClassInt, "Int"},
		{"float", Number(0.5), ClassFloat, "Float"},
		{"string", String("x"), ClassString, "String"},
		{"special string", String("2020-01-01"), ClassString, "Date"},
		{"time", Time(time.Unix(0, 0)), ClassDatetime, "DateTime"},
		{"array", Array(), ClassArray, ""},
		{"tagged", NewObject(Member{Key: "$oid", Value: String("a")}), ClassTaggedScalar, "BSON_Objectid"},
		{"object", NewObject(Member{Key: "a", Value: Number(1)}), ClassPlainObject, ""},
		{"non-finite number", Number(math.Inf(-1)), ClassPlainObject, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.value)
			assert.Equal(t, tt.class, got.Class, "class %s", got.Class)
			assert.Equal(t, tt.typ, got.TypeName)
		})
	}
}

func TestClass_String(t *testing.T) {
	assert.Equal(t, "tagged_scalar", ClassTaggedScalar.String())
	assert.Equal(t, "plain_object", ClassPlainObject.String())
	assert.Equal(t, "class(42)", Class(42).String())
}
