package typesystem

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Scalar type names.
const (
	TypeString   = "String"
	TypeBoolean  = "Boolean"
	TypeInt      = "Int"
	TypeFloat    = "Float"
	TypeDateTime = "DateTime"
	TypeDate     = "Date"
	TypeID       = "Id"
)

// Class is the classification of one value. Every value maps to exactly one Class.
type Class uint8

const (
	ClassNull Class = iota
	ClassBool
	ClassInt
	ClassFloat
	ClassString
	ClassDatetime
	ClassArray
	ClassTaggedScalar
	ClassPlainObject
)

var classNames = [...]string{
	"null", "bool", "int", "float", "string", "datetime", "array", "tagged_scalar", "plain_object",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "class(" + strconv.Itoa(int(c)) + ")"
}

// Classification is the decision made for one value. TypeName is empty for
// arrays and plain objects, whose names depend on their context.
type Classification struct {
	Class    Class
	TypeName string
}

// Classifier decides the type of single values under a Config.
type Classifier struct {
	cfg *Config
}

// NewClassifier returns a Classifier for cfg. A nil cfg uses the defaults.
func NewClassifier(cfg *Config) *Classifier {
	if cfg == nil {
		cfg = Resolve()
	}
	return &Classifier{cfg: cfg}
}

// Classify returns the class of v. Primitives are tried first, then arrays,
// then tagged wrappers; everything else is a plain object.
func (c *Classifier) Classify(v Value) Classification {
	if name, ok := c.ClassifyPrimitive(v); ok {
		return Classification{Class: primitiveClass(v, name), TypeName: name}
	}
	if v.Kind() == KindArray {
		return Classification{Class: ClassArray}
	}
	if name, ok := c.ClassifyTag(v); ok {
		return Classification{Class: ClassTaggedScalar, TypeName: name}
	}
	return Classification{Class: ClassPlainObject}
}

// ClassifyPrimitive returns the type name of a null, string, bool, finite
// number or time value.
func (c *Classifier) ClassifyPrimitive(v Value) (string, bool) {
	switch v.Kind() {
	case KindNull:
		return c.cfg.NullTypeName(), true
	case KindString:
		if name, ok := SpecialString(v.StringValue()); ok {
			return name, true
		}
		return TypeString, true
	case KindBool:
		return TypeBoolean, true
	case KindNumber:
		n := v.NumberValue()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", false
		}
		if math.Trunc(n) == n {
			return TypeInt, true
		}
		return TypeFloat, true
	case KindTime:
		return TypeDateTime, true
	default:
		return "", false
	}
}

// ClassifyTag returns the prefixed tag name of a single-key object whose key
// is in the tag table.
func (c *Classifier) ClassifyTag(v Value) (string, bool) {
	if v.Kind() != KindObject || v.Len() != 1 {
		return "", false
	}
	for key := range v.Members() {
		if name, ok := c.cfg.LookupTag(key); ok {
			return c.cfg.TagPrefix() + name, true
		}
	}
	return "", false
}

func primitiveClass(v Value, name string) Class {
	switch v.Kind() {
	case KindNull:
		return ClassNull
	case KindBool:
		return ClassBool
	case KindTime:
		return ClassDatetime
	case KindNumber:
		if name == TypeInt {
			return ClassInt
		}
		return ClassFloat
	default:
		return ClassString
	}
}

var (
	datePattern     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dateTimePattern = regexp.MustCompile(`\d{4}-(0\d|1[0-2])-(0\d|[12]\d|3[01]) ([01]\d|2[0-4]):[0-5]\d:[0-5]\d`)
)

// SpecialString detects URLs, calendar dates and date-times, checked in
// that order. A string that is both a URL and contains a date-time is an Id.
func SpecialString(s string) (string, bool) {
	switch {
	case len(s) >= 4 && strings.EqualFold(s[:4], "http"):
		return TypeID, true
	case IsValidDate(s):
		return TypeDate, true
	case IsValidDateTime(s):
		return TypeDateTime, true
	default:
		return "", false
	}
}

// IsValidDate reports whether s is a YYYY-M-D calendar date with a year in
// [1000, 3000] and a day that exists in that month.
func IsValidDate(s string) bool {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if year < 1000 || year > 3000 || month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysIn(month, year)
}

// IsValidDateTime reports whether s contains a YYYY-MM-DD HH:MM:SS
// timestamp. The match is not anchored.
func IsValidDateTime(s string) bool {
	return dateTimePattern.MatchString(s)
}

func daysIn(month, year int) int {
	switch month {
	case 2:
		if isLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func isLeap(year int) bool {
	return year%400 == 0 || (year%4 == 0 && year%100 != 0)
}
