// Package selector picks the sub-document to convert using jq expressions.
//
// The expression is evaluated as path(<expr>) over a plain projection of the
// document and the resulting path is then followed on the original value,
// so object key order is preserved in the selection.
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itchyny/gojq"

	"github.com/usestring/json2gql/pkg/typesystem"
)

// ErrNoMatch is returned when the expression produces no path.
var ErrNoMatch = errors.New("selector matched nothing")

// Selector is a compiled selection expression. It is safe for concurrent use.
type Selector struct {
	expr string
	code *gojq.Code
}

// Compile compiles expr. An empty expression or "." selects the whole document.
func Compile(expr string) (*Selector, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "." {
		return &Selector{expr: "."}, nil
	}
	query, err := gojq.Parse("path(" + expr + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return &Selector{expr: expr, code: code}, nil
}

// String returns the source expression.
func (s *Selector) String() string { return s.expr }

// Select returns the part of v addressed by the first path the expression
// yields. Paths into missing members select null.
func (s *Selector) Select(ctx context.Context, v typesystem.Value) (typesystem.Value, error) {
	if s.code == nil {
		return v, nil
	}

	iter := s.code.RunWithContext(ctx, plain(v))
	for {
		out, ok := iter.Next()
		if !ok {
			return typesystem.Value{}, fmt.Errorf("%w: %s", ErrNoMatch, s.expr)
		}
		if err, isErr := out.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return typesystem.Value{}, fmt.Errorf("%w: %s", ErrNoMatch, s.expr)
			}
			return typesystem.Value{}, fmt.Errorf("jq error: %w", err)
		}
		path, ok := out.([]any)
		if !ok {
			return typesystem.Value{}, fmt.Errorf("unexpected jq path %v", out)
		}
		return walk(v, path)
	}
}

// Select compiles expr and applies it to v.
func Select(v typesystem.Value, expr string) (typesystem.Value, error) {
	s, err := Compile(expr)
	if err != nil {
		return typesystem.Value{}, err
	}
	return s.Select(context.Background(), v)
}

func walk(v typesystem.Value, path []any) (typesystem.Value, error) {
	cur := v
	for i, step := range path {
		switch key := step.(type) {
		case string:
			member, _ := cur.Get(key)
			cur = member
		case int:
			cur = index(cur, key)
		case float64:
			cur = index(cur, int(key))
		case map[string]any:
			cur = slice(cur, key)
		default:
			return typesystem.Value{}, fmt.Errorf("unsupported path element %v at position %d", step, i)
		}
	}
	return cur, nil
}

func index(v typesystem.Value, i int) typesystem.Value {
	if i < 0 {
		i += v.Len()
	}
	return v.Index(i)
}

// slice resolves a {"start", "end"} path element.
func slice(v typesystem.Value, bounds map[string]any) typesystem.Value {
	if v.Kind() != typesystem.KindArray {
		return typesystem.Null()
	}
	n := v.Len()
	start, end := bound(bounds["start"], 0, n), bound(bounds["end"], n, n)
	if start >= end {
		return typesystem.Array()
	}
	return typesystem.Array(v.Elements()[start:end]...)
}

func bound(x any, def, n int) int {
	var i int
	switch b := x.(type) {
	case int:
		i = b
	case float64:
		i = int(b)
	default:
		return def
	}
	if i < 0 {
		i += n
	}
	return min(max(i, 0), n)
}

// plain converts v to the value types gojq accepts.
func plain(v typesystem.Value) any {
	switch v.Kind() {
	case typesystem.KindBool:
		return v.BoolValue()
	case typesystem.KindNumber:
		return v.NumberValue()
	case typesystem.KindString:
		return v.StringValue()
	case typesystem.KindTime:
		return v.TimeValue().Format(time.RFC3339Nano)
	case typesystem.KindArray:
		out := make([]any, v.Len())
		for i, e := range v.Elements() {
			out[i] = plain(e)
		}
		return out
	case typesystem.KindObject:
		out := make(map[string]any, v.Len())
		for k, m := range v.Members() {
			out[k] = plain(m)
		}
		return out
	default:
		return nil
	}
}
