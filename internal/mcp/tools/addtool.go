package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after checking that its output type survives the
// SDK's structured output validation. It panics on a bad output type so the
// mistake shows at startup instead of on the first call.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	if err := CheckOutput[Out](); err != nil {
		panic(fmt.Sprintf("AddTool %q: %v", t.Name, err))
	}
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema panics if CheckOutput reports a problem with T.
func CheckOutputSchema[T any](toolName string) {
	if err := CheckOutput[T](); err != nil {
		panic(fmt.Sprintf("tool %q: %v", toolName, err))
	}
}

// CheckOutput reports output types the SDK would reject at call time:
//
//   - json.RawMessage anywhere in the type. It marshals as inline JSON but the
//     schema generator sees []byte, an array of integers. Use any and
//     types.ToAny instead.
//   - a zero value that fails the inferred schema, usually a slice without
//     omitzero that marshals as null where the schema wants an array.
//
// The untyped any output and types the generator cannot handle are accepted;
// the SDK reports the latter itself.
func CheckOutput[T any]() error {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return nil
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if paths := rawMessagePaths(rt, "", map[reflect.Type]bool{}); len(paths) > 0 {
		return fmt.Errorf("output type %s has json.RawMessage at %s; use any with types.ToAny",
			rt, strings.Join(paths, ", "))
	}

	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return nil
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil
	}

	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return nil
	}
	var zero map[string]any
	if err := json.Unmarshal(data, &zero); err != nil {
		return nil
	}
	if err := resolved.Validate(&zero); err != nil {
		return fmt.Errorf("zero value of %s fails its schema (%s): %w; add omitzero to slice fields", rt, data, err)
	}
	return nil
}

var rawMessageType = reflect.TypeFor[json.RawMessage]()

func rawMessagePaths(t reflect.Type, path string, seen map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == rawMessageType {
		return []string{path}
	}
	if seen[t] {
		return nil
	}
	seen[t] = true
	defer delete(seen, t)

	join := func(part string) string {
		if path == "" {
			return part
		}
		return path + "." + part
	}

	var out []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() {
				out = append(out, rawMessagePaths(f.Type, join(f.Name), seen)...)
			}
		}
	case reflect.Slice, reflect.Array:
		out = rawMessagePaths(t.Elem(), join("[]"), seen)
	case reflect.Map:
		out = rawMessagePaths(t.Elem(), join("[value]"), seen)
	}
	return out
}
