package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/usestring/json2gql/pkg/typesystem"
)

const maxAliasDepth = 64

// DecodeYAML decodes the first document of a YAML stream keeping mapping
// order. Plain scalars that look like timestamps stay strings; only an
// explicit !!timestamp tag yields a time value.
func DecodeYAML(data []byte) (typesystem.Value, error) {
	var doc yaml.Node
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	if errors.Is(err, io.EOF) {
		return typesystem.Null(), nil
	}
	if err != nil {
		return typesystem.Value{}, fmt.Errorf("invalid YAML: %w", err)
	}
	return yamlValue(&doc, 0)
}

func yamlValue(n *yaml.Node, aliases int) (typesystem.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return typesystem.Null(), nil
		}
		return yamlValue(n.Content[0], aliases)
	case yaml.AliasNode:
		if aliases >= maxAliasDepth || n.Alias == nil {
			return typesystem.Value{}, fmt.Errorf("line %d: alias nesting too deep", n.Line)
		}
		return yamlValue(n.Alias, aliases+1)
	case yaml.SequenceNode:
		elems := make([]typesystem.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c, aliases)
			if err != nil {
				return typesystem.Value{}, err
			}
			elems = append(elems, v)
		}
		return typesystem.Array(elems...), nil
	case yaml.MappingNode:
		obj := typesystem.NewObject()
		if err := yamlMerge(obj, n, aliases); err != nil {
			return typesystem.Value{}, err
		}
		return obj, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return typesystem.Value{}, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

// yamlMerge copies the pairs of mapping n into obj. Merge keys (<<) add
// only keys that are not set explicitly in n.
func yamlMerge(obj typesystem.Value, n *yaml.Node, aliases int) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			merges = append(merges, val)
			continue
		}
		if key.Kind == yaml.AliasNode && key.Alias != nil {
			key = key.Alias
		}
		v, err := yamlValue(val, aliases)
		if err != nil {
			return err
		}
		obj.Set(key.Value, v)
	}

	for _, m := range merges {
		if m.Kind == yaml.AliasNode {
			if aliases >= maxAliasDepth || m.Alias == nil {
				return fmt.Errorf("line %d: alias nesting too deep", m.Line)
			}
			m = m.Alias
			aliases++
		}
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			if src.Kind == yaml.AliasNode && src.Alias != nil {
				src = src.Alias
			}
			if src.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: merge value is not a mapping", src.Line)
			}
			inherited := typesystem.NewObject()
			if err := yamlMerge(inherited, src, aliases+1); err != nil {
				return err
			}
			for k, v := range inherited.Members() {
				if _, exists := obj.Get(k); !exists {
					obj.Set(k, v)
				}
			}
		}
	}
	return nil
}

func yamlScalar(n *yaml.Node) (typesystem.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return typesystem.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return typesystem.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return typesystem.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return typesystem.String(n.Value), nil
		}
		return typesystem.Number(f), nil
	case "!!timestamp":
		if n.Style&yaml.TaggedStyle == 0 {
			return typesystem.String(n.Value), nil
		}
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return typesystem.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return typesystem.Time(t), nil
	default:
		return typesystem.String(n.Value), nil
	}
}
