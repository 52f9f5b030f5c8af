package tools

import (
	"context"
	"encoding/json"
	"maps"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/json2gql/internal/pipeline"
	"github.com/usestring/json2gql/internal/source"
	"github.com/usestring/json2gql/pkg/types"
	"github.com/usestring/json2gql/pkg/typesystem"
)

// InferTypesInput is the input for json2gql_infer_types.
type InferTypesInput struct {
	Document    string            `json:"document,omitempty" jsonschema:"Document text (JSON, NDJSON, YAML, CSV or TSV). Either document or url is required."`
	URL         string            `json:"url,omitempty" jsonschema:"http(s) URL to fetch the document from. Either url or document is required."`
	InputFormat string            `json:"input_format,omitempty" jsonschema:"Input format: json, ndjson, yaml, csv, tsv (default: detected)"`
	RootType    string            `json:"root_type,omitempty" jsonschema:"Root type name (default: derived from the url path, else RootType)"`
	Format      string            `json:"format,omitempty" jsonschema:"Output format: graphql (default) or jsonschema"`
	Select      string            `json:"select,omitempty" jsonschema:"jq path expression selecting the sub-document to convert, e.g. .data.items"`
	Options     map[string]any    `json:"options,omitempty" jsonschema:"Engine options: rootType, bson_prefix, eol, nestedDelimiter, nullData, suffix, BSON, maxDepth"`
	Tags        map[string]string `json:"tags,omitempty" jsonschema:"Extra tag wrapper keys mapped to type names, e.g. $oid to ObjectId"`
}

// ToolInferTypes infers a GraphQL type system from one document.
func ToolInferTypes(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferTypesInput) (*sdkmcp.CallToolResult, types.InferTypesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferTypesInput) (*sdkmcp.CallToolResult, types.InferTypesOutput, error) {
		if (input.Document == "") == (input.URL == "") {
			return nil, types.InferTypesOutput{}, ErrInvalidInput("exactly one of document or url is required")
		}
		switch input.Format {
		case "", pipeline.FormatGraphQL, pipeline.FormatJSONSchema:
		default:
			return nil, types.InferTypesOutput{}, ErrInvalidInput("format must be 'graphql' or 'jsonschema'")
		}

		options := maps.Clone(input.Options)
		if input.RootType != "" {
			if options == nil {
				options = make(map[string]any, 1)
			}
			options[typesystem.KeyRootType] = input.RootType
		}
		engine := d.Engine(options, input.Tags)

		doc := source.Document{Source: "document", Data: []byte(input.Document)}
		if input.URL != "" {
			spec, err := source.ParseSpec(input.URL)
			if err != nil || spec.Kind != source.KindHTTP {
				return nil, types.InferTypesOutput{}, ErrInvalidInput("url must be an http(s) URL")
			}
			docs, err := d.Fetcher.Fetch(ctx, spec)
			if err != nil {
				return nil, types.InferTypesOutput{}, WrapFetchError(err)
			}
			doc = docs[0]
		}

		nameFromSource := input.URL != "" && input.RootType == "" && d.Config.NameFromSource
		p, err := d.Pipeline(engine, input.Format, input.Select, input.InputFormat, nameFromSource)
		if err != nil {
			return nil, types.InferTypesOutput{}, ErrInvalidInput(err.Error())
		}

		table, root, err := p.ConvertToTable(ctx, doc)
		if err != nil {
			return nil, types.InferTypesOutput{}, ErrConvert(err)
		}
		schema, err := p.Render(table, root)
		if err != nil {
			return nil, types.InferTypesOutput{}, ErrConvert(err)
		}

		output := types.InferTypesOutput{
			RootType:  root,
			Format:    p.Format(),
			Schema:    schema,
			Types:     typeInfos(table),
			TypeCount: table.Len(),
		}
		if p.Format() == pipeline.FormatJSONSchema {
			v, err := types.ToAny(json.RawMessage(schema))
			if err != nil {
				return nil, types.InferTypesOutput{}, ErrConvert(err)
			}
			output.JSONSchema = v
		}
		if table.Len() == 1 && len(output.Types[0].Fields) == 0 {
			output.Hint = "The root has no fields: the document (or the selected part) is a scalar, null or an empty array. Use select to pick an object."
		} else if input.Select == "" && input.URL != "" {
			output.Hint = "Use select (e.g. \".data\") to type only part of the response."
		}

		return nil, output, nil
	}
}

func typeInfos(table *typesystem.TypeTable) []types.TypeInfo {
	decls := table.Declarations()
	out := make([]types.TypeInfo, len(decls))
	for i, decl := range decls {
		fields := make([]types.FieldInfo, len(decl.Fields))
		for j, f := range decl.Fields {
			fields[j] = types.FieldInfo{Name: f.Name, Type: f.Type}
		}
		out[i] = types.TypeInfo{Name: decl.Name, Fields: fields}
	}
	return out
}
