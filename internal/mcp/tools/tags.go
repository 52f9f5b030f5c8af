package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/json2gql/pkg/types"
	"github.com/usestring/json2gql/pkg/typesystem"
)

// ListTagsInput is the input for json2gql_list_tags.
type ListTagsInput struct {
	Options map[string]any    `json:"options,omitempty" jsonschema:"Engine options; set BSON to true for the built-in MongoDB extended JSON tags"`
	Tags    map[string]string `json:"tags,omitempty" jsonschema:"Extra tag wrapper keys mapped to type names"`
}

// ToolListTags reports the effective tag table: single-key wrapper objects
// whose key is listed here become scalar type names.
func ToolListTags(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListTagsInput) (*sdkmcp.CallToolResult, types.ListTagsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListTagsInput) (*sdkmcp.CallToolResult, types.ListTagsOutput, error) {
		engine := d.Engine(input.Options, input.Tags)
		return nil, TagList(engine.TagPrefix(), engine.Tags()), nil
	}
}

// TagList builds the sorted tag listing for a tag table.
func TagList(prefix string, tags typesystem.TagTable) types.ListTagsOutput {
	out := types.ListTagsOutput{Prefix: prefix}
	for _, k := range tags.Keys() {
		out.Tags = append(out.Tags, types.TagInfo{Key: k, Name: tags[k], TypeName: prefix + tags[k]})
	}
	return out
}
