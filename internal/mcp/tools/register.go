package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "json2gql_infer_types",
		Description: "Infer GraphQL type definitions from a JSON, NDJSON, YAML, CSV or TSV document, passed inline as document or fetched from an http(s) url. Returns {root_type, format, schema, types: [{name, fields: [{name, type}]}], type_count, hint}. Nested objects become their own types named owner_field and are declared before their parent; arrays are typed from their first element; null becomes TBD and empty arrays [TBD]. Strings that are URLs, dates (YYYY-MM-DD) or ISO datetimes become Id, Date and DateTime. Use select (jq path, e.g. .data.items) to type part of a response, and format=jsonschema for a JSON Schema instead. Use json2gql_list_tags to see which wrapper objects (e.g. {\"$oid\": ...}) become scalar types.",
	}, ToolInferTypes(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "json2gql_list_tags",
		Description: "List the tag table used by json2gql_infer_types: single-key wrapper objects whose key is listed become the prefixed scalar type_name instead of a nested type. Pass options {\"BSON\": true} for the MongoDB extended JSON tags and tags to add your own. Returns {prefix, tags: [{key, name, type_name}]}.",
	}, ToolListTags(d))
}
