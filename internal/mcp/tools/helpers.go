// Package tools contains the MCP tool implementations for json2gql.
package tools

// MimeJSON is the MIME type of JSON resource contents.
const MimeJSON = "application/json"
