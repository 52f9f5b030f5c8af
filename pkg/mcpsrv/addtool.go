package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/json2gql/internal/mcp/tools"
)

// AddTool registers a tool with the server after checking its output type
// the way the builtin tools are checked: a json.RawMessage field, or a zero
// value that fails the inferred output schema (typically a nil slice without
// omitzero), panics at registration instead of failing every call.
//
// Use this instead of [sdkmcp.AddTool] to get the additional check.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
