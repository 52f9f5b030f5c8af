// Package mcpsrv provides an extensible MCP server for json2gql.
//
// The server exposes json2gql_infer_types, which turns a JSON, YAML, CSV or
// NDJSON document (inline or fetched from a URL) into GraphQL type
// definitions, and json2gql_list_tags, which lists the wrapper keys that
// become scalar types. Custom tools and resources are added with
// functional options.
//
// # Basic Usage
//
// Create a server with configuration from the environment:
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithTool(&mcp.Tool{Name: "my_tool", Description: "My tool"}, myHandler),
//	)
//
// # Configuration
//
// Configure logging and conversion defaults:
//
//	cfg, _ := config.Load(config.LoadOptions{File: "json2gql.yaml"})
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithConfig(cfg),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/json2gql.log"),
//	)
package mcpsrv
