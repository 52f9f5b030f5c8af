package mcpsrv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/json2gql/internal/config"
)

type echoInput struct {
	Text string `json:"text"`
}

type echoOutput struct {
	Text string `json:"text"`
}

type rootInput struct{}

type rootOutput struct {
	RootType string `json:"root_type"`
}

func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	ct, st := mcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	cfg, err := config.Load(config.LoadOptions{})
	require.NoError(t, err)

	srv, err := NewServer(append([]Option{WithConfig(cfg), WithoutLoggingSetup(), WithVersion("test")}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func toolNames(t *testing.T, cs *mcp.ClientSession) []string {
	t.Helper()
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestNewServer_BuiltinTools(t *testing.T) {
	cs := connect(t, newTestServer(t))
	assert.ElementsMatch(t, []string{"json2gql_infer_types", "json2gql_list_tags"}, toolNames(t, cs))
}

func TestNewServer_CustomTools(t *testing.T) {
	srv := newTestServer(t,
		WithoutBuiltinTools(),
		WithTool(&mcp.Tool{Name: "echo", Description: "Echo text"},
			func(_ context.Context, _ *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, echoOutput, error) {
				return nil, echoOutput(in), nil
			}),
		WithDepsTool(&mcp.Tool{Name: "root", Description: "Configured root type"},
			func(d *Deps) func(context.Context, *mcp.CallToolRequest, rootInput) (*mcp.CallToolResult, rootOutput, error) {
				return func(context.Context, *mcp.CallToolRequest, rootInput) (*mcp.CallToolResult, rootOutput, error) {
					return nil, rootOutput{RootType: d.Config.RootType}, nil
				}
			}),
	)
	require.NotNil(t, srv.Deps().Fetcher)

	cs := connect(t, srv)
	assert.ElementsMatch(t, []string{"echo", "root"}, toolNames(t, cs))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "root",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, map[string]any{"root_type": "RootType"}, res.StructuredContent)
}

func TestNewServer_InferTypes(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login": "octocat", "site_admin": false}`))
	}))
	defer api.Close()

	cs := connect(t, newTestServer(t, WithHTTPClient(api.Client())))
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "json2gql_infer_types",
		Arguments: map[string]any{"url": api.URL + "/users/octocat"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	out, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "users_octocat", out["root_type"])
	assert.Equal(t, "type users_octocat {\n  login: String\n  site_admin: Boolean\n}", out["schema"])

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "json2gql_infer_types",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError, "missing document and url is a tool error")
}

func TestNewServer_Resources(t *testing.T) {
	cs := connect(t, newTestServer(t))
	ctx := context.Background()

	res, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "json2gql://options"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, `"rootType": "RootType"`)

	res, err = cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "json2gql://tags/bson"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, `"type_name": "BSON_Objectid"`)
}
