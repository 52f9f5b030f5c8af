package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/json2gql/internal/mcp/tools"
	"github.com/usestring/json2gql/pkg/typesystem"
)

// Resource URI scheme: json2gql://
// Supported URIs:
//   json2gql://options
//   json2gql://tags/{preset}   preset is "default" or "bson"

const (
	uriOptions    = "json2gql://options"
	uriTagsPrefix = "json2gql://tags/"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         uriOptions,
		Name:        "Engine Options",
		Description: "Effective conversion options of this server (root type, tag prefix, separators, null type name, suffix, max depth). Tool calls start from these and apply their own options on top.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceOptions)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: uriTagsPrefix + "{preset}",
		Name:        "Tag Table",
		Description: "Tag table for a preset: default (configured tags only) or bson (with the MongoDB extended JSON tags). The json2gql_list_tags tool returns the same listing for arbitrary options.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceTags)
}

type optionsResource struct {
	RootType        string            `json:"rootType"`
	TagPrefix       string            `json:"bson_prefix"`
	LineSeparator   string            `json:"eol"`
	NestedDelimiter string            `json:"nestedDelimiter"`
	NullTypeName    string            `json:"nullData"`
	FieldSuffix     string            `json:"suffix"`
	MaxDepth        int               `json:"maxDepth"`
	Tags            map[string]string `json:"tags"`
	Format          string            `json:"format"`
	NameFromSource  bool              `json:"name_from_source"`
}

func (s *Server) handleResourceOptions(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	engine := s.deps.Engine(nil, nil)
	return toResourceResult(req.Params.URI, optionsResource{
		RootType:        engine.RootType(),
		TagPrefix:       engine.TagPrefix(),
		LineSeparator:   engine.LineSeparator(),
		NestedDelimiter: engine.NestedDelimiter(),
		NullTypeName:    engine.NullTypeName(),
		FieldSuffix:     engine.FieldSuffix(),
		MaxDepth:        engine.MaxDepth(),
		Tags:            engine.Tags(),
		Format:          s.deps.Config.Format,
		NameFromSource:  s.deps.Config.NameFromSource,
	})
}

func (s *Server) handleResourceTags(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	preset, err := parseTagsURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	var options map[string]any
	if preset == "bson" {
		options = map[string]any{typesystem.KeyBuiltinTags: true}
	}
	engine := s.deps.Engine(options, nil)
	return toResourceResult(req.Params.URI, tools.TagList(engine.TagPrefix(), engine.Tags()))
}

// parseTagsURI extracts the preset from a json2gql://tags/{preset} URI.
func parseTagsURI(uri string) (string, error) {
	preset, ok := strings.CutPrefix(uri, uriTagsPrefix)
	if !ok {
		return "", tools.ErrInvalidInput("invalid URI: expected " + uriTagsPrefix + "{preset}")
	}
	switch preset {
	case "default", "bson":
		return preset, nil
	default:
		return "", tools.ErrInvalidInput(fmt.Sprintf("unknown tag preset: %q", preset))
	}
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
