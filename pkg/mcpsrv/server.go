package mcpsrv

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/json2gql/internal/config"
	"github.com/usestring/json2gql/internal/logging"
	"github.com/usestring/json2gql/internal/mcp"
	"github.com/usestring/json2gql/internal/mcp/tools"
	"github.com/usestring/json2gql/internal/source"
)

// Server is the json2gql MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with the builtin json2gql tools.
//
// Configuration comes from WithConfig, or else from the defaults, an optional
// json2gql.yaml and JSON2GQL_* environment variables. Use functional options
// to configure logging, add custom tools, etc.
func NewServer(opts ...Option) (*Server, error) {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.config == nil {
		loaded, err := config.Load(config.LoadOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.config = loaded
	}

	var logCleanup func() error
	if !cfg.skipLoggingSetup {
		logCfg := cfg.config.Logging()
		if cfg.logLevel != "" {
			logCfg.Level = cfg.logLevel
		}
		if cfg.logFile != "" {
			logCfg.FilePath = cfg.logFile
		}
		var err error
		logCleanup, err = logging.Setup(logCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to setup logging: %w", err)
		}
	}

	var fetchOpts []source.Option
	if cfg.httpClient != nil {
		fetchOpts = append(fetchOpts, source.WithHTTPClient(cfg.httpClient))
	}
	fetcher, err := source.NewFetcherFromConfig(cfg.config, fetchOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	deps := &Deps{Config: cfg.config, Fetcher: fetcher}

	internalOpts := []mcp.ServerOption{mcp.WithVersion(cfg.version)}
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}

	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}

	// Deferred tool registrations need Deps
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(&tools.Deps{Config: deps.Config, Fetcher: deps.Fetcher}, internalOpts...)
	if err != nil {
		if logCleanup != nil {
			_ = logCleanup()
		}
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// Run starts the MCP server with stdio transport.
// The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// MCPServer returns the underlying MCP server, e.g. to connect it to an
// in-memory transport in tests.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}
