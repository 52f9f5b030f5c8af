package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/usestring/json2gql/pkg/mcpsrv"
)

// NewServeCommand creates the serve command.
func NewServeCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Serve json2gql over the Model Context Protocol on stdin/stdout.

Tools:
  json2gql_infer_types  infer GraphQL types from an inline document or URL
  json2gql_list_tags    list wrapper keys that become scalar types

Conversion flags and the config file set the defaults of every tool call.
Logs go to stderr or --log-file; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}

			srv, err := mcpsrv.NewServer(
				mcpsrv.WithConfig(cfg),
				mcpsrv.WithoutLoggingSetup(),
				mcpsrv.WithVersion(version),
			)
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			slog.Info("starting MCP server", slog.String("version", version), slog.String("transport", "stdio"))
			return srv.Run(ctx)
		},
	}
}
