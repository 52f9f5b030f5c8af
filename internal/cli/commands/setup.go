// Package commands implements the json2gql subcommands.
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/usestring/json2gql/internal/config"
	"github.com/usestring/json2gql/internal/pipeline"
	"github.com/usestring/json2gql/internal/source"
	"github.com/usestring/json2gql/pkg/document"
)

// configFrom returns the config loaded by the root command, or loads one
// from defaults and the environment when the command runs standalone.
func configFrom(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		return cfg, nil
	}
	return config.Load(config.LoadOptions{})
}

// NewFetcher builds a source.Fetcher from the fetch settings in cfg.
func NewFetcher(cfg *config.Config, stdin io.Reader) (*source.Fetcher, error) {
	var opts []source.Option
	if stdin != nil {
		opts = append(opts, source.WithStdin(stdin))
	}
	return source.NewFetcherFromConfig(cfg, opts...)
}

// NewPipeline builds a pipeline from cfg.
func NewPipeline(cfg *config.Config, fetcher *source.Fetcher) (*pipeline.Pipeline, error) {
	inputFormat := document.ParseFormat(cfg.InputFormat)
	if inputFormat == document.Unknown && cfg.InputFormat != "" && cfg.InputFormat != "auto" {
		return nil, fmt.Errorf("invalid input format %q", cfg.InputFormat)
	}
	return pipeline.New(fetcher, pipeline.Config{
		Engine:         cfg.Engine(),
		Select:         cfg.Select,
		Format:         cfg.Format,
		InputFormat:    inputFormat,
		Workers:        cfg.FetchWorkers,
		NameFromSource: cfg.NameFromSource,
	})
}
