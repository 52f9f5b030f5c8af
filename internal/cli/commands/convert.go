package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/json2gql/internal/config"
	"github.com/usestring/json2gql/internal/pipeline"
	"github.com/usestring/json2gql/internal/source"
)

var printer = message.NewPrinter(language.English)

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "convert [inputs...]",
		Short: "Convert documents to GraphQL type definitions",
		Long: `Convert each input to a GraphQL type system (or JSON Schema with
--format jsonschema). With no inputs, stdin is read.

Schemas are printed to stdout, or written as <id>.graphql / <id>.schema.json
into --out-dir. The id is the file name, the URL path joined by "_", or the
table name for database inputs.`,
		Example: `  # Infer types for a local file
  json2gql convert todos.json

  # Fetch a URL with a header and write the schema to ./schemas
  json2gql convert -H 'Accept: application/json' -o schemas \
    'https://api.github.com/repos/vmg/redcarpet/issues?state=closed'

  # MongoDB extended JSON with built-in tags, non-null fields
  json2gql convert --bson --suffix '!' export.json

  # One type per table of a SQLite database
  json2gql convert sqlite://app.db

  # Re-convert on every save
  json2gql convert --watch -o schemas data/*.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			return runConvert(cmd, args, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-convert file inputs when they change")

	return cmd
}

func runConvert(cmd *cobra.Command, inputs []string, watch bool) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}
	fetcher, err := NewFetcher(cfg, cmd.InOrStdin())
	if err != nil {
		return err
	}
	p, err := NewPipeline(cfg, fetcher)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runErr := convertOnce(ctx, cmd, cfg, p, inputs)
	if !watch {
		return runErr
	}

	var files []string
	for _, in := range inputs {
		if spec, err := source.ParseSpec(in); err == nil && spec.Kind == source.KindFile {
			files = append(files, spec.Location)
		}
	}
	if len(files) == 0 {
		return errors.New("--watch needs at least one file input")
	}

	slog.Info("watching for changes", slog.Int("files", len(files)))
	return pipeline.Watch(ctx, files, pipeline.DefaultDebounce, func(path string) {
		// failures are already reported; keep watching
		_ = convertOnce(ctx, cmd, cfg, p, []string{path})
	})
}

func convertOnce(ctx context.Context, cmd *cobra.Command, cfg *config.Config, p *pipeline.Pipeline, inputs []string) error {
	start := time.Now()
	results, runErr := p.Run(ctx, inputs)

	errOut := cmd.ErrOrStderr()
	failed, types := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			_, _ = fmt.Fprintf(errOut, "error: %s: %v\n", r.Source, r.Err)
			continue
		}
		types += r.Types
	}

	if cfg.OutDir != "" {
		paths, err := pipeline.Write(results, cfg.OutDir)
		for _, path := range paths {
			slog.Info("wrote schema", slog.String("path", path))
		}
		if err != nil {
			return err
		}
	} else if err := pipeline.Print(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	printSummary(errOut, len(results)-failed, len(results), types, time.Since(start))

	if runErr != nil {
		return fmt.Errorf("%d of %d inputs failed: %w", failed, len(results), runErr)
	}
	return nil
}

func printSummary(w io.Writer, ok, total, types int, elapsed time.Duration) {
	_, _ = printer.Fprintf(w, "converted %d of %d inputs into %d types in %v\n",
		ok, total, types, elapsed.Round(time.Millisecond))
}
