// Package pipeline runs inputs through fetch, decode, select, convert and
// render, concurrently and in input order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/json2gql/internal/source"
	"github.com/usestring/json2gql/pkg/document"
	"github.com/usestring/json2gql/pkg/jsonschema"
	"github.com/usestring/json2gql/pkg/selector"
	"github.com/usestring/json2gql/pkg/typesystem"
)

// Output formats.
const (
	FormatGraphQL    = "graphql"
	FormatJSONSchema = "jsonschema"
)

// Config controls a Pipeline.
type Config struct {
	Engine      *typesystem.Config // nil = defaults
	Select      string             // jq path expression; empty = whole document
	Format      string             // FormatGraphQL (default) or FormatJSONSchema
	InputFormat document.Format    // Unknown or empty = detect per input
	Workers     int                // concurrent inputs; <1 = 1
	// NameFromSource names each root type after its document ID instead of
	// Engine.RootType().
	NameFromSource bool
}

// Result is the outcome for one document.
type Result struct {
	ID     string
	Source string
	Format string
	Schema string
	Types  int
	Err    error
}

// Pipeline converts inputs to schemas.
type Pipeline struct {
	fetcher   *source.Fetcher
	converter *typesystem.Converter
	exporter  *jsonschema.Exporter
	selector  *selector.Selector
	cfg       Config
}

// New validates cfg and builds a Pipeline.
func New(fetcher *source.Fetcher, cfg Config) (*Pipeline, error) {
	if fetcher == nil {
		fetcher = source.NewFetcher()
	}
	if cfg.Engine == nil {
		cfg.Engine = typesystem.Resolve()
	}
	switch cfg.Format {
	case "":
		cfg.Format = FormatGraphQL
	case FormatGraphQL, FormatJSONSchema:
	default:
		return nil, fmt.Errorf("invalid format %q", cfg.Format)
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = document.Unknown
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	sel, err := selector.Compile(cfg.Select)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		fetcher:   fetcher,
		converter: typesystem.NewConverter(cfg.Engine),
		exporter:  jsonschema.NewExporter(cfg.Engine),
		selector:  sel,
		cfg:       cfg,
	}, nil
}

// Run converts every input. Failures are recorded per result and do not stop
// the batch; the first failure in input order is also returned. Results
// follow input order, with database inputs expanded to one result per table.
func (p *Pipeline) Run(ctx context.Context, inputs []string) ([]Result, error) {
	runID := uuid.New().String()
	start := time.Now()
	slog.Debug("pipeline run started",
		slog.String("run_id", runID),
		slog.Int("inputs", len(inputs)),
		slog.Int("workers", p.cfg.Workers),
	)

	perInput := make([][]Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, input := range inputs {
		g.Go(func() error {
			perInput[i] = p.runInput(gctx, input)
			return nil
		})
	}
	_ = g.Wait()

	var (
		results  []Result
		firstErr error
		failed   int
	)
	for _, rs := range perInput {
		for _, r := range rs {
			if r.Err != nil {
				failed++
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", r.Source, r.Err)
				}
			}
			results = append(results, r)
		}
	}

	slog.Debug("pipeline run finished",
		slog.String("run_id", runID),
		slog.Int("results", len(results)),
		slog.Int("failed", failed),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return results, firstErr
}

func (p *Pipeline) runInput(ctx context.Context, input string) []Result {
	if err := ctx.Err(); err != nil {
		return []Result{{Source: input, Format: p.cfg.Format, Err: err}}
	}

	spec, err := source.ParseSpec(input)
	if err != nil {
		return []Result{{Source: input, Format: p.cfg.Format, Err: err}}
	}
	docs, err := p.fetcher.Fetch(ctx, spec)
	if err != nil {
		return []Result{{ID: specID(spec), Source: input, Format: p.cfg.Format, Err: err}}
	}

	results := make([]Result, len(docs))
	for i, doc := range docs {
		results[i] = p.Convert(ctx, doc)
	}
	return results
}

func specID(spec source.Spec) string {
	switch spec.Kind {
	case source.KindHTTP:
		return source.IDFromURL(spec.Location)
	case source.KindFile:
		return source.IDFromPath(spec.Location)
	default:
		return spec.Kind.String()
	}
}

// Convert turns one fetched document into a schema.
func (p *Pipeline) Convert(ctx context.Context, doc source.Document) Result {
	res := Result{ID: doc.ID, Source: doc.Source, Format: p.cfg.Format}

	table, root, err := p.ConvertToTable(ctx, doc)
	if err != nil {
		res.Err = err
		return res
	}
	res.Types = table.Len()
	res.Schema, res.Err = p.Render(table, root)
	return res
}

// Render renders table in the configured output format.
func (p *Pipeline) Render(table *typesystem.TypeTable, root string) (string, error) {
	if p.cfg.Format != FormatJSONSchema {
		return table.String(), nil
	}
	out, err := jsonschema.Marshal(p.exporter.FromTable(table, root))
	if err != nil {
		return "", fmt.Errorf("encoding JSON Schema: %w", err)
	}
	return string(out), nil
}

// Format returns the output format.
func (p *Pipeline) Format() string { return p.cfg.Format }

// ConvertToTable decodes, selects and converts doc, returning the type table
// and the root type name.
func (p *Pipeline) ConvertToTable(ctx context.Context, doc source.Document) (*typesystem.TypeTable, string, error) {
	v, err := p.decode(doc)
	if err != nil {
		return nil, "", err
	}

	v, err = p.selector.Select(ctx, v)
	if err != nil {
		if errors.Is(err, selector.ErrNoMatch) {
			return nil, "", fmt.Errorf("select %q: %w", p.selector, err)
		}
		return nil, "", err
	}

	root := p.cfg.Engine.RootType()
	if p.cfg.NameFromSource && doc.ID != "" {
		root = doc.ID
	}

	table, err := p.converter.ConvertToTable(v, root)
	if err != nil {
		return nil, "", fmt.Errorf("converting: %w", err)
	}
	return table, root, nil
}

func (p *Pipeline) decode(doc source.Document) (typesystem.Value, error) {
	if doc.Value != nil {
		return *doc.Value, nil
	}
	if p.cfg.InputFormat != document.Unknown {
		v, err := document.Decode(doc.Data, p.cfg.InputFormat)
		if err != nil {
			return typesystem.Value{}, fmt.Errorf("decoding %s: %w", p.cfg.InputFormat, err)
		}
		return v, nil
	}
	v, f, err := document.DecodeAuto(doc.Data, doc.ContentType, doc.Source)
	if err != nil {
		return typesystem.Value{}, fmt.Errorf("decoding %s: %w", f, err)
	}
	slog.Debug("decoded input", slog.String("id", doc.ID), slog.String("format", string(f)))
	return v, nil
}
