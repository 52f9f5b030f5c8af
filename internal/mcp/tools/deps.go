package tools

import (
	"github.com/usestring/json2gql/internal/config"
	"github.com/usestring/json2gql/internal/pipeline"
	"github.com/usestring/json2gql/internal/source"
	"github.com/usestring/json2gql/pkg/document"
	"github.com/usestring/json2gql/pkg/typesystem"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config  *config.Config
	Fetcher *source.Fetcher
}

// Engine resolves conversion settings: server config first, then the
// caller's option map (original option names such as rootType, BSON, eol)
// and extra tags.
func (d *Deps) Engine(options map[string]any, tags map[string]string) *typesystem.Config {
	return typesystem.ResolveMap(options, tags, d.Config.EngineOptions()...)
}

// Pipeline builds a single-document pipeline for one tool call.
func (d *Deps) Pipeline(engine *typesystem.Config, format, sel, inputFormat string, nameFromSource bool) (*pipeline.Pipeline, error) {
	if format == "" {
		format = d.Config.Format
	}
	return pipeline.New(d.Fetcher, pipeline.Config{
		Engine:         engine,
		Select:         sel,
		Format:         format,
		InputFormat:    document.ParseFormat(inputFormat),
		Workers:        1,
		NameFromSource: nameFromSource,
	})
}
