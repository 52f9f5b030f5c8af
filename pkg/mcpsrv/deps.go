package mcpsrv

import (
	"github.com/usestring/json2gql/internal/config"
	"github.com/usestring/json2gql/internal/source"
	"github.com/usestring/json2gql/pkg/typesystem"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Config  *config.Config
	Fetcher *source.Fetcher
}

// Converter returns a converter for the server's engine options.
func (d *Deps) Converter() *typesystem.Converter {
	return typesystem.NewConverter(d.Config.Engine())
}
