package source

import (
	"fmt"

	"github.com/usestring/json2gql/internal/cache"
	"github.com/usestring/json2gql/internal/config"
)

// NewFetcherFromConfig builds a Fetcher from the fetch settings in cfg.
// extra options are applied last.
func NewFetcherFromConfig(cfg *config.Config, extra ...Option) (*Fetcher, error) {
	headers, err := ParseHeaders(cfg.Headers)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithHeaders(headers),
		WithTimeout(cfg.HTTPTimeout()),
		WithMaxBytes(cfg.MaxInputBytes),
		WithTables(cfg.DBTables),
	}
	if cfg.FetchCacheMaxItems > 0 {
		docCache, err := cache.NewDocCache(cfg.FetchCacheMaxItems, cfg.FetchCacheTTL())
		if err != nil {
			return nil, fmt.Errorf("creating document cache: %w", err)
		}
		opts = append(opts, WithCache(docCache))
	}
	return NewFetcher(append(opts, extra...)...), nil
}
