// Package config loads json2gql configuration from defaults, a YAML file,
// JSON2GQL_ environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/usestring/json2gql/internal/logging"
	"github.com/usestring/json2gql/pkg/typesystem"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "JSON2GQL_"

// Output formats.
const (
	FormatGraphQL    = "graphql"
	FormatJSONSchema = "jsonschema"
)

// Default values not owned by other packages.
const (
	DefaultHTTPTimeoutMs      = 10000
	DefaultFetchWorkers       = 8
	DefaultFetchCacheMaxItems = 128
	DefaultFetchCacheTTLMs    = 60000
	DefaultMaxInputBytes      = 64 << 20
)

// DefaultFiles are looked up in the working directory when no config file
// is given.
var DefaultFiles = []string{"json2gql.yaml", "json2gql.yml"}

// Config holds all json2gql settings.
type Config struct {
	// Conversion options
	RootType        string            `koanf:"root_type"`        // ROOT_TYPE, default "RootType"
	TagPrefix       string            `koanf:"tag_prefix"`       // TAG_PREFIX, default "BSON_"
	LineSeparator   string            `koanf:"line_separator"`   // LINE_SEPARATOR, default "\n"
	NestedDelimiter string            `koanf:"nested_delimiter"` // NESTED_DELIMITER, default "_"
	NullData        string            `koanf:"null_data"`        // NULL_DATA, default "TBD"
	FieldSuffix     string            `koanf:"field_suffix"`     // FIELD_SUFFIX, default ""
	BuiltinTags     bool              `koanf:"builtin_tags"`     // BUILTIN_TAGS, default false
	MaxDepth        int               `koanf:"max_depth"`        // MAX_DEPTH, default 1000
	Tags            map[string]string `koanf:"tags"`             // extra wrapper key -> type name
	NameFromSource  bool              `koanf:"name_from_source"` // NAME_FROM_SOURCE, default true: root type = input ID

	// Input and output
	Select      string   `koanf:"select"`       // jq expression picking the sub-document
	Format      string   `koanf:"format"`       // graphql or jsonschema
	InputFormat string   `koanf:"input_format"` // auto, json, ndjson, yaml, csv, tsv
	OutDir      string   `koanf:"out_dir"`      // empty = stdout
	Headers     []string `koanf:"headers"`      // "Name: value" request headers
	DBTables    []string `koanf:"db_tables"`    // empty = every table

	// Fetching
	HTTPTimeoutMs      int   `koanf:"http_timeout_ms"`       // HTTP_TIMEOUT_MS, default 10000
	FetchWorkers       int   `koanf:"fetch_workers"`         // FETCH_WORKERS, default 8
	FetchCacheMaxItems int   `koanf:"fetch_cache_max_items"` // FETCH_CACHE_MAX_ITEMS, default 128
	FetchCacheTTLMs    int   `koanf:"fetch_cache_ttl_ms"`    // FETCH_CACHE_TTL_MS, default 60000
	MaxInputBytes      int64 `koanf:"max_input_bytes"`       // MAX_INPUT_BYTES, default 64 MiB

	// Logging
	LogLevel      string `koanf:"log_level"`        // LOG_LEVEL, default "info"
	LogFormat     string `koanf:"log_format"`       // LOG_FORMAT, default "text"
	LogFile       string `koanf:"log_file"`         // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`  // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    `koanf:"log_max_backups"`  // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    `koanf:"log_max_age_days"` // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   `koanf:"log_compress"`     // LOG_COMPRESS, default true

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Defaults returns the default configuration as koanf keys.
func Defaults() map[string]any {
	return map[string]any{
		"root_type":        typesystem.DefaultRootType,
		"tag_prefix":       typesystem.DefaultTagPrefix,
		"line_separator":   typesystem.DefaultLineSeparator,
		"nested_delimiter": typesystem.DefaultNestedDelimiter,
		"null_data":        typesystem.DefaultNullTypeName,
		"field_suffix":     "",
		"builtin_tags":     false,
		"max_depth":        typesystem.DefaultMaxDepth,
		"name_from_source": true,

		"select":       "",
		"format":       FormatGraphQL,
		"input_format": "auto",
		"out_dir":      "",

		"http_timeout_ms":       DefaultHTTPTimeoutMs,
		"fetch_workers":         DefaultFetchWorkers,
		"fetch_cache_max_items": DefaultFetchCacheMaxItems,
		"fetch_cache_ttl_ms":    DefaultFetchCacheTTLMs,
		"max_input_bytes":       DefaultMaxInputBytes,

		"log_level":        "info",
		"log_format":       logging.FormatText,
		"log_file":         "",
		"log_max_size_mb":  10,
		"log_max_backups":  5,
		"log_max_age_days": 28,
		"log_compress":     true,
	}
}

// flagKeys maps flag names whose config key is not the snake_case form of
// the flag name.
var flagKeys = map[string]string{
	"header":   "headers",
	"db-table": "db_tables",
	"workers":  "fetch_workers",
	"tag":      "tags",
	"eol":      "line_separator",
	"suffix":   "field_suffix",
	"bson":     "builtin_tags",
	"config":   "",
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	File  string         // explicit config file; empty searches DefaultFiles
	Flags *pflag.FlagSet // changed flags override everything else
}

// Load reads configuration from defaults, the config file, the environment
// and flags. Precedence (highest to lowest): flags > env vars > config file
// > defaults.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := findConfigFile(opts.File)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// JSON2GQL_FETCH_WORKERS -> fetch_workers
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, mapped := flagKeys[f.Name]
			if !mapped {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatGraphQL, FormatJSONSchema:
	default:
		return fmt.Errorf("invalid format %q (want %s or %s)", c.Format, FormatGraphQL, FormatJSONSchema)
	}
	if c.FetchWorkers < 1 {
		return fmt.Errorf("fetch_workers must be at least 1, got %d", c.FetchWorkers)
	}
	if c.HTTPTimeoutMs < 0 {
		return fmt.Errorf("http_timeout_ms must not be negative, got %d", c.HTTPTimeoutMs)
	}
	if c.FetchCacheTTLMs < 0 {
		return fmt.Errorf("fetch_cache_ttl_ms must not be negative, got %d", c.FetchCacheTTLMs)
	}
	return nil
}

// EngineOptions converts the conversion settings to typesystem options.
func (c *Config) EngineOptions() []typesystem.Option {
	return []typesystem.Option{
		typesystem.WithRootType(c.RootType),
		typesystem.WithTagPrefix(c.TagPrefix),
		typesystem.WithLineSeparator(c.LineSeparator),
		typesystem.WithNestedDelimiter(c.NestedDelimiter),
		typesystem.WithNullTypeName(c.NullData),
		typesystem.WithFieldSuffix(c.FieldSuffix),
		typesystem.WithBuiltinTags(c.BuiltinTags),
		typesystem.WithMaxDepth(c.MaxDepth),
		typesystem.WithTags(c.Tags),
	}
}

// Engine returns the resolved conversion configuration.
func (c *Config) Engine() *typesystem.Config {
	return typesystem.Resolve(c.EngineOptions()...)
}

// HTTPTimeout returns the HTTP fetch timeout. Zero disables it.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMs) * time.Millisecond
}

// FetchCacheTTL returns how long a fetched URL stays cached. Zero keeps
// entries until they are evicted.
func (c *Config) FetchCacheTTL() time.Duration {
	return time.Duration(c.FetchCacheTTLMs) * time.Millisecond
}

// Logging returns the logging configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		FilePath:   c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompress,
	}
}

type contextKey struct{}

// WithContext stores cfg in ctx.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext returns the Config stored by WithContext, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(contextKey{}).(*Config)
	return cfg
}
