// Package cli provides the command-line interface for json2gql.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/usestring/json2gql/internal/cli/commands"
	"github.com/usestring/json2gql/internal/config"
	"github.com/usestring/json2gql/internal/logging"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile        string
		cleanupLogging func() error
	)

	rootCmd := &cobra.Command{
		Use:   "json2gql",
		Short: "Infer GraphQL type definitions from JSON documents",
		Long: `json2gql reads JSON, YAML, CSV or database rows and prints the GraphQL
type system that describes them: one type per object, nested objects named
after their path, arrays typed from their first element.

Inputs may be files, "-" for stdin, http(s) URLs, sqlite://path or
postgres:// databases.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(config.LoadOptions{
				File:  cfgFile,
				Flags: cmd.Root().PersistentFlags(),
			})
			if err != nil {
				return err
			}

			lc := cfg.Logging()
			if lc.FilePath == "" {
				lc.Output = cmd.ErrOrStderr()
			}
			cleanupLogging, err = logging.Setup(lc)
			if err != nil {
				return err
			}
			if cfg.File != "" {
				slog.Debug("using config file", slog.String("path", cfg.File))
			}

			cmd.SetContext(config.WithContext(cmd.Context(), cfg))
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if cleanupLogging != nil {
				return cleanupLogging()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./json2gql.yaml)")

	// Conversion
	pf.String("root-type", "", "name of the root type (default \"RootType\")")
	pf.Bool("name-from-source", true, "name each root type after its input (file name, URL path, table)")
	pf.String("tag-prefix", "", "prefix for tagged scalar type names (default \"BSON_\")")
	pf.String("eol", "", "line separator inside a type block (default \"\\n\")")
	pf.String("nested-delimiter", "", "joins owner and field in nested type names (default \"_\")")
	pf.String("null-data", "", "type name for null and empty-array values (default \"TBD\")")
	pf.String("suffix", "", "appended to every field type except the null placeholder, e.g. \"!\"")
	pf.Bool("bson", false, "enable the built-in MongoDB extended JSON tags")
	pf.Int("max-depth", 0, "maximum nesting depth (default 1000)")
	pf.StringToString("tag", nil, "extra tag wrapper key and type name, e.g. --tag '$oid=ObjectId'")

	// Input and output
	pf.String("select", "", "jq path expression selecting the sub-document to convert")
	pf.String("format", "", "output format: graphql or jsonschema (default \"graphql\")")
	pf.String("input-format", "", "input format: auto, json, ndjson, yaml, csv, tsv (default \"auto\")")
	pf.StringP("out-dir", "o", "", "write one file per input into this directory instead of stdout")
	pf.StringSliceP("header", "H", nil, "HTTP request header as name:value (repeatable)")
	pf.StringSlice("db-table", nil, "database tables to read (default: all)")
	pf.Int("workers", 0, "inputs converted concurrently (default 8)")
	pf.Int("http-timeout-ms", 0, "HTTP fetch timeout in milliseconds (default 10000)")

	// Logging
	pf.String("log-level", "", "log level: debug, info, warn, error (default \"info\")")
	pf.String("log-format", "", "log format: text or json (default \"text\")")
	pf.String("log-file", "", "log to this file with rotation instead of stderr")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatGraphQL, config.FormatJSONSchema}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("input-format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "json", "ndjson", "yaml", "csv", "tsv"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewConvertCommand())
	rootCmd.AddCommand(commands.NewServeCommand(Version))
	rootCmd.AddCommand(commands.NewTagsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
