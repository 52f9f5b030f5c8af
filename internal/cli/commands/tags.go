package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/usestring/json2gql/internal/mcp/tools"
)

// NewTagsCommand creates the tags command.
func NewTagsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Print the effective tag table",
		Long: `Print the wrapper keys that become scalar types. An object with a
single member whose key is listed here is typed as the prefixed name
instead of a nested type. --bson adds the MongoDB extended JSON keys and
--tag adds your own.`,
		Example: `  json2gql tags --bson
  json2gql tags --tag '$uuid=UUID' --tag-prefix ''`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			engine := cfg.Engine()
			list := tools.TagList(engine.TagPrefix(), engine.Tags())

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			if len(list.Tags) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "no tags configured; use --bson or --tag")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "KEY\tTYPE")
			for _, tag := range list.Tags {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", tag.Key, tag.TypeName)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
