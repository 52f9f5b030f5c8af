package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/json2gql/internal/config"
	"github.com/usestring/json2gql/pkg/types"
)

func runTags(t *testing.T, cfg *config.Config, args ...string) (string, string) {
	t.Helper()
	cmd := NewTagsCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SetContext(config.WithContext(t.Context(), cfg))
	require.NoError(t, cmd.Execute())
	return out.String(), errOut.String()
}

func TestTagsCommand(t *testing.T) {
	cfg, err := config.Load(config.LoadOptions{})
	require.NoError(t, err)

	out, errOut := runTags(t, cfg)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "no tags configured")

	cfg.BuiltinTags = true
	cfg.Tags = map[string]string{"$uuid": "UUID"}
	out, _ = runTags(t, cfg)
	assert.Contains(t, out, "KEY")
	assert.Regexp(t, `\$oid\s+BSON_Objectid\n`, out)
	assert.Regexp(t, `\$uuid\s+BSON_UUID\n`, out)

	out, _ = runTags(t, cfg, "--json")
	var list types.ListTagsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, "BSON_", list.Prefix)
	assert.Len(t, list.Tags, 17)
}
