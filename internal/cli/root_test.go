package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConvert_File(t *testing.T) {
	path := writeFile(t, "todos.json", `[{"userId": 1, "id": 1, "title": "delectus aut autem", "completed": false}]`)

	out, errOut, err := execute(t, "", "convert", path)
	require.NoError(t, err)
	assert.Equal(t, "type todos {\n  userId: Int\n  id: Int\n  title: String\n  completed: Boolean\n}\n", out)
	assert.Contains(t, errOut, "converted 1 of 1 inputs into 1 types")
}

func TestConvert_Stdin(t *testing.T) {
	out, _, err := execute(t, `{"a": {"b": 1}}`, "convert")
	require.NoError(t, err)
	assert.Equal(t, "type stdin_a {\n  b: Int\n}\ntype stdin {\n  a: stdin_a\n}\n", out)

	out, _, err = execute(t, `{"a": {"b": 1}}`, "convert", "--name-from-source=false", "--root-type", "R", "--suffix", "!")
	require.NoError(t, err)
	assert.Equal(t, "type R_a {\n  b: Int!\n}\ntype R {\n  a: R_a!\n}\n", out)
}

func TestConvert_BSONTags(t *testing.T) {
	doc := `{"_id": {"$oid": "5099803df3f4948bd2f98391"}, "uuid": {"$uuid": "x"}}`
	out, _, err := execute(t, doc, "convert", "--root-type", "Doc", "--name-from-source=false",
		"--bson", "--tag", "$uuid=UUID")
	require.NoError(t, err)
	assert.Equal(t, "type Doc {\n  _id: BSON_Objectid\n  uuid: BSON_UUID\n}\n", out)
}

func TestConvert_OutDirAndFormat(t *testing.T) {
	path := writeFile(t, "users.json", `{"id": 1}`)
	dir := filepath.Join(t.TempDir(), "schemas")

	_, _, err := execute(t, "", "convert", "-o", dir, "--format", "jsonschema", path)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "users.schema.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"$defs"`)
	assert.Contains(t, string(data), `"#/$defs/users"`)
}

func TestConvert_Failures(t *testing.T) {
	good := writeFile(t, "good.json", `{"a": true}`)
	missing := filepath.Join(t.TempDir(), "missing.json")

	out, errOut, err := execute(t, "", "convert", good, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 inputs failed")
	assert.Equal(t, "type good {\n  a: Boolean\n}\n", out)
	assert.Contains(t, errOut, "error: "+missing)

	_, _, err = execute(t, "", "convert", "--format", "xml", good)
	assert.Error(t, err)

	_, _, err = execute(t, "", "convert", "--input-format", "xml", good)
	assert.Error(t, err)

	_, _, err = execute(t, "", "convert", "--watch", "-")
	assert.ErrorContains(t, err, "--watch")
}

func TestTags(t *testing.T) {
	out, _, err := execute(t, "", "tags", "--tag", "$uuid=UUID", "--tag-prefix", "")
	require.NoError(t, err)
	assert.Regexp(t, `\$uuid\s+UUID\n`, out)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "json2gql v"+Version)

	out, _, err = execute(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "json2gql "+Version+"\n", out)
}
