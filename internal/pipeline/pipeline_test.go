package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/usestring/json2gql/internal/source"
	"github.com/usestring/json2gql/pkg/document"
	"github.com/usestring/json2gql/pkg/typesystem"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newPipeline(t *testing.T, cfg Config, opts ...source.Option) *Pipeline {
	t.Helper()
	p, err := New(source.NewFetcher(opts...), cfg)
	require.NoError(t, err)
	return p
}

const todosSchema = "type todos {\n  userId: Int\n  id: Int\n  title: String\n  completed: Boolean\n}"

func TestRun_OrderAndErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	todos := writeFile(t, dir, "todos.json", `[{"userId": 1, "id": 1, "title": "x", "completed": false}]`)
	akc := writeFile(t, dir, "akc.yaml", "name: Rex\nbreed:\n  group: Toy\n")
	bad := writeFile(t, dir, "bad.json", `{"a":`)

	p := newPipeline(t, Config{Workers: 2, NameFromSource: true})
	results, err := p.Run(context.Background(), []string{todos, bad, akc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	require.Len(t, results, 3)

	assert.Equal(t, "todos", results[0].ID)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, todosSchema, results[0].Schema)
	assert.Equal(t, 1, results[0].Types)

	assert.Equal(t, "bad", results[1].ID)
	assert.Error(t, results[1].Err)
	assert.Empty(t, results[1].Schema)

	assert.Equal(t, "akc", results[2].ID)
	require.NoError(t, results[2].Err)
	assert.Equal(t, "type akc_breed {\n  group: String\n}\ntype akc {\n  name: String\n  breed: akc_breed\n}", results[2].Schema)
	assert.Equal(t, 2, results[2].Types)
}

func TestRun_RootTypeFromEngine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.json", `{"a": 1}`)

	p := newPipeline(t, Config{Engine: typesystem.Resolve(typesystem.WithRootType("Query"))})
	results, err := p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "type Query {\n  a: Int\n}", results[0].Schema)
}

func TestRun_Select(t *testing.T) {
	path := writeFile(t, t.TempDir(), "resp.json", `{"meta": {"page": 1}, "data": {"items": [{"id": 1, "name": "a"}]}}`)

	p := newPipeline(t, Config{Select: ".data.items", NameFromSource: true})
	results, err := p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, "type resp {\n  id: Int\n  name: String\n}", results[0].Schema)

	p = newPipeline(t, Config{Select: ".nope.deeper[0]", NameFromSource: true})
	results, err = p.Run(context.Background(), []string{path})
	require.NoError(t, err, "missing members select null")
	assert.Equal(t, "type resp {\n}", results[0].Schema)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(nil, Config{Format: "xml"})
	assert.Error(t, err)

	_, err = New(nil, Config{Select: ".a |||"})
	assert.Error(t, err)
}

func TestRun_JSONSchema(t *testing.T) {
	path := writeFile(t, t.TempDir(), "todos.json", `{"id": 1, "owner": {"login": "x"}}`)

	p := newPipeline(t, Config{Format: FormatJSONSchema, NameFromSource: true})
	results, err := p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, FormatJSONSchema, results[0].Format)
	assert.Equal(t, 2, results[0].Types)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(results[0].Schema), &schema))
	assert.Equal(t, "#/$defs/todos", schema["$ref"])
	assert.Contains(t, schema["$defs"], "todos_owner")
}

func TestRun_ForcedInputFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.txt", "name,age\nann,31\nbob,40\n")

	p := newPipeline(t, Config{InputFormat: document.CSV, NameFromSource: true})
	results, err := p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, "type people {\n  name: String\n  age: Int\n}", results[0].Schema)
}

func TestRun_HTTP(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte("day: 2020-01-02\nsite: http://example.com\n"))
	}))
	defer srv.Close()

	p := newPipeline(t, Config{NameFromSource: true}, source.WithHTTPClient(srv.Client()))
	results, err := p.Run(context.Background(), []string{srv.URL + "/api/v1/events"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "api_v1_events", results[0].ID)
	assert.Equal(t, "type api_v1_events {\n  day: Date\n  site: Id\n}", results[0].Schema)
}

func TestRun_BadInputs(t *testing.T) {
	p := newPipeline(t, Config{})
	results, err := p.Run(context.Background(), []string{"ftp://example.com/a.json", filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, source.ErrUnsupportedSource)
	assert.ErrorIs(t, results[1].Err, os.ErrNotExist)
	assert.Equal(t, "missing", results[1].ID)
}

func TestRun_Cancelled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.json", `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := newPipeline(t, Config{}).Run(ctx, []string{path, path})
	assert.ErrorIs(t, err, context.Canceled)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	results := []Result{
		{ID: "todos", Format: FormatGraphQL, Schema: todosSchema},
		{ID: "todos", Format: FormatGraphQL, Schema: "type todos {\n}"},
		{ID: "users", Format: FormatJSONSchema, Schema: "{}"},
		{ID: "broken", Err: assert.AnError},
	}

	paths, err := Write(results, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "todos.graphql"),
		filepath.Join(dir, "todos_2.graphql"),
		filepath.Join(dir, "users.schema.json"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, todosSchema+"\n", string(data))

	_, err = os.Stat(filepath.Join(dir, "broken.graphql"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, []Result{{Source: "a.json", Schema: "type a {\n}"}}))
	assert.Equal(t, "type a {\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, Print(&buf, []Result{
		{Source: "a.json", Schema: "type a {\n}"},
		{Source: "bad.json", Err: assert.AnError},
		{Source: "b.json", Schema: "type b {\n}"},
	}))
	assert.Equal(t, "# a.json\ntype a {\n}\n\n# b.json\ntype b {\n}\n", buf.String())
}

func TestWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", `{"a": 1}`)
	other := writeFile(t, dir, "other.json", `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{path}, 20*time.Millisecond, func(p string) { changed <- p })
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte(`{"x": 1}`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 2}`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 3}`), 0o644))

	select {
	case p := <-changed:
		assert.Equal(t, path, p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
