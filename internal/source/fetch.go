package source

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/usestring/json2gql/internal/cache"
)

// DefaultMaxBytes caps how much of a single input is read.
const DefaultMaxBytes = 64 << 20

// HTTPError is returned when a URL responds with status >= 400.
type HTTPError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Message)
}

// Fetcher retrieves documents for parsed specs. It is safe for concurrent use.
type Fetcher struct {
	httpClient *http.Client
	timeout    time.Duration
	headers    http.Header
	cache      *cache.DocCache
	maxBytes   int64
	tables     []string
	stdin      io.Reader
	openDB     func(driver, dsn string) (*sql.DB, error)
}

// Option is a functional option for configuring the Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = c }
}

// WithTimeout bounds each HTTP request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithHeaders adds request headers to every HTTP fetch.
func WithHeaders(h http.Header) Option {
	return func(f *Fetcher) { f.headers = h.Clone() }
}

// WithCache caches HTTP responses by URL.
func WithCache(c *cache.DocCache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithMaxBytes caps the size of a single input. Values <= 0 are ignored.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithTables restricts database sources to the named tables.
func WithTables(tables []string) Option {
	return func(f *Fetcher) { f.tables = append([]string(nil), tables...) }
}

// WithStdin sets the reader used for the "-" input.
func WithStdin(r io.Reader) Option {
	return func(f *Fetcher) { f.stdin = r }
}

// WithDBOpener replaces sql.Open, mainly for tests.
func WithDBOpener(open func(driver, dsn string) (*sql.DB, error)) Option {
	return func(f *Fetcher) { f.openDB = open }
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
		maxBytes:   DefaultMaxBytes,
		stdin:      os.Stdin,
		openDB:     sql.Open,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the documents for spec. Database specs yield one document
// per table; every other kind yields exactly one.
func (f *Fetcher) Fetch(ctx context.Context, spec Spec) ([]Document, error) {
	switch spec.Kind {
	case KindFile:
		doc, err := f.fetchFile(spec)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	case KindStdin:
		data, err := f.readAll(f.stdin, "stdin")
		if err != nil {
			return nil, err
		}
		return []Document{{ID: "stdin", Source: spec.Raw, Data: data}}, nil
	case KindHTTP:
		doc, err := f.fetchHTTP(ctx, spec)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	case KindSQLite, KindPostgres:
		return f.fetchSQL(ctx, spec)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, spec.Kind)
	}
}

func (f *Fetcher) fetchFile(spec Spec) (Document, error) {
	file, err := os.Open(spec.Location)
	if err != nil {
		return Document{}, fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()

	data, err := f.readAll(file, spec.Location)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: IDFromPath(spec.Location), Source: spec.Raw, Data: data}, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, spec Spec) (Document, error) {
	doc := Document{ID: IDFromURL(spec.Location), Source: spec.Raw}
	if f.cache != nil {
		if e, ok := f.cache.Get(spec.Location); ok {
			slog.Debug("document cache hit", slog.String("url", spec.Location))
			doc.Data, doc.ContentType = e.Data, e.ContentType
			return doc, nil
		}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.Location, nil)
	if err != nil {
		return Document{}, fmt.Errorf("creating request: %w", err)
	}
	for name, values := range f.headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		slog.Debug("HTTP request failed",
			slog.String("url", spec.Location),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return Document{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Debug("HTTP request returned error",
			slog.String("url", spec.Location),
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return Document{}, &HTTPError{
			URL:        spec.Location,
			StatusCode: resp.StatusCode,
			Message:    string(bytes.TrimSpace(body)),
		}
	}

	data, err := f.readAll(resp.Body, spec.Location)
	if err != nil {
		return Document{}, err
	}
	doc.Data = data
	doc.ContentType = resp.Header.Get("Content-Type")

	slog.Debug("HTTP request completed",
		slog.String("url", spec.Location),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if f.cache != nil {
		f.cache.Put(spec.Location, cache.Entry{Data: data, ContentType: doc.ContentType})
	}
	return doc, nil
}

func (f *Fetcher) readAll(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("reading %s: input exceeds %d bytes", name, f.maxBytes)
	}
	return data, nil
}
