// Package source retrieves the documents json2gql converts: local files,
// stdin, HTTP URLs and SQL databases.
package source

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/usestring/json2gql/pkg/typesystem"
)

// ErrUnsupportedSource is returned for input specs with an unknown scheme.
var ErrUnsupportedSource = errors.New("unsupported source")

// Kind identifies how a source is retrieved.
type Kind int

const (
	KindFile Kind = iota
	KindStdin
	KindHTTP
	KindSQLite
	KindPostgres
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindStdin:
		return "stdin"
	case KindHTTP:
		return "http"
	case KindSQLite:
		return "sqlite"
	case KindPostgres:
		return "postgres"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Spec is a parsed input argument.
type Spec struct {
	Kind Kind
	Raw  string // argument as given
	// Location is the file path, URL or database DSN.
	Location string
}

// ParseSpec classifies an input argument:
//
//	-                         stdin
//	http://..., https://...   URL
//	sqlite://path             SQLite database file
//	postgres://..., postgresql://...
//	file://path or a bare path
func ParseSpec(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Spec{}, fmt.Errorf("%w: empty input", ErrUnsupportedSource)
	}
	if s == "-" {
		return Spec{Kind: KindStdin, Raw: s}, nil
	}

	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return Spec{Kind: KindFile, Raw: s, Location: s}, nil
	}
	switch strings.ToLower(scheme) {
	case "http", "https":
		return Spec{Kind: KindHTTP, Raw: s, Location: s}, nil
	case "sqlite", "sqlite3":
		if rest == "" {
			return Spec{}, fmt.Errorf("%w: %s: missing database path", ErrUnsupportedSource, s)
		}
		return Spec{Kind: KindSQLite, Raw: s, Location: rest}, nil
	case "postgres", "postgresql":
		return Spec{Kind: KindPostgres, Raw: s, Location: s}, nil
	case "file":
		u, err := url.Parse(s)
		if err != nil {
			return Spec{}, fmt.Errorf("parsing %s: %w", s, err)
		}
		p := u.Path
		if u.Host != "" && u.Host != "localhost" {
			// file://relative/path
			p = u.Host + p
		}
		return Spec{Kind: KindFile, Raw: s, Location: filepath.FromSlash(p)}, nil
	default:
		return Spec{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, scheme)
	}
}

// Document is one retrieved input. Data is set for byte sources; Value is
// set when the source already yields structured values (SQL rows).
type Document struct {
	ID          string
	Source      string
	Data        []byte
	ContentType string
	Value       *typesystem.Value
}

// IDFromURL derives a document ID from the URL path segments joined by "_",
// e.g. https://api.github.com/repos/vmg/redcarpet/issues?state=closed gives
// repos_vmg_redcarpet_issues.
func IDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return sanitizeID(raw)
	}
	var parts []string
	for seg := range strings.SplitSeq(u.Path, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) > 0 {
		last := len(parts) - 1
		parts[last] = strings.TrimSuffix(parts[last], path.Ext(parts[last]))
	}
	if id := sanitizeID(strings.Join(parts, "_")); id != "" {
		return id
	}
	if id := sanitizeID(u.Hostname()); id != "" {
		return id
	}
	return "document"
}

// IDFromPath derives a document ID from a file name without its extension.
func IDFromPath(p string) string {
	base := filepath.Base(p)
	if id := sanitizeID(strings.TrimSuffix(base, filepath.Ext(base))); id != "" {
		return id
	}
	return "document"
}

// sanitizeID keeps letters, digits and '_' and maps everything else to '_'.
func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

// ParseHeaders turns "name:value" strings into a header set. Each string is
// split at its first colon, so values may contain colons.
func ParseHeaders(values []string) (http.Header, error) {
	h := make(http.Header, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (want name:value)", v)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}
