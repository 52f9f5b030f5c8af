// Package document decodes raw inputs (JSON, NDJSON, YAML, CSV) into
// order-preserving typesystem values.
package document

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// Format is a supported input encoding.
type Format string

const (
	JSON    Format = "json"
	NDJSON  Format = "ndjson"
	YAML    Format = "yaml"
	CSV     Format = "csv"
	TSV     Format = "tsv"
	Unknown Format = "unknown"
)

// ParseFormat maps a user supplied format name to a Format. Empty or
// unrecognized names return Unknown.
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON
	case "ndjson", "jsonl", "jsonlines":
		return NDJSON
	case "yaml", "yml":
		return YAML
	case "csv":
		return CSV
	case "tsv":
		return TSV
	default:
		return Unknown
	}
}

// DetectFormat picks the format of data from its content type, then from
// the extension of name, then by sniffing the content.
func DetectFormat(contentType, name string, data []byte) Format {
	if f := fromContentType(contentType); f != Unknown {
		return f
	}
	if f := fromExtension(name); f != Unknown {
		return f
	}
	return sniff(data)
}

func fromContentType(contentType string) Format {
	if contentType == "" {
		return Unknown
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case strings.Contains(mediaType, "ndjson"),
		strings.Contains(mediaType, "jsonl"),
		strings.Contains(mediaType, "json-seq"):
		return NDJSON
	// application/json, application/vnd.*+json, application/problem+json
	case strings.Contains(mediaType, "json"):
		return JSON
	case strings.Contains(mediaType, "yaml"):
		return YAML
	case mediaType == "text/csv":
		return CSV
	case mediaType == "text/tab-separated-values":
		return TSV
	default:
		return Unknown
	}
}

func fromExtension(name string) Format {
	if name == "" {
		return Unknown
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return JSON
	case ".ndjson", ".jsonl":
		return NDJSON
	case ".yaml", ".yml":
		return YAML
	case ".csv":
		return CSV
	case ".tsv":
		return TSV
	default:
		return Unknown
	}
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Unknown
	}
	if json.Valid(trimmed) {
		return JSON
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		if isNDJSON(trimmed) {
			return NDJSON
		}
		// Flow-style YAML also starts with a bracket.
		return YAML
	}
	if bytes.HasPrefix(trimmed, []byte("---")) || looksLikeYAMLMapping(trimmed) {
		return YAML
	}
	if looksDelimited(trimmed, '\t') {
		return TSV
	}
	if looksDelimited(trimmed, ',') {
		return CSV
	}
	return Unknown
}

// sniffRecords is how many leading records looksDelimited inspects.
const sniffRecords = 5

// looksDelimited reports whether data starts with at least two records that
// split on comma into the same number (two or more) of fields.
func looksDelimited(data []byte, comma rune) bool {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.LazyQuotes = true

	records := 0
	for records < sniffRecords {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || len(record) < 2 {
			return false
		}
		records++
	}
	return records >= 2
}

func isNDJSON(data []byte) bool {
	lines := 0
	for line := range bytes.Lines(data) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return false
		}
		lines++
	}
	return lines > 1
}

// looksLikeYAMLMapping reports whether the first line is a "key: value" or
// "- item" entry.
func looksLikeYAMLMapping(data []byte) bool {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	first = bytes.TrimSpace(first)
	if bytes.HasPrefix(first, []byte("- ")) {
		return true
	}
	key, _, found := bytes.Cut(first, []byte(":"))
	return found && len(key) > 0 && !bytes.ContainsAny(key, " \t,\"'")
}
