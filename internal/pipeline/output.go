package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Extension returns the output file extension for format.
func Extension(format string) string {
	if format == FormatJSONSchema {
		return ".schema.json"
	}
	return ".graphql"
}

// Write stores each successful result as <id><ext> in dir, creating dir if
// needed. Repeated IDs get a numeric suffix. It returns the written paths.
func Write(results []Result, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	seen := make(map[string]int)
	var paths []string
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		name := r.ID
		if name == "" {
			name = "schema"
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name += "_" + strconv.Itoa(n)
		}

		path := filepath.Join(dir, name+Extension(r.Format))
		if err := os.WriteFile(path, []byte(r.Schema+"\n"), 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Print writes successful results to w. With more than one result each
// schema is preceded by a comment naming its source.
func Print(w io.Writer, results []Result) error {
	var ok []Result
	for _, r := range results {
		if r.Err == nil {
			ok = append(ok, r)
		}
	}
	for i, r := range ok {
		if len(ok) > 1 {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if r.Format != FormatJSONSchema {
				if _, err := fmt.Fprintf(w, "# %s\n", r.Source); err != nil {
					return err
				}
			}
		}
		if _, err := io.WriteString(w, r.Schema+"\n"); err != nil {
			return err
		}
	}
	return nil
}
