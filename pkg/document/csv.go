package document

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/usestring/json2gql/pkg/typesystem"
)

type columnKind uint8

const (
	columnString columnKind = iota
	columnNumber
	columnBool
)

// DecodeCSV decodes a delimited table into an array of row objects. The
// first record names the columns. A column whose non-empty cells all parse
// as numbers (or all as true/false) is typed accordingly; otherwise cells
// stay strings. Empty and missing cells are null.
func DecodeCSV(data []byte, comma rune) (typesystem.Value, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return typesystem.Value{}, fmt.Errorf("CSV parse error: %w", err)
	}
	if len(records) == 0 {
		return typesystem.Array(), nil
	}

	headers := columnNames(records)
	rows := records[1:]
	kinds := make([]columnKind, len(headers))
	for i := range headers {
		kinds[i] = detectColumnKind(i, rows)
	}

	out := make([]typesystem.Value, 0, len(rows))
	for _, row := range rows {
		obj := typesystem.NewObject()
		for i, name := range headers {
			obj.Set(name, csvCell(row, i, kinds[i]))
		}
		out = append(out, obj)
	}
	return typesystem.Array(out...), nil
}

// columnNames returns the header names, padded with col_<n> for rows that
// are wider than the header. Blank and repeated names are replaced the same
// way, with a _<n> suffix when col_<n> is already taken.
func columnNames(records [][]string) []string {
	width := 0
	for _, r := range records {
		width = max(width, len(r))
	}
	names := make([]string, width)
	seen := make(map[string]bool, width)
	for i := range names {
		name := ""
		if i < len(records[0]) {
			name = strings.TrimSpace(records[0][i])
		}
		if name == "" || seen[name] {
			base := fmt.Sprintf("col_%d", i)
			name = base
			for n := 2; seen[name]; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func detectColumnKind(col int, rows [][]string) columnKind {
	allNumber, allBool, nonEmpty := true, true, false
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		nonEmpty = true
		if allNumber {
			if _, ok := parseNumber(v); !ok {
				allNumber = false
			}
		}
		if allBool {
			if _, ok := parseBool(v); !ok {
				allBool = false
			}
		}
		if !allNumber && !allBool {
			return columnString
		}
	}
	switch {
	case !nonEmpty:
		return columnString
	case allNumber:
		return columnNumber
	case allBool:
		return columnBool
	default:
		return columnString
	}
}

func csvCell(row []string, col int, kind columnKind) typesystem.Value {
	if col >= len(row) {
		return typesystem.Null()
	}
	v := strings.TrimSpace(row[col])
	if v == "" {
		return typesystem.Null()
	}
	switch kind {
	case columnNumber:
		f, _ := parseNumber(v)
		return typesystem.Number(f)
	case columnBool:
		b, _ := parseBool(v)
		return typesystem.Bool(b)
	default:
		return typesystem.String(row[col])
	}
}

// parseNumber accepts finite decimal numbers only, so "NaN" and "Inf"
// cells keep the column a string column.
func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
