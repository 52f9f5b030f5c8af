package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/usestring/json2gql/pkg/typesystem"
)

const (
	sqliteTablesQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	pgTablesQuery     = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name`
)

// fetchSQL builds one document per table from the table's first row.
func (f *Fetcher) fetchSQL(ctx context.Context, spec Spec) ([]Document, error) {
	driver, listQuery := "pgx", pgTablesQuery
	if spec.Kind == KindSQLite {
		driver, listQuery = "sqlite", sqliteTablesQuery
		// sqlite creates missing files on open
		if _, err := os.Stat(spec.Location); err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
	}

	db, err := f.openDB(driver, spec.Location)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	tables := f.tables
	if len(tables) == 0 {
		tables, err = listTables(ctx, db, listQuery)
		if err != nil {
			return nil, err
		}
	}

	docs := make([]Document, 0, len(tables))
	for _, table := range tables {
		v, err := firstRow(ctx, db, table)
		if err != nil {
			return nil, err
		}
		slog.Debug("read first row", slog.String("source", spec.Kind.String()), slog.String("table", table))
		docs = append(docs, Document{
			ID:     sanitizeID(table),
			Source: spec.Raw + "#" + table,
			Value:  &v,
		})
	}
	return docs, nil
}

func listTables(ctx context.Context, db *sql.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return tables, nil
}

// firstRow reads one row of table as an object in column order. An empty
// table yields an object whose columns are all null.
func firstRow(ctx context.Context, db *sql.DB, table string) (typesystem.Value, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+" LIMIT 1")
	if err != nil {
		return typesystem.Value{}, fmt.Errorf("reading table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return typesystem.Value{}, fmt.Errorf("reading table %s: %w", table, err)
	}

	cells := make([]any, len(cols))
	if rows.Next() {
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return typesystem.Value{}, fmt.Errorf("reading table %s: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return typesystem.Value{}, fmt.Errorf("reading table %s: %w", table, err)
	}

	members := make([]typesystem.Member, len(cols))
	for i, col := range cols {
		members[i] = typesystem.Member{Key: col, Value: cellValue(cells[i])}
	}
	return typesystem.NewObject(members...), nil
}

func cellValue(x any) typesystem.Value {
	switch c := x.(type) {
	case nil:
		return typesystem.Null()
	case []byte:
		return typesystem.String(string(c))
	case time.Time:
		return typesystem.Time(c)
	}
	v, err := typesystem.FromAny(x)
	if err != nil {
		return typesystem.String(fmt.Sprint(x))
	}
	return v
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
