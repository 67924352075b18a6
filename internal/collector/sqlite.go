package collector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/toolcrib/vbwear/internal/logging"
)

// SQLiteSource reads all columns of one table of a SQLite database.
type SQLiteSource struct {
	path  string
	table string
}

// NewSQLiteSource creates a source for table in the database at path.
func NewSQLiteSource(path, table string) (*SQLiteSource, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite source needs a database path")
	}
	if table == "" {
		return nil, fmt.Errorf("sqlite source %s needs a table name (?table=...)", path)
	}
	if strings.ContainsAny(table, "\"\x00") {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQLiteSource{path: path, table: table}, nil
}

// Name returns the database location.
func (s *SQLiteSource) Name() string {
	return sqliteScheme + s.path + "?table=" + s.table
}

// Load reads the table.
func (s *SQLiteSource) Load(ctx context.Context) (*Table, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", s.path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, s.table))
	if err != nil {
		return nil, fmt.Errorf("querying table %q: %w", s.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var data [][]string
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning table %q: %w", s.table, err)
		}
		rec := make([]string, len(columns))
		for i, v := range values {
			rec[i] = cellString(v)
		}
		data = append(data, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	t, err := NewTable(s.Name(), columns, data)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Loaded SQLite dataset", "path", s.path, "table", s.table, "rows", t.Len())
	return t, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
