/*
Copyright 2025 The vbwear Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package collector

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is returned when a requested column is not in the header.
var ErrMissingColumn = errors.New("column not found")

// Table is a loaded dataset: a header and rows of raw cell values.
type Table struct {
	// Name identifies where the table came from.
	Name    string
	Columns []string
	Rows    [][]string
}

// NewTable builds a table, padding short rows. Duplicate or empty header names
// and over-long rows are rejected.
func NewTable(name string, columns []string, rows [][]string) (*Table, error) {
	seen := make(map[string]bool, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("%s: header column %d is empty", name, i+1)
		}
		if seen[c] {
			return nil, fmt.Errorf("%s: duplicate header column %q", name, c)
		}
		seen[c] = true
	}
	for i, r := range rows {
		if len(r) > len(columns) {
			return nil, fmt.Errorf("%s: row %d has %d cells, header has %d", name, i+1, len(r), len(columns))
		}
		for len(r) < len(columns) {
			r = append(r, "")
		}
		rows[i] = r
	}
	return &Table{Name: name, Columns: columns, Rows: rows}, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column in the header.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns a copy of all values of a column.
func (t *Table) Column(name string) ([]string, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrMissingColumn, name, t.Name)
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}
