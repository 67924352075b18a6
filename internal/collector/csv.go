package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/toolcrib/vbwear/internal/logging"
)

// CSVSource reads a comma-separated file with a header row.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Name returns the file path.
func (s *CSVSource) Name() string {
	return s.path
}

// Load reads the file.
func (s *CSVSource) Load(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(s.path, f)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Loaded CSV dataset", "path", s.path, "rows", t.Len(), "columns", len(t.Columns))
	return t, nil
}

// ReadCSV parses CSV data from r.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: dataset is empty", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		rows = append(rows, rec)
	}
	return NewTable(name, header, rows)
}
