package collector

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/toolcrib/vbwear/internal/logging"
)

// XLSXSource reads one sheet of an Excel workbook.
type XLSXSource struct {
	path  string
	sheet string
}

// NewXLSXSource creates a source for a sheet of path; an empty sheet selects
// the first one.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet}
}

// Name returns the workbook path and sheet.
func (s *XLSXSource) Name() string {
	if s.sheet == "" {
		return s.path
	}
	return s.path + "#" + s.sheet
}

// Load reads the sheet. The first non-empty row is the header.
func (s *XLSXSource) Load(ctx context.Context) (*Table, error) {
	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", s.path)
	}
	sheet := s.sheet
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%s: no sheet %q (have %v)", s.path, sheet, sheets)
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: reading sheet %q: %w", s.path, sheet, err)
	}
	for len(rows) > 0 && len(rows[0]) == 0 {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: sheet %q is empty", s.path, sheet)
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	var data [][]string
	for _, r := range rows[1:] {
		if len(r) == 0 {
			continue
		}
		data = append(data, r)
	}
	t, err := NewTable(s.Name(), header, data)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Loaded XLSX dataset", "path", s.path, "sheet", sheet, "rows", t.Len())
	return t, nil
}
