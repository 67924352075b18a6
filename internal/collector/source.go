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
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const sqliteScheme = "sqlite://"

// DetectType infers the source type of a dataset location.
func DetectType(location string) (SourceType, error) {
	if strings.HasPrefix(location, sqliteScheme) {
		return SourceTypeSQLite, nil
	}
	path, _, _ := strings.Cut(location, "#")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return SourceTypeCSV, nil
	case ".xlsx":
		return SourceTypeXLSX, nil
	default:
		return "", fmt.Errorf("unsupported dataset %q: want .csv, .xlsx or %s<path>?table=<name>", location, sqliteScheme)
	}
}

// NewSource is a factory that creates the Source for a dataset location.
func NewSource(location string) (Source, error) {
	kind, err := DetectType(location)
	if err != nil {
		return nil, err
	}
	switch kind {
	case SourceTypeCSV:
		return NewCSVSource(location), nil
	case SourceTypeXLSX:
		path, sheet, _ := strings.Cut(location, "#")
		return NewXLSXSource(path, sheet), nil
	case SourceTypeSQLite:
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", location, err)
		}
		path := u.Host + u.Path
		table := u.Query().Get("table")
		return NewSQLiteSource(path, table)
	default:
		return nil, fmt.Errorf("unsupported source type: %v", kind)
	}
}
