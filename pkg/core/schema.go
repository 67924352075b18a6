package core

import (
	"fmt"
	"slices"
)

// FeatureSchemaVersion is bumped whenever the feature layout rules change.
const FeatureSchemaVersion = 1

// FeatureSchema is the column layout of a feature matrix. It is produced by the
// feature builder, carried inside every model artifact and compared on load and
// before every prediction.
type FeatureSchema struct {
	Version          int      `json:"version" yaml:"version"`
	Target           string   `json:"target" yaml:"target"`
	NumericFields    []string `json:"numericFields" yaml:"numericFields"`
	CategoricalField string   `json:"categoricalField" yaml:"categoricalField"`
	Categories       []string `json:"categories" yaml:"categories"`
	// Columns is the ordered feature layout: NumericFields, then one indicator per category.
	Columns []string `json:"columns" yaml:"columns"`
}

// IndicatorColumn names the indicator column of one category.
func IndicatorColumn(prefix, category string) string {
	return prefix + "_" + category
}

// Width is the number of feature columns.
func (s FeatureSchema) Width() int {
	return len(s.Columns)
}

// Validate checks that the schema is of a supported version and that Columns is
// consistent with the numeric fields and categories.
func (s FeatureSchema) Validate() error {
	if s.Version != FeatureSchemaVersion {
		return fmt.Errorf("unsupported feature schema version %d (want %d)", s.Version, FeatureSchemaVersion)
	}
	if want := len(s.NumericFields) + len(s.Categories); len(s.Columns) != want {
		return fmt.Errorf("feature schema has %d columns, want %d", len(s.Columns), want)
	}
	if !slices.Equal(s.Columns[:len(s.NumericFields)], s.NumericFields) {
		return fmt.Errorf("feature schema columns %v do not start with numeric fields %v", s.Columns, s.NumericFields)
	}
	return nil
}

// Diff describes the first difference between s and other, or returns "" when
// both describe the same layout.
func (s FeatureSchema) Diff(other FeatureSchema) string {
	switch {
	case s.Version != other.Version:
		return fmt.Sprintf("version %d != %d", s.Version, other.Version)
	case s.Target != other.Target:
		return fmt.Sprintf("target %q != %q", s.Target, other.Target)
	case s.CategoricalField != other.CategoricalField:
		return fmt.Sprintf("categorical field %q != %q", s.CategoricalField, other.CategoricalField)
	case !slices.Equal(s.Categories, other.Categories):
		return fmt.Sprintf("categories %v != %v", s.Categories, other.Categories)
	case len(s.Columns) != len(other.Columns):
		return fmt.Sprintf("%d columns != %d columns", len(s.Columns), len(other.Columns))
	}
	for i := range s.Columns {
		if s.Columns[i] != other.Columns[i] {
			return fmt.Sprintf("column %d is %q, want %q", i, other.Columns[i], s.Columns[i])
		}
	}
	return ""
}

// Equal reports whether both schemas describe the same layout.
func (s FeatureSchema) Equal(other FeatureSchema) bool {
	return s.Diff(other) == ""
}
