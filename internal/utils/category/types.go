// Package category canonicalises categorical cell values and matches them
// against a configured category list. Discovery summarises which values a
// dataset actually contains, so that unseen categories can be reported before
// they silently encode as all-zero indicators.
package category

import "errors"

var (
	errNoCategories   = errors.New("encoding has no categories")
	errDuplicateValue = errors.New("categories collide after canonicalisation")
)

// Unknown is the index returned for values outside the category list.
const Unknown = -1

// MissingTokens are the cell values read as missing, compared exactly after
// trimming surrounding space.
var MissingTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A", "-nan"}

// Encoding describes how one categorical column becomes indicator columns.
type Encoding struct {
	// Field is the source column name.
	Field string
	// Categories get one indicator each, in this order.
	Categories []string
	// Prefix names the indicators <Prefix>_<category>.
	Prefix string
}

// ValueCount is one observed canonical value and the number of rows holding it.
type ValueCount struct {
	Value string
	Count int
}

// DiscoveryResult summarises the values of a categorical column.
type DiscoveryResult struct {
	// Known lists configured categories with their row counts, in category order.
	Known []ValueCount
	// Unknown lists observed values outside the categories, sorted by value.
	Unknown []ValueCount
	// Missing counts rows with a missing value.
	Missing int
}

// HasUnknown reports whether any row holds an unconfigured category.
func (r DiscoveryResult) HasUnknown() bool {
	return len(r.Unknown) > 0
}
