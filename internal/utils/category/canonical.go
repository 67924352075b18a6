package category

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// IsMissing reports whether a raw cell value is one of the missing tokens.
func IsMissing(raw string) bool {
	return slices.Contains(MissingTokens, strings.TrimSpace(raw))
}

// Canonical returns the canonical form of a raw categorical value. Numeric
// values are normalised so that "1", "1.0" and " 1 " compare equal; other
// values are trimmed. The second result is false for missing values.
func Canonical(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if IsMissing(v) {
		return "", false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) {
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10), true
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}
	return v, true
}

// Normalize canonicalises the configured categories and rejects lists whose
// entries collide.
func (e Encoding) Normalize() (Encoding, error) {
	if len(e.Categories) == 0 {
		return e, errNoCategories
	}
	out := e
	out.Categories = make([]string, len(e.Categories))
	for i, c := range e.Categories {
		canon, ok := Canonical(c)
		if !ok {
			return e, fmt.Errorf("category %q of field %q is a missing-value token", c, e.Field)
		}
		if slices.Contains(out.Categories[:i], canon) {
			return e, fmt.Errorf("%w: %q in field %q", errDuplicateValue, c, e.Field)
		}
		out.Categories[i] = canon
	}
	return out, nil
}

// Match returns the index of raw in the categories of e, or Unknown. Missing
// values are Unknown. e is expected to be normalised.
func Match(raw string, e Encoding) int {
	canon, ok := Canonical(raw)
	if !ok {
		return Unknown
	}
	return matchValue(canon, e)
}

func matchValue(canon string, e Encoding) int {
	for i, c := range e.Categories {
		if canon == c {
			return i
		}
	}
	return Unknown
}

// Columns names the indicator columns of e.
func (e Encoding) Columns() []string {
	cols := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		cols[i] = e.Prefix + "_" + c
	}
	return cols
}
