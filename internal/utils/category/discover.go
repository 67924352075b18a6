package category

import (
	"context"
	"sort"

	"github.com/toolcrib/vbwear/internal/logging"
)

// Discover counts the canonical values of a column against e. Unconfigured
// values are logged; they are never an error.
func Discover(ctx context.Context, values []string, e Encoding) DiscoveryResult {
	logger := logging.FromContext(ctx)

	known := make([]int, len(e.Categories))
	unknown := map[string]int{}
	var result DiscoveryResult
	for _, raw := range values {
		canon, ok := Canonical(raw)
		if !ok {
			result.Missing++
			continue
		}
		if i := matchValue(canon, e); i != Unknown {
			known[i]++
		} else {
			unknown[canon]++
		}
	}

	result.Known = make([]ValueCount, len(e.Categories))
	for i, c := range e.Categories {
		result.Known[i] = ValueCount{Value: c, Count: known[i]}
	}
	for v, n := range unknown {
		result.Unknown = append(result.Unknown, ValueCount{Value: v, Count: n})
	}
	sort.Slice(result.Unknown, func(a, b int) bool {
		return result.Unknown[a].Value < result.Unknown[b].Value
	})

	if result.HasUnknown() {
		logger.V(logging.DEBUG).Info("Unconfigured category values encode as all zeros",
			"field", e.Field,
			"unknown", result.Unknown,
			"categories", e.Categories)
	}
	return result
}
