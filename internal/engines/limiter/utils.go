package limiter

import (
	"fmt"

	"github.com/toolcrib/vbwear/pkg/core"
)

func derefConfig(config *LimiterConfig) LimiterConfig {
	if config == nil {
		return LimiterConfig{}
	}
	return *config
}

// firstError returns the error of the lowest-indexed failed member, so that the
// reported failure does not depend on scheduling.
func firstError(members []core.Individual, errs []error) error {
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("evaluating member %d (%s): %w", i, members[i], err)
		}
	}
	return nil
}
