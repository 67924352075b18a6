package limiter

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/toolcrib/vbwear/pkg/core"
	"github.com/toolcrib/vbwear/pkg/evaluator"
)

// SerialLimiter evaluates members one at a time, in order.
type SerialLimiter struct{}

// NewSerialLimiter creates a SerialLimiter.
func NewSerialLimiter() *SerialLimiter {
	return &SerialLimiter{}
}

// Evaluate scores members in order and stops at the first failure.
func (l *SerialLimiter) Evaluate(
	ctx context.Context,
	ev evaluator.Evaluator,
	members []core.Individual,
	X mat.Matrix,
	y []float64,
) ([]evaluator.Result, error) {
	results := make([]evaluator.Result, len(members))
	errs := make([]error, len(members))
	for i, m := range members {
		results[i], errs[i] = ev.Fitness(ctx, m, X, y)
		if errs[i] != nil {
			break
		}
	}
	if err := firstError(members, errs); err != nil {
		return nil, err
	}
	return results, nil
}
