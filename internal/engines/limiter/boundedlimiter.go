package limiter

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"

	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/pkg/core"
	"github.com/toolcrib/vbwear/pkg/evaluator"
)

// BoundedLimiterConfig holds configuration for the BoundedLimiter
type BoundedLimiterConfig struct {
	LimiterConfig
}

// BoundedLimiter evaluates members on a goroutine pool of fixed size.
type BoundedLimiter struct {
	config *BoundedLimiterConfig
}

// NewBoundedLimiter creates a new BoundedLimiter instance. A MaxConcurrency of 0
// uses one goroutine per CPU.
func NewBoundedLimiter(config *BoundedLimiterConfig) (*BoundedLimiter, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.MaxConcurrency < 0 {
		return nil, fmt.Errorf("max concurrency must be >= 0, got %d", config.MaxConcurrency)
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = runtime.NumCPU()
	}
	return &BoundedLimiter{
		config: config,
	}, nil
}

// MaxConcurrency returns the pool size.
func (l *BoundedLimiter) MaxConcurrency() int {
	return l.config.MaxConcurrency
}

// Evaluate scores all members concurrently. Every evaluation runs to completion
// before the first failure, by member index, is returned.
func (l *BoundedLimiter) Evaluate(
	ctx context.Context,
	ev evaluator.Evaluator,
	members []core.Individual,
	X mat.Matrix,
	y []float64,
) ([]evaluator.Result, error) {
	logger := logging.FromContext(ctx)

	results := make([]evaluator.Result, len(members))
	errs := make([]error, len(members))

	p := pool.New().WithMaxGoroutines(l.config.MaxConcurrency)
	for i, m := range members {
		p.Go(func() {
			results[i], errs[i] = ev.Fitness(ctx, m, X, y)
		})
	}
	p.Wait()

	if err := firstError(members, errs); err != nil {
		return nil, err
	}
	logger.V(logging.TRACE).Info("Generation evaluated", "members", len(members), "maxConcurrency", l.config.MaxConcurrency)
	return results, nil
}
