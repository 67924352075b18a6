package limiter

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/toolcrib/vbwear/pkg/core"
	"github.com/toolcrib/vbwear/pkg/evaluator"
)

// Limiter runs the fitness evaluations of one generation. Results are written
// into a buffer indexed like members, so the outcome never depends on the order
// in which evaluations finish.
type Limiter interface {
	// Evaluate scores every member and returns once all evaluations are done.
	Evaluate(
		ctx context.Context,
		ev evaluator.Evaluator,
		members []core.Individual,
		X mat.Matrix,
		y []float64,
	) ([]evaluator.Result, error)
}

// LimiterStrategy is an enumeration of the different strategies that can be used by the Limiter
type LimiterStrategy int

// enumeration of LimiterStrategy
const (
	SerialStrategy LimiterStrategy = iota
	BoundedStrategy
)

// LimiterConfig holds settings shared by all strategies.
type LimiterConfig struct {
	// MaxConcurrency bounds the number of evaluations in flight.
	MaxConcurrency int
}

// NewLimiter is a factory that creates a new Limiter based on the provided strategy
func NewLimiter(strategy LimiterStrategy, config *LimiterConfig) (Limiter, error) {
	switch strategy {
	case SerialStrategy:
		return NewSerialLimiter(), nil
	case BoundedStrategy:
		return NewBoundedLimiter(&BoundedLimiterConfig{LimiterConfig: derefConfig(config)})
	default:
		return nil, fmt.Errorf("unsupported limiter strategy: %v", strategy)
	}
}

// ForWorkers picks the serial strategy for one worker and a bounded pool otherwise.
func ForWorkers(workers int) (Limiter, error) {
	if workers <= 1 {
		return NewLimiter(SerialStrategy, nil)
	}
	return NewLimiter(BoundedStrategy, &LimiterConfig{MaxConcurrency: workers})
}
