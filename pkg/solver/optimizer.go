package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/toolcrib/vbwear/internal/engines/limiter"
	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/pkg/config"
	"github.com/toolcrib/vbwear/pkg/core"
	"github.com/toolcrib/vbwear/pkg/evaluator"
)

// Observer is notified after every evaluated generation, on the optimizer
// goroutine.
type Observer interface {
	OnGeneration(ctx context.Context, stats core.GenerationStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, stats core.GenerationStats)

// OnGeneration calls f.
func (f ObserverFunc) OnGeneration(ctx context.Context, stats core.GenerationStats) {
	f(ctx, stats)
}

// OptimizerConfig holds configuration for the GeneticOptimizer
type OptimizerConfig struct {
	Search config.SearchSpec
	// Seed drives initialisation, selection of parents, crossover and mutation.
	Seed      uint64
	Evaluator evaluator.Evaluator
	// Limiter defaults to one sized by Search.Workers.
	Limiter limiter.Limiter
}

// Result is the outcome of a search.
type Result struct {
	Best        core.Individual
	BestFitness float64
	// History holds the best fitness of every evaluated generation.
	History     core.History
	Generations []core.GenerationStats
	// FinalFitness is the fitness of every member of the final population.
	FinalFitness []float64
	Evaluations  int
	CacheHits    int
	Warnings     int
	StoppedEarly bool
}

// GeneticOptimizer searches hyperparameters with a generational GA.
type GeneticOptimizer struct {
	config    *OptimizerConfig
	limiter   limiter.Limiter
	observers []Observer
}

// NewGeneticOptimizer validates config and creates an optimizer.
func NewGeneticOptimizer(config *OptimizerConfig) (*GeneticOptimizer, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}
	if err := config.Search.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search spec: %w", err)
	}
	l := config.Limiter
	if l == nil {
		var err error
		if l, err = limiter.ForWorkers(config.Search.EffectiveWorkers()); err != nil {
			return nil, err
		}
	}
	return &GeneticOptimizer{config: config, limiter: l}, nil
}

// AddObserver registers obs for generation notifications.
func (o *GeneticOptimizer) AddObserver(obs Observer) {
	o.observers = append(o.observers, obs)
}

// Optimize runs the search on (X, y) and returns the best individual of the
// final population.
func (o *GeneticOptimizer) Optimize(ctx context.Context, X mat.Matrix, y []float64) (*Result, error) {
	logger := logging.FromContext(ctx)
	spec := o.config.Search
	rng := core.NewRand(o.config.Seed, core.StreamSearch)

	pop, err := core.NewPopulation(spec.PopulationSize, spec.Bounds, rng)
	if err != nil {
		return nil, err
	}
	logger.Info("Starting genetic search",
		"populationSize", spec.PopulationSize,
		"generations", spec.Generations,
		"mutationRate", spec.MutationRate)

	res := &Result{}
	for gen := 0; gen < spec.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search cancelled before generation %d: %w", gen, err)
		}
		start := time.Now()
		fitness, results, err := o.evaluate(ctx, pop, X, y)
		if err != nil {
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}
		stats := o.record(res, pop, fitness, results)
		stats.Elapsed = time.Since(start)
		res.Generations = append(res.Generations, stats)
		res.History.Append(stats.Best)

		logger.V(logging.DEBUG).Info("Generation completed",
			"generation", gen,
			"best", stats.Best,
			"mean", stats.Mean,
			"bestIndividual", stats.BestIndividual.String())
		for _, obs := range o.observers {
			obs.OnGeneration(ctx, stats)
		}

		if o.shouldStop(res.History) {
			res.StoppedEarly = true
			logger.Info("Stopping search early", "generation", gen, "best", stats.Best)
			break
		}

		survivors, err := Select(pop.Members, fitness)
		if err != nil {
			return nil, err
		}
		next, err := Recombine(survivors, spec.PopulationSize, spec.MutationRate, spec.Bounds, rng)
		if err != nil {
			return nil, err
		}
		pop = pop.Next(next)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search cancelled before finalize: %w", err)
	}
	if err := o.finalize(ctx, pop, X, y, res); err != nil {
		return nil, err
	}
	logger.Info("Genetic search finished",
		"best", res.Best.String(),
		"fitness", res.BestFitness,
		"evaluations", res.Evaluations,
		"convergenceWarnings", res.Warnings)
	return res, nil
}

// finalize re-evaluates the final population and picks its minimum, the
// lowest index winning ties.
func (o *GeneticOptimizer) finalize(ctx context.Context, pop *core.Population, X mat.Matrix, y []float64, res *Result) error {
	fitness, results, err := o.evaluate(ctx, pop, X, y)
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	o.record(res, pop, fitness, results)
	best := 0
	for i, f := range fitness {
		if f < fitness[best] {
			best = i
		}
	}
	res.Best = pop.Members[best]
	res.BestFitness = fitness[best]
	res.FinalFitness = fitness
	return nil
}

func (o *GeneticOptimizer) evaluate(ctx context.Context, pop *core.Population, X mat.Matrix, y []float64) ([]float64, []evaluator.Result, error) {
	results, err := o.limiter.Evaluate(ctx, o.config.Evaluator, pop.Members, X, y)
	if err != nil {
		if errors.Is(err, evaluator.ErrOptimizationAbort) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %w", evaluator.ErrOptimizationAbort, err)
	}
	fitness := make([]float64, len(results))
	for i, r := range results {
		fitness[i] = r.Fitness
	}
	return fitness, results, nil
}

// record adds the counters of one evaluated population to res and returns its
// statistics.
func (o *GeneticOptimizer) record(res *Result, pop *core.Population, fitness []float64, results []evaluator.Result) core.GenerationStats {
	stats := core.GenerationStats{
		Generation: pop.Generation,
		Mean:       stat.Mean(fitness, nil),
		Worst:      floats.Max(fitness),
	}
	best := floats.MinIdx(fitness)
	stats.Best = fitness[best]
	stats.BestIndividual = pop.Members[best]
	for _, r := range results {
		if r.Cached {
			stats.CacheHits++
		} else {
			stats.Evaluations++
		}
		stats.Warnings += len(r.Warnings)
	}
	res.Evaluations += stats.Evaluations
	res.CacheHits += stats.CacheHits
	res.Warnings += stats.Warnings
	return stats
}

// shouldStop reports whether the best fitness has not improved by more than
// MinDelta during the last Patience generations.
func (o *GeneticOptimizer) shouldStop(h core.History) bool {
	es := o.config.Search.EarlyStop
	if es == nil || len(h) <= es.Patience {
		return false
	}
	ref := h[len(h)-1-es.Patience]
	last, _ := h.Last()
	return ref-last <= es.MinDelta
}
