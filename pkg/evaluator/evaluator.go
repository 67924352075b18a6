package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/pkg/config"
	"github.com/toolcrib/vbwear/pkg/core"
	"github.com/toolcrib/vbwear/pkg/mlp"
)

// ErrOptimizationAbort marks evaluation failures that end the whole search.
var ErrOptimizationAbort = errors.New("optimization aborted")

// ConvergenceWarning records a fit that stopped at its epoch cap.
type ConvergenceWarning struct {
	Individual core.Individual
	// Fold is the held-out fold, or -1 for a fit on all rows.
	Fold       int
	Iterations int
}

func (w ConvergenceWarning) String() string {
	return fmt.Sprintf("%s did not converge in %d iterations (fold %d)", w.Individual, w.Iterations, w.Fold)
}

// Result is the outcome of one fitness evaluation.
type Result struct {
	// Fitness is the mean held-out MSE; always >= 0.
	Fitness  float64
	FoldMSE  []float64
	Warnings []ConvergenceWarning
	// Cached is set when the result was served from a cache.
	Cached bool
}

// Evaluator computes the fitness of an individual on (X, y).
type Evaluator interface {
	Fitness(ctx context.Context, ind core.Individual, X mat.Matrix, y []float64) (Result, error)
}

// Cache memoises results by Individual.Key within one search.
type Cache interface {
	Get(key string) (Result, bool)
	Put(key string, r Result)
}

// Options configures a ModelEvaluator.
type Options struct {
	Folds        int
	MaxIter      int
	FinalMaxIter int
	ModelSeed    uint64
	Bounds       core.Bounds
}

// NewOptions derives evaluator options from a run configuration.
func NewOptions(cfg *config.Config) *Options {
	return &Options{
		Folds:        cfg.Search.Folds,
		MaxIter:      cfg.Search.SearchMaxIter,
		FinalMaxIter: cfg.Search.FinalMaxIter,
		ModelSeed:    cfg.ModelSeed,
		Bounds:       cfg.Search.Bounds,
	}
}

// ModelEvaluator is the cross-validated Evaluator of mlp pipelines.
type ModelEvaluator struct {
	opts  Options
	cache Cache
}

// NewModelEvaluator creates an evaluator. Zero-valued options take the package
// defaults.
func NewModelEvaluator(opts *Options) (*ModelEvaluator, error) {
	if opts == nil {
		return nil, fmt.Errorf("evaluator options cannot be nil")
	}
	o := *opts
	if o.Folds == 0 {
		o.Folds = config.DefaultFolds
	}
	if o.MaxIter == 0 {
		o.MaxIter = config.DefaultSearchMaxIter
	}
	if o.FinalMaxIter == 0 {
		o.FinalMaxIter = config.DefaultFinalMaxIter
	}
	if o.Bounds == (core.Bounds{}) {
		o.Bounds = core.DefaultBounds()
	}
	if err := o.Bounds.Validate(); err != nil {
		return nil, err
	}
	if o.MaxIter < 1 || o.FinalMaxIter < 1 {
		return nil, fmt.Errorf("iteration caps must be >= 1")
	}
	return &ModelEvaluator{opts: o}, nil
}

// WithCache enables memoisation through c.
func (e *ModelEvaluator) WithCache(c Cache) *ModelEvaluator {
	e.cache = c
	return e
}

// Options returns the effective options.
func (e *ModelEvaluator) Options() Options {
	return e.opts
}

func (e *ModelEvaluator) params(maxIter int) mlp.Params {
	p := mlp.DefaultParams()
	p.MaxIter = maxIter
	p.Seed = e.opts.ModelSeed
	return p
}

// Fitness returns the mean k-fold MSE of ind on (X, y).
func (e *ModelEvaluator) Fitness(ctx context.Context, ind core.Individual, X mat.Matrix, y []float64) (Result, error) {
	logger := logging.FromContext(ctx)

	if err := ind.Validate(e.opts.Bounds); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrOptimizationAbort, err)
	}
	key := ind.Key()
	if e.cache != nil {
		if r, ok := e.cache.Get(key); ok {
			r.Cached = true
			r.Warnings = nil
			return r, nil
		}
	}

	n, _ := X.Dims()
	folds, err := KFold(n, e.opts.Folds)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrOptimizationAbort, err)
	}

	res := Result{FoldMSE: make([]float64, len(folds))}
	for i, f := range folds {
		pl, err := mlp.NewPipeline(ind, e.params(e.opts.MaxIter))
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrOptimizationAbort, err)
		}
		info, err := pl.Fit(Rows(X, f.Train), Values(y, f.Train))
		if err != nil {
			return Result{}, fmt.Errorf("%w: fitting %s on fold %d: %v", ErrOptimizationAbort, ind, i, err)
		}
		if !info.Converged {
			w := ConvergenceWarning{Individual: ind, Fold: i, Iterations: info.Iterations}
			res.Warnings = append(res.Warnings, w)
			logger.V(logging.TRACE).Info("Convergence warning", "individual", ind.String(), "fold", i, "iterations", info.Iterations)
		}
		pred, err := pl.Predict(Rows(X, f.Test))
		if err != nil {
			return Result{}, fmt.Errorf("%w: predicting fold %d: %v", ErrOptimizationAbort, i, err)
		}
		res.FoldMSE[i] = MSE(pred, Values(y, f.Test))
	}
	res.Fitness = stat.Mean(res.FoldMSE, nil)
	if math.IsNaN(res.Fitness) || math.IsInf(res.Fitness, 0) || res.Fitness < 0 {
		return Result{}, fmt.Errorf("%w: non-finite fitness %v for %s", ErrOptimizationAbort, res.Fitness, ind)
	}

	if e.cache != nil {
		e.cache.Put(key, res)
	}
	logger.V(logging.TRACE).Info("Evaluated individual", "individual", ind.String(), "fitness", res.Fitness, "warnings", len(res.Warnings))
	return res, nil
}

// FitFinal trains ind on all of (X, y) with the final epoch cap.
func (e *ModelEvaluator) FitFinal(ctx context.Context, ind core.Individual, X mat.Matrix, y []float64) (*mlp.Pipeline, []ConvergenceWarning, error) {
	if err := ind.Validate(e.opts.Bounds); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrOptimizationAbort, err)
	}
	pl, err := mlp.NewPipeline(ind, e.params(e.opts.FinalMaxIter))
	if err != nil {
		return nil, nil, err
	}
	info, err := pl.Fit(X, y)
	if err != nil {
		return nil, nil, fmt.Errorf("final fit of %s: %w", ind, err)
	}
	var warnings []ConvergenceWarning
	if !info.Converged {
		warnings = append(warnings, ConvergenceWarning{Individual: ind, Fold: -1, Iterations: info.Iterations})
		logging.FromContext(ctx).V(logging.DEBUG).Info("Final fit did not converge", "individual", ind.String(), "iterations", info.Iterations)
	}
	return pl, warnings, nil
}

// MSE is the mean squared difference of pred and y.
func MSE(pred, y []float64) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	d := floats.Distance(pred, y, 2)
	return d * d / float64(len(y))
}

// Rows copies the given rows of X into a new matrix.
func Rows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	row := make([]float64, c)
	for i, r := range idx {
		mat.Row(row, r, X)
		out.SetRow(i, row)
	}
	return out
}

// Values selects y[idx...].
func Values(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}
