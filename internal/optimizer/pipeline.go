package optimizer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/toolcrib/vbwear/api/v1alpha1"
	"github.com/toolcrib/vbwear/internal/collector"
	"github.com/toolcrib/vbwear/internal/engines/common"
	"github.com/toolcrib/vbwear/internal/features"
	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/internal/metricscache"
	"github.com/toolcrib/vbwear/pkg/config"
	"github.com/toolcrib/vbwear/pkg/core"
	"github.com/toolcrib/vbwear/pkg/evaluator"
	"github.com/toolcrib/vbwear/pkg/mlp"
	"github.com/toolcrib/vbwear/pkg/solver"
)

// ProgressFunc receives the completion percentage of a pipeline stage.
type ProgressFunc func(stage string, percent int)

// Prediction progress milestones.
const (
	ProgressStarted       = 5
	ProgressModelReady    = 20
	ProgressFeaturesBuilt = 50
	ProgressPredicted     = 90
	ProgressDone          = 100
)

// TrainResult is the outcome of a successful training run.
type TrainResult struct {
	// Model is the final pipeline; its schema is set.
	Model       *mlp.Pipeline
	Best        core.Individual
	BestFitness float64
	History     core.History
	Generations []core.GenerationStats
	Metrics     v1alpha1.Metrics
	Split       v1alpha1.SplitInfo
	Search      *solver.Result
	Run         *v1alpha1.TrainingRun
}

// RunError carries the failed run record of a training error.
type RunError struct {
	Run *v1alpha1.TrainingRun
	Err error
}

func (e *RunError) Error() string { return e.Err.Error() }

func (e *RunError) Unwrap() error { return e.Err }

// ValidationResult scores a model on the test rows of the seeded split.
type ValidationResult struct {
	Metrics v1alpha1.Metrics
	// Rows are the 0-based source rows of the test split, ascending; Actual,
	// Predicted and Residuals follow the same order.
	Rows      []int
	Actual    []float64
	Predicted []float64
	Residuals []float64
}

// Prediction holds per-row predictions for a dataset.
type Prediction struct {
	Values []float64
	// Max is the largest predicted wear, at row MaxRow.
	Max    float64
	MaxRow int
}

// TrainingPipeline runs training, validation and prediction for one configuration.
type TrainingPipeline struct {
	config    config.Config
	observers []solver.Observer
	progress  ProgressFunc
	newID     func() string
}

// NewTrainingPipeline validates cfg and creates a pipeline.
func NewTrainingPipeline(cfg *config.Config) (*TrainingPipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &TrainingPipeline{
		config:   *cfg,
		progress: func(string, int) {},
		newID:    uuid.NewString,
	}, nil
}

// AddObserver forwards every search generation to obs.
func (p *TrainingPipeline) AddObserver(obs solver.Observer) {
	p.observers = append(p.observers, obs)
}

// SetRunID fixes the ID of the runs Train records. By default every run gets a
// fresh random UUID.
func (p *TrainingPipeline) SetRunID(id string) {
	if id == "" {
		p.newID = uuid.NewString
		return
	}
	p.newID = func() string { return id }
}

// SetProgress installs the progress callback used by Train and Predict.
func (p *TrainingPipeline) SetProgress(fn ProgressFunc) {
	if fn == nil {
		fn = func(string, int) {}
	}
	p.progress = fn
}

// Train loads the dataset, searches hyperparameters on the training split,
// fits the winner on the whole training split and scores it on the test split.
func (p *TrainingPipeline) Train(ctx context.Context, src collector.Source) (*TrainResult, error) {
	logger := logging.FromContext(ctx)
	cfg := p.config

	run := v1alpha1.NewTrainingRun(p.newID(), src.Name(), cfg)
	run.Status.Phase = v1alpha1.PhaseRunning
	run.Status.StartTime = time.Now().UTC()
	logger = logger.WithValues("runID", run.ID)
	ctx = logging.IntoContext(ctx, logger)
	fail := func(condType, reason string, err error) (*TrainResult, error) {
		finish := time.Now().UTC()
		run.Status.Phase = v1alpha1.PhaseFailed
		run.Status.FinishTime = &finish
		run.SetCondition(v1alpha1.Condition{Type: condType, Status: v1alpha1.ConditionFalse, Reason: reason, Message: err.Error()})
		logger.Error(err, "Training failed", "reason", reason)
		return nil, &RunError{Run: run, Err: err}
	}

	p.progress("train", ProgressStarted)
	table, err := src.Load(ctx)
	if err != nil {
		return fail(v1alpha1.TypeDataReady, v1alpha1.ReasonDataInvalid, fmt.Errorf("loading %s: %w", src.Name(), err))
	}
	split, err := features.Prepare(ctx, table, cfg.Features, core.NewRand(cfg.Seed, core.StreamSplit))
	if err != nil {
		return fail(v1alpha1.TypeDataReady, v1alpha1.ReasonDataInvalid, err)
	}
	run.Status.Schema = split.Schema
	run.Status.Split = v1alpha1.SplitInfo{
		Rows:    split.Len(),
		Dropped: split.Dropped,
		Train:   len(split.TrainRows),
		Test:    len(split.TestRows),
	}
	run.SetCondition(v1alpha1.Condition{
		Type: v1alpha1.TypeDataReady, Status: v1alpha1.ConditionTrue, Reason: v1alpha1.ReasonDataPrepared,
		Message: fmt.Sprintf("%d train rows, %d test rows", run.Status.Split.Train, run.Status.Split.Test),
	})
	logger.Info("Dataset prepared",
		"source", src.Name(),
		"rows", split.Len(),
		"dropped", split.Dropped,
		"train", run.Status.Split.Train,
		"test", run.Status.Split.Test)
	p.progress("train", ProgressModelReady)

	ev, err := evaluator.NewModelEvaluator(evaluator.NewOptions(&cfg))
	if err != nil {
		return fail(v1alpha1.TypeSearchComplete, v1alpha1.ReasonSearchAborted, err)
	}
	if cfg.Search.CacheEnabled() {
		ev.WithCache(common.NewFitnessCache())
	}
	opt, err := solver.NewGeneticOptimizer(&solver.OptimizerConfig{
		Search:    cfg.Search,
		Seed:      cfg.Seed,
		Evaluator: ev,
	})
	if err != nil {
		return fail(v1alpha1.TypeSearchComplete, v1alpha1.ReasonSearchAborted, err)
	}
	generations := metricscache.NewGenerationCache()
	opt.AddObserver(generations)
	for _, obs := range p.observers {
		opt.AddObserver(obs)
	}

	search, err := opt.Optimize(ctx, split.XTrain, split.YTrain)
	if err != nil {
		reason := v1alpha1.ReasonSearchAborted
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			reason = v1alpha1.ReasonSearchCancelled
		}
		return fail(v1alpha1.TypeSearchComplete, reason, err)
	}
	run.Status.Search = v1alpha1.SearchSummary{
		Best:                search.Best,
		BestFitness:         search.BestFitness,
		History:             search.History,
		Evaluations:         search.Evaluations,
		CacheHits:           search.CacheHits,
		ConvergenceWarnings: search.Warnings,
		StoppedEarly:        search.StoppedEarly,
	}
	run.SetCondition(v1alpha1.Condition{
		Type: v1alpha1.TypeSearchComplete, Status: v1alpha1.ConditionTrue, Reason: v1alpha1.ReasonSearchSucceeded,
		Message: search.Best.String(),
	})
	p.progress("train", ProgressFeaturesBuilt)

	model, warnings, err := ev.FitFinal(ctx, search.Best, split.XTrain, split.YTrain)
	if err != nil {
		return fail(v1alpha1.TypeModelReady, v1alpha1.ReasonSearchAborted, err)
	}
	model.WithSchema(split.Schema)
	pred, err := model.Predict(split.XTest)
	if err != nil {
		return fail(v1alpha1.TypeModelReady, v1alpha1.ReasonSearchAborted, err)
	}
	metrics := Score(pred, split.YTest)
	run.Status.Test = metrics
	run.Status.Search.ConvergenceWarnings += len(warnings)

	modelCond := v1alpha1.Condition{Type: v1alpha1.TypeModelReady, Status: v1alpha1.ConditionTrue, Reason: v1alpha1.ReasonModelFitted}
	if len(warnings) > 0 {
		modelCond.Reason = v1alpha1.ReasonNotConverged
		modelCond.Message = warnings[0].String()
	}
	run.SetCondition(modelCond)
	p.progress("train", ProgressPredicted)

	finish := time.Now().UTC()
	run.Status.Phase = v1alpha1.PhaseSucceeded
	run.Status.FinishTime = &finish
	logger.Info("Training finished",
		"best", search.Best.String(),
		"cvMSE", search.BestFitness,
		"testRMSE", metrics.RMSE,
		"testR2", metrics.R2,
		"elapsed", finish.Sub(run.Status.StartTime).String())
	p.progress("train", ProgressDone)

	return &TrainResult{
		Model:       model,
		Best:        search.Best,
		BestFitness: search.BestFitness,
		History:     search.History,
		Generations: generations.Generations(),
		Metrics:     metrics,
		Split:       run.Status.Split,
		Search:      search,
		Run:         run,
	}, nil
}

// Validate rebuilds the seeded split of the configuration and scores model on
// its test rows.
func (p *TrainingPipeline) Validate(ctx context.Context, src collector.Source, model *mlp.Pipeline) (*ValidationResult, error) {
	logger := logging.FromContext(ctx)
	cfg := p.config
	if model == nil || model.Model == nil || !model.Model.Fitted() {
		return nil, fmt.Errorf("model is not fitted")
	}

	table, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src.Name(), err)
	}
	split, err := features.Prepare(ctx, table, cfg.Features, core.NewRand(cfg.Seed, core.StreamSplit))
	if err != nil {
		return nil, err
	}
	if diff := model.Schema.Diff(split.Schema); diff != "" {
		return nil, &features.DataError{Reason: "model was trained on a different feature layout: " + diff}
	}
	pred, err := model.PredictWithSchema(split.XTest, split.Schema)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(split.TestRows))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return split.SourceRows[split.TestRows[order[a]]] < split.SourceRows[split.TestRows[order[b]]]
	})
	res := &ValidationResult{
		Rows:      make([]int, len(order)),
		Actual:    make([]float64, len(order)),
		Predicted: make([]float64, len(order)),
	}
	for i, k := range order {
		res.Rows[i] = split.SourceRows[split.TestRows[k]]
		res.Actual[i] = split.YTest[k]
		res.Predicted[i] = pred[k]
	}
	res.Residuals = Residuals(res.Predicted, res.Actual)
	res.Metrics = Score(res.Predicted, res.Actual)

	logger.Info("Model validated",
		"rows", len(res.Rows),
		"rmse", res.Metrics.RMSE,
		"mae", res.Metrics.MAE,
		"r2", res.Metrics.R2)
	return res, nil
}

// Predict scores every row of the dataset. Progress is reported at 5, 20, 50,
// 90 and 100 percent.
func (p *TrainingPipeline) Predict(ctx context.Context, src collector.Source, model *mlp.Pipeline) (*Prediction, error) {
	logger := logging.FromContext(ctx)

	p.progress("predict", ProgressStarted)
	if model == nil || model.Model == nil || !model.Model.Fitted() {
		return nil, fmt.Errorf("model is not fitted")
	}
	if err := model.Schema.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", mlp.ErrSchemaMismatch, err)
	}
	p.progress("predict", ProgressModelReady)

	table, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src.Name(), err)
	}
	X, err := features.Build(table, model.Schema)
	if err != nil {
		return nil, err
	}
	p.progress("predict", ProgressFeaturesBuilt)

	values, err := model.PredictWithSchema(X, model.Schema)
	if err != nil {
		return nil, err
	}
	p.progress("predict", ProgressPredicted)

	out := &Prediction{Values: values}
	for i, v := range values {
		if i == 0 || v > out.Max {
			out.Max, out.MaxRow = v, i
		}
	}
	logger.V(logging.DEBUG).Info("Predicted wear", "rows", len(values), "max", out.Max, "maxRow", out.MaxRow)
	p.progress("predict", ProgressDone)
	return out, nil
}
