// Package optimizer implements the training pipeline of the wear model.
//
// The optimizer package orchestrates a training run by coordinating dataset
// loading, feature building, the genetic search and the final fit.
//
// Architecture:
//
// The pipeline follows a pipeline pattern:
//
//	Dataset → Features → Genetic search → Final fit → Test scores
//	(Collector) (Features)   (Solver)     (Evaluator)   (Metrics)
//
// Example usage:
//
//	p, err := optimizer.NewTrainingPipeline(&cfg)
//	if err != nil {
//	    return err
//	}
//	p.AddObserver(emitter)
//
//	result, err := p.Train(ctx, source)
//	if err != nil {
//	    return err
//	}
//	logger.Info("Model trained", "best", result.Best.String(), "rmse", result.Metrics.RMSE)
//
// Validate recomputes the seeded split of a training run and scores a model on
// its test rows; Predict scores every row of a dataset and reports progress at
// fixed milestones. The pipeline never writes files: persisting the model and
// the run record is left to the caller.
package optimizer
