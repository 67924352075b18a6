// Package solver implements the genetic search over regressor hyperparameters.
//
// The search is a generational, elitist genetic algorithm over core.Individual
// values:
//
//	INIT -> (EVALUATE -> SELECT -> RECOMBINE)* -> finalize
//
// Key Components:
//
//   - Select: stable ascending sort by fitness, the best half survives
//   - Crossover: hidden units from a uniformly chosen parent, learning rate and
//     alpha as arithmetic means
//   - Mutate: each trait independently with the mutation rate; hidden units are
//     redrawn, the real traits are scaled by 10^U(-0.5, 0.5) and clamped
//   - Recombine: survivors followed by children of two distinct survivors until
//     the population is full again
//   - GeneticOptimizer: runs the generations, records the History and picks the
//     final winner
//
// Evaluation of a generation goes through a limiter.Limiter, which writes the
// fitness of member i into slot i of a buffer; selection starts only after the
// whole generation has been scored. Because fitness is deterministic and the
// best survivor is carried over unchanged, History never increases.
//
// Example usage:
//
//	opt, err := solver.NewGeneticOptimizer(&solver.OptimizerConfig{
//	    Search:    cfg.Search,
//	    Seed:      cfg.Seed,
//	    Evaluator: ev,
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := opt.Optimize(ctx, X, y)
//	if err != nil {
//	    return err
//	}
//	logger.Info("Search finished", "best", result.Best.String(), "mse", result.BestFitness)
//
// All randomness comes from the search stream of the run seed; the context is
// checked for cancellation between generations only.
package solver
