// Package core provides the fundamental data structures of the wear-model search.
//
// This package contains the domain values shared by the solver, the evaluator
// and the training pipeline:
//
//   - Individual: one candidate hyperparameter triple (hidden units, learning rate, alpha)
//   - Bounds: the admissible range of every hyperparameter
//   - Population: an ordered, fixed-size set of individuals for one generation
//   - History: the append-only best-fitness-per-generation record
//   - NewRand: the explicitly owned, seeded random source for a run
//
// Example usage:
//
//	rng := core.NewRand(42, core.StreamSearch)
//	pop, err := core.NewPopulation(30, core.DefaultBounds(), rng)
//	if err != nil {
//	    return err
//	}
//	for _, ind := range pop.Members {
//	    log.Info("candidate", "individual", ind.String())
//	}
//
// The core package is designed to be:
//   - Immutable where possible (value types, operators return new values)
//   - Free of global random state (every draw takes a *rand.Rand)
//   - Independent of the learner and of I/O
package core
