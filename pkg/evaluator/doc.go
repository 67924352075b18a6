// Package evaluator scores hyperparameter candidates for the wear regressor.
//
// The fitness of an individual is the mean held-out mean squared error of
// k-fold cross-validation over the training data: the rows are cut into k
// contiguous folds in their given order (no shuffle), the first n%k folds
// holding one extra row, and a fresh mlp.Pipeline is fitted on every k-1 fold
// combination. Every fit starts from the same weight seed, so a score depends
// only on the individual and the data. Lower is better.
//
// A fit that reaches its epoch cap without meeting the stopping rule produces
// a ConvergenceWarning, which is recorded but never fails an evaluation. An
// individual outside the search bounds, an invalid fold count or a non-finite
// score aborts the search with ErrOptimizationAbort.
package evaluator
