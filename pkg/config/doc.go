// Package config provides the configuration types of the wear-model search.
//
// Configuration Types:
//
//   - Config: top-level run configuration (seeds, features, search, logging)
//   - FeatureSpec: dataset columns, categories and train/test split fraction
//   - SearchSpec: genetic search budget, cross-validation and training caps
//   - EarlyStopSpec: optional, off-by-default stagnation stop for the search
//
// Configuration Sources (resolved by internal/config):
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (VBWEAR_*)
//  3. YAML configuration file
//  4. Default values (lowest priority)
//
// Example usage:
//
//	cfg := config.Default()
//	cfg.Search.PopulationSize = 10
//	cfg.Search.Generations = 5
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// All configuration values are validated before a run starts:
//   - Numeric ranges (e.g., 0 < testFraction < 1, 0 <= mutationRate <= 1)
//   - Required fields (e.g., target column, at least one numeric field)
//   - Cross-field constraints (e.g., feature columns distinct from the target)
package config
