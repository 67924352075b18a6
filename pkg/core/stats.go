package core

import "time"

// GenerationStats summarises the evaluated population of one generation.
type GenerationStats struct {
	Generation     int        `json:"generation" yaml:"generation"`
	Best           float64    `json:"best" yaml:"best"`
	Mean           float64    `json:"mean" yaml:"mean"`
	Worst          float64    `json:"worst" yaml:"worst"`
	BestIndividual Individual `json:"bestIndividual" yaml:"bestIndividual"`

	// Evaluations counts fits actually run, excluding cache hits.
	Evaluations int           `json:"evaluations" yaml:"evaluations"`
	CacheHits   int           `json:"cacheHits" yaml:"cacheHits"`
	Warnings    int           `json:"warnings" yaml:"warnings"`
	Elapsed     time.Duration `json:"elapsed" yaml:"elapsed"`
}
