package config

import (
	"fmt"
	"runtime"

	"github.com/toolcrib/vbwear/pkg/core"
)

// Defaults of the wear-model search.
const (
	DefaultPopulationSize   = 30
	DefaultGenerations      = 100
	DefaultMutationRate     = 0.2
	DefaultFolds            = 3
	DefaultSearchMaxIter    = 500
	DefaultFinalMaxIter     = 1000
	DefaultTestFraction     = 0.2
	DefaultSeed             = 42
	DefaultModelSeed        = 42
	DefaultTarget           = "VB"
	DefaultCategoricalField = "material"
	DefaultIndicatorPrefix  = "mat"

	// MinPopulationSize keeps at least two survivors to draw distinct parents from.
	MinPopulationSize = 4
)

// DefaultNumericFields returns the sensor and process columns, in feature order.
func DefaultNumericFields() []string {
	return []string{"time", "DOC", "feed", "smcAC", "smcDC", "vib_table", "vib_spindle", "AE_table", "AE_spindle"}
}

// DefaultCategories returns the material values that get an indicator column.
func DefaultCategories() []string {
	return []string{"1", "2"}
}

// FeatureSpec describes how a raw table becomes a feature matrix.
type FeatureSpec struct {
	// Target is the regression target column; rows where it is missing are dropped.
	Target string `yaml:"target" json:"target" mapstructure:"target"`

	// NumericFields are copied unchanged, in this order.
	NumericFields []string `yaml:"numericFields" json:"numericFields" mapstructure:"numericFields"`

	// CategoricalField is one-hot encoded over Categories.
	CategoricalField string `yaml:"categoricalField" json:"categoricalField" mapstructure:"categoricalField"`

	// Categories get one indicator column each, named <IndicatorPrefix>_<category>.
	// Values outside this list encode as all zeros.
	Categories []string `yaml:"categories" json:"categories" mapstructure:"categories"`

	// IndicatorPrefix names the indicator columns.
	IndicatorPrefix string `yaml:"indicatorPrefix" json:"indicatorPrefix" mapstructure:"indicatorPrefix"`

	// TestFraction is the share of rows held out for the final test (0 < f < 1).
	TestFraction float64 `yaml:"testFraction" json:"testFraction" mapstructure:"testFraction"`
}

// EarlyStopSpec stops the search when the best fitness has not improved by more
// than MinDelta for Patience consecutive generations.
type EarlyStopSpec struct {
	Patience int     `yaml:"patience" json:"patience" mapstructure:"patience"`
	MinDelta float64 `yaml:"minDelta" json:"minDelta" mapstructure:"minDelta"`
}

// SearchSpec configures the genetic search and the learner it tunes.
type SearchSpec struct {
	PopulationSize int     `yaml:"populationSize" json:"populationSize" mapstructure:"populationSize"`
	Generations    int     `yaml:"generations" json:"generations" mapstructure:"generations"`
	MutationRate   float64 `yaml:"mutationRate" json:"mutationRate" mapstructure:"mutationRate"`

	// Folds is the k of k-fold cross-validation used as fitness.
	Folds int `yaml:"folds" json:"folds" mapstructure:"folds"`

	// SearchMaxIter caps training epochs inside the fitness loop.
	SearchMaxIter int `yaml:"searchMaxIter" json:"searchMaxIter" mapstructure:"searchMaxIter"`

	// FinalMaxIter caps training epochs of the final fit.
	FinalMaxIter int `yaml:"finalMaxIter" json:"finalMaxIter" mapstructure:"finalMaxIter"`

	// Workers bounds concurrent fitness evaluations; 0 means runtime.NumCPU().
	Workers int `yaml:"workers" json:"workers" mapstructure:"workers"`

	// CacheFitness memoises fitness by exact hyperparameter values within a run.
	// Nil means enabled.
	CacheFitness *bool `yaml:"cacheFitness,omitempty" json:"cacheFitness,omitempty" mapstructure:"cacheFitness"`

	// EarlyStop is off when nil.
	EarlyStop *EarlyStopSpec `yaml:"earlyStop,omitempty" json:"earlyStop,omitempty" mapstructure:"earlyStop"`

	// Bounds is the hyperparameter search space.
	Bounds core.Bounds `yaml:"bounds" json:"bounds" mapstructure:"bounds"`
}

// LoggingSpec configures the process logger.
type LoggingSpec struct {
	Verbosity   int  `yaml:"verbosity" json:"verbosity" mapstructure:"verbosity"`
	Development bool `yaml:"development" json:"development" mapstructure:"development"`
	JSON        bool `yaml:"json" json:"json" mapstructure:"json"`
}

// Config is the complete configuration of a training run.
type Config struct {
	// Seed drives the train/test split and the genetic search.
	Seed uint64 `yaml:"seed" json:"seed" mapstructure:"seed"`

	// ModelSeed initialises the network weights of every fit identically.
	ModelSeed uint64 `yaml:"modelSeed" json:"modelSeed" mapstructure:"modelSeed"`

	Features FeatureSpec `yaml:"features" json:"features" mapstructure:"features"`
	Search   SearchSpec  `yaml:"search" json:"search" mapstructure:"search"`
	Logging  LoggingSpec `yaml:"logging" json:"logging" mapstructure:"logging"`
}

// DefaultFeatureSpec returns the tool-wear dataset layout.
func DefaultFeatureSpec() FeatureSpec {
	return FeatureSpec{
		Target:           DefaultTarget,
		NumericFields:    DefaultNumericFields(),
		CategoricalField: DefaultCategoricalField,
		Categories:       DefaultCategories(),
		IndicatorPrefix:  DefaultIndicatorPrefix,
		TestFraction:     DefaultTestFraction,
	}
}

// DefaultSearchSpec returns the 30x100 search with a 500/1000 epoch budget.
func DefaultSearchSpec() SearchSpec {
	return SearchSpec{
		PopulationSize: DefaultPopulationSize,
		Generations:    DefaultGenerations,
		MutationRate:   DefaultMutationRate,
		Folds:          DefaultFolds,
		SearchMaxIter:  DefaultSearchMaxIter,
		FinalMaxIter:   DefaultFinalMaxIter,
		Bounds:         core.DefaultBounds(),
	}
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		Seed:      DefaultSeed,
		ModelSeed: DefaultModelSeed,
		Features:  DefaultFeatureSpec(),
		Search:    DefaultSearchSpec(),
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.Logging.Verbosity < 0 {
		return fmt.Errorf("logging: verbosity must be >= 0, got %d", c.Logging.Verbosity)
	}
	return nil
}

// Validate checks for invalid feature configuration values.
func (f *FeatureSpec) Validate() error {
	if f.Target == "" {
		return fmt.Errorf("target column must be set")
	}
	if len(f.NumericFields) == 0 {
		return fmt.Errorf("at least one numeric field is required")
	}
	if f.CategoricalField == "" {
		return fmt.Errorf("categorical field must be set")
	}
	if len(f.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	if f.IndicatorPrefix == "" {
		return fmt.Errorf("indicatorPrefix must be set")
	}
	if f.TestFraction <= 0 || f.TestFraction >= 1 {
		return fmt.Errorf("testFraction must be between 0 and 1 (exclusive), got %.3f", f.TestFraction)
	}

	seen := map[string]bool{f.Target: true, f.CategoricalField: true}
	if f.Target == f.CategoricalField {
		return fmt.Errorf("target %q cannot also be the categorical field", f.Target)
	}
	for _, name := range f.NumericFields {
		if name == "" {
			return fmt.Errorf("numeric field names cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("column %q is used more than once", name)
		}
		seen[name] = true
	}
	cats := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		if c == "" {
			return fmt.Errorf("category values cannot be empty")
		}
		if cats[c] {
			return fmt.Errorf("category %q is listed more than once", c)
		}
		cats[c] = true
	}
	return nil
}

// Validate checks for invalid search configuration values.
func (s *SearchSpec) Validate() error {
	if s.PopulationSize < MinPopulationSize {
		return fmt.Errorf("populationSize must be >= %d, got %d", MinPopulationSize, s.PopulationSize)
	}
	if s.Generations < 0 {
		return fmt.Errorf("generations must be >= 0, got %d", s.Generations)
	}
	if s.MutationRate < 0 || s.MutationRate > 1 {
		return fmt.Errorf("mutationRate must be between 0 and 1, got %.2f", s.MutationRate)
	}
	if s.Folds < 2 {
		return fmt.Errorf("folds must be >= 2, got %d", s.Folds)
	}
	if s.SearchMaxIter < 1 {
		return fmt.Errorf("searchMaxIter must be >= 1, got %d", s.SearchMaxIter)
	}
	if s.FinalMaxIter < 1 {
		return fmt.Errorf("finalMaxIter must be >= 1, got %d", s.FinalMaxIter)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", s.Workers)
	}
	if s.EarlyStop != nil {
		if s.EarlyStop.Patience < 1 {
			return fmt.Errorf("earlyStop.patience must be >= 1, got %d", s.EarlyStop.Patience)
		}
		if s.EarlyStop.MinDelta < 0 {
			return fmt.Errorf("earlyStop.minDelta must be >= 0, got %g", s.EarlyStop.MinDelta)
		}
	}
	if err := s.Bounds.Validate(); err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	return nil
}

// CacheEnabled reports whether fitness memoisation is on.
func (s *SearchSpec) CacheEnabled() bool {
	return s.CacheFitness == nil || *s.CacheFitness
}

// EffectiveWorkers resolves Workers=0 to the number of CPUs.
func (s *SearchSpec) EffectiveWorkers() int {
	if s.Workers <= 0 {
		return runtime.NumCPU()
	}
	return s.Workers
}
