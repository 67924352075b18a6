package core

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Range is a closed interval of real values.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Clamp limits v to the interval.
func (r Range) Clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Min), r.Max)
}

// Contains reports whether v lies in the interval. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// IntRange is a closed interval of integers.
type IntRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether v lies in the interval.
func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Bounds holds the admissible range of every hyperparameter.
type Bounds struct {
	HiddenUnits  IntRange `json:"hiddenUnits" yaml:"hiddenUnits"`
	LearningRate Range    `json:"learningRate" yaml:"learningRate"`
	Alpha        Range    `json:"alpha" yaml:"alpha"`
}

// DefaultBounds returns the search space of the wear model.
func DefaultBounds() Bounds {
	return Bounds{
		HiddenUnits:  IntRange{Min: 5, Max: 100},
		LearningRate: Range{Min: 1e-5, Max: 1e-1},
		Alpha:        Range{Min: 1e-6, Max: 1e-2},
	}
}

// Validate checks that every range is non-empty and that the log-sampled
// ranges are strictly positive.
func (b Bounds) Validate() error {
	if b.HiddenUnits.Min < 1 || b.HiddenUnits.Min > b.HiddenUnits.Max {
		return fmt.Errorf("hiddenUnits range [%d,%d] is invalid", b.HiddenUnits.Min, b.HiddenUnits.Max)
	}
	if b.LearningRate.Min <= 0 || b.LearningRate.Min > b.LearningRate.Max {
		return fmt.Errorf("learningRate range [%g,%g] is invalid", b.LearningRate.Min, b.LearningRate.Max)
	}
	if b.Alpha.Min <= 0 || b.Alpha.Min > b.Alpha.Max {
		return fmt.Errorf("alpha range [%g,%g] is invalid", b.Alpha.Min, b.Alpha.Max)
	}
	return nil
}

// Individual is one candidate hyperparameter set of the regressor.
type Individual struct {
	// HiddenUnits is the number of neurons of the single hidden layer.
	HiddenUnits int `json:"hiddenUnits" yaml:"hiddenUnits"`
	// LearningRate is the initial adam step size.
	LearningRate float64 `json:"learningRate" yaml:"learningRate"`
	// Alpha is the L2 regularisation strength.
	Alpha float64 `json:"alpha" yaml:"alpha"`
}

// RandomIndividual draws an individual from b. Hidden units are uniform over the
// integer range; learning rate and alpha are log-uniform.
func RandomIndividual(b Bounds, rng *rand.Rand) Individual {
	return Individual{
		HiddenUnits:  b.HiddenUnits.Min + rng.IntN(b.HiddenUnits.Max-b.HiddenUnits.Min+1),
		LearningRate: LogUniform(b.LearningRate, rng),
		Alpha:        LogUniform(b.Alpha, rng),
	}
}

// LogUniform samples 10^u with u uniform over [log10(r.Min), log10(r.Max)].
func LogUniform(r Range, rng *rand.Rand) float64 {
	lo, hi := math.Log10(r.Min), math.Log10(r.Max)
	return math.Pow(10, lo+(hi-lo)*rng.Float64())
}

// Validate returns an error when any trait escapes b.
func (i Individual) Validate(b Bounds) error {
	if !b.HiddenUnits.Contains(i.HiddenUnits) {
		return fmt.Errorf("hiddenUnits %d outside [%d,%d]", i.HiddenUnits, b.HiddenUnits.Min, b.HiddenUnits.Max)
	}
	if !b.LearningRate.Contains(i.LearningRate) {
		return fmt.Errorf("learningRate %g outside [%g,%g]", i.LearningRate, b.LearningRate.Min, b.LearningRate.Max)
	}
	if !b.Alpha.Contains(i.Alpha) {
		return fmt.Errorf("alpha %g outside [%g,%g]", i.Alpha, b.Alpha.Min, b.Alpha.Max)
	}
	return nil
}

// Key identifies the exact hyperparameter values, bit for bit.
func (i Individual) Key() string {
	return fmt.Sprintf("%d/%016x/%016x", i.HiddenUnits, math.Float64bits(i.LearningRate), math.Float64bits(i.Alpha))
}

func (i Individual) String() string {
	return fmt.Sprintf("hidden=%d lr=%.5f alpha=%.6f", i.HiddenUnits, i.LearningRate, i.Alpha)
}
