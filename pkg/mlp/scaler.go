package mlp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	errNotFitted   = errors.New("estimator is not fitted")
	errEmptyMatrix = errors.New("input matrix has no rows")
)

// StandardScaler removes the mean and scales to unit population variance.
// Columns with zero variance keep a scale of 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes per-column mean and scale.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	rows, cols := X.Dims()
	if rows == 0 {
		return errEmptyMatrix
	}
	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, X)
		mean, variance := stat.PopMeanVariance(col, nil)
		s.Mean[j] = mean
		s.Scale[j] = handleZeroScale(math.Sqrt(variance))
	}
	return nil
}

// Transform returns a standardised copy of X.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if s.Mean == nil {
		return nil, errNotFitted
	}
	_, cols := X.Dims()
	if cols != len(s.Mean) {
		return nil, fmt.Errorf("scaler fitted on %d columns, got %d", len(s.Mean), cols)
	}
	out := mat.DenseCopyOf(X)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, out)
	return out, nil
}

// FitTransform fits on X and returns the standardised X.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// zeroScaleTol is ten machine epsilons; smaller scales are treated as constant columns.
const zeroScaleTol = 10 * 2.220446049250313e-16

func handleZeroScale(scale float64) float64 {
	if scale < zeroScaleTol || math.IsNaN(scale) {
		return 1
	}
	return scale
}
