package optimizer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/toolcrib/vbwear/api/v1alpha1"
	"github.com/toolcrib/vbwear/pkg/evaluator"
)

// Score computes regression metrics of predictions against actual values.
// R2 of a constant target is 1 for a perfect fit and 0 otherwise.
func Score(pred, actual []float64) v1alpha1.Metrics {
	n := float64(len(actual))
	mse := evaluator.MSE(pred, actual)
	m := v1alpha1.Metrics{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  floats.Distance(pred, actual, 1) / n,
	}
	_, variance := stat.PopMeanVariance(actual, nil)
	switch {
	case variance > 0:
		m.R2 = stat.RSquaredFrom(pred, actual, nil)
	case mse == 0:
		m.R2 = 1
	}
	return m
}

// Residuals returns actual - pred.
func Residuals(pred, actual []float64) []float64 {
	out := make([]float64, len(actual))
	floats.SubTo(out, actual, pred)
	return out
}
