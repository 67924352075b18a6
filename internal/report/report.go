// Package report renders training and validation charts with gonum/plot.
// The image format follows the file extension of the output path.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/toolcrib/vbwear/pkg/core"
)

// File names written by ValidationPlots.
const (
	PredVsActualFile      = "pred_vs_actual.png"
	ResidualsHistFile     = "residuals_hist.png"
	TimeseriesCompareFile = "timeseries_compare.png"
)

// ErrNoData is returned for an empty series.
var ErrNoData = errors.New("nothing to plot")

var (
	actualColor    = color.RGBA{R: 120, G: 120, B: 120, A: 220}
	predictedColor = color.RGBA{R: 20, G: 80, B: 200, A: 220}
	idealColor     = color.RGBA{R: 200, G: 30, B: 30, A: 180}
)

// HistoryPlot draws the best fitness of every generation.
func HistoryPlot(history core.History, path string) error {
	if len(history) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Best fitness per generation"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Cross-validated MSE"

	pts := make(plotter.XYs, len(history))
	for i, v := range history {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = predictedColor
	points.GlyphStyle.Color = predictedColor
	p.Add(plotter.NewGrid(), line, points)
	return save(p, path)
}

// PredVsActual scatters predicted against actual wear with the y = x diagonal.
func PredVsActual(actual, predicted []float64, path string) error {
	if err := checkPair(actual, predicted); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Predicted vs actual VB"
	p.X.Label.Text = "Actual VB"
	p.Y.Label.Text = "Predicted VB"

	pts := make(plotter.XYs, len(actual))
	for i := range actual {
		pts[i].X, pts[i].Y = actual[i], predicted[i]
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = predictedColor
	sc.GlyphStyle.Radius = vg.Points(2.5)

	lo := math.Min(floats.Min(actual), floats.Min(predicted))
	hi := math.Max(floats.Max(actual), floats.Max(predicted))
	ideal, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return err
	}
	ideal.Color = idealColor
	ideal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(plotter.NewGrid(), sc, ideal)
	p.Legend.Add("model", sc)
	p.Legend.Add("ideal", ideal)
	p.Legend.Top = true
	p.Legend.Left = true
	return save(p, path)
}

// ResidualsHist draws a histogram of actual - predicted.
func ResidualsHist(residuals []float64, bins int, path string) error {
	if len(residuals) == 0 {
		return ErrNoData
	}
	if bins < 1 {
		bins = 20
	}
	p := plot.New()
	p.Title.Text = "Residuals"
	p.X.Label.Text = "Actual - predicted VB"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(residuals), bins)
	if err != nil {
		return err
	}
	h.FillColor = predictedColor
	p.Add(h)
	return save(p, path)
}

// TimeseriesCompare draws actual and predicted wear against the source row.
func TimeseriesCompare(rows []int, actual, predicted []float64, path string) error {
	if err := checkPair(actual, predicted); err != nil {
		return err
	}
	if len(rows) != len(actual) {
		return fmt.Errorf("%d rows for %d values", len(rows), len(actual))
	}
	p := plot.New()
	p.Title.Text = "VB over test rows"
	p.X.Label.Text = "Row"
	p.Y.Label.Text = "VB"

	act := make(plotter.XYs, len(rows))
	pred := make(plotter.XYs, len(rows))
	for i, r := range rows {
		act[i] = plotter.XY{X: float64(r), Y: actual[i]}
		pred[i] = plotter.XY{X: float64(r), Y: predicted[i]}
	}
	actLine, err := plotter.NewLine(act)
	if err != nil {
		return err
	}
	actLine.Color = actualColor
	predLine, err := plotter.NewLine(pred)
	if err != nil {
		return err
	}
	predLine.Color = predictedColor
	predLine.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}

	p.Add(plotter.NewGrid(), actLine, predLine)
	p.Legend.Add("actual", actLine)
	p.Legend.Add("predicted", predLine)
	p.Legend.Top = true
	return save(p, path)
}

// ValidationPlots writes the three validation charts into dir and returns
// their paths.
func ValidationPlots(dir string, rows []int, actual, predicted, residuals []float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating plot directory: %w", err)
	}
	paths := []string{
		filepath.Join(dir, PredVsActualFile),
		filepath.Join(dir, ResidualsHistFile),
		filepath.Join(dir, TimeseriesCompareFile),
	}
	if err := PredVsActual(actual, predicted, paths[0]); err != nil {
		return nil, err
	}
	if err := ResidualsHist(residuals, 20, paths[1]); err != nil {
		return nil, err
	}
	if err := TimeseriesCompare(rows, actual, predicted, paths[2]); err != nil {
		return nil, err
	}
	return paths, nil
}

func checkPair(actual, predicted []float64) error {
	if len(actual) == 0 {
		return ErrNoData
	}
	if len(actual) != len(predicted) {
		return fmt.Errorf("%d actual values for %d predictions", len(actual), len(predicted))
	}
	return nil
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}
