package mlp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/toolcrib/vbwear/pkg/core"
)

// ErrSchemaMismatch is returned when features do not match the schema a
// pipeline was trained with.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// Pipeline is a fitted scaler plus regressor, together with the feature layout
// and hyperparameters it was trained with.
type Pipeline struct {
	Schema core.FeatureSchema
	Hyper  core.Individual
	Info   FitInfo

	Scaler *StandardScaler
	Model  *Regressor
}

// NewPipeline builds an unfitted pipeline for the given hyperparameters.
// base supplies everything except HiddenUnits, LearningRate and Alpha.
func NewPipeline(ind core.Individual, base Params) (*Pipeline, error) {
	base.HiddenUnits = ind.HiddenUnits
	base.LearningRate = ind.LearningRate
	base.Alpha = ind.Alpha
	model, err := NewRegressor(base)
	if err != nil {
		return nil, fmt.Errorf("invalid hyperparameters %s: %w", ind, err)
	}
	return &Pipeline{
		Hyper:  ind,
		Scaler: NewStandardScaler(),
		Model:  model,
	}, nil
}

// WithSchema attaches the feature layout used to check later inputs.
func (p *Pipeline) WithSchema(schema core.FeatureSchema) *Pipeline {
	p.Schema = schema
	return p
}

// Fit fits the scaler on X, then trains the regressor on the scaled X.
func (p *Pipeline) Fit(X mat.Matrix, y []float64) (FitInfo, error) {
	if err := p.checkWidth(X); err != nil {
		return FitInfo{}, err
	}
	Xs, err := p.Scaler.FitTransform(X)
	if err != nil {
		return FitInfo{}, err
	}
	info, err := p.Model.Fit(Xs, y)
	p.Info = info
	return info, err
}

// Predict scales X with the training statistics and runs the regressor.
func (p *Pipeline) Predict(X mat.Matrix) ([]float64, error) {
	if err := p.checkWidth(X); err != nil {
		return nil, err
	}
	Xs, err := p.Scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.Model.Predict(Xs)
}

// PredictWithSchema is Predict after checking that X was built with schema.
func (p *Pipeline) PredictWithSchema(X mat.Matrix, schema core.FeatureSchema) ([]float64, error) {
	if diff := p.Schema.Diff(schema); diff != "" {
		return nil, fmt.Errorf("%w: %s", ErrSchemaMismatch, diff)
	}
	return p.Predict(X)
}

func (p *Pipeline) checkWidth(X mat.Matrix) error {
	if p.Schema.Width() == 0 {
		return nil
	}
	if _, c := X.Dims(); c != p.Schema.Width() {
		return fmt.Errorf("%w: %d feature columns, model expects %d", ErrSchemaMismatch, c, p.Schema.Width())
	}
	return nil
}
