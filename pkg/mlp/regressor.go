package mlp

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/toolcrib/vbwear/pkg/core"
)

// Params configures a Regressor.
type Params struct {
	HiddenUnits  int
	LearningRate float64
	Alpha        float64
	MaxIter      int

	// BatchSize of 0 means min(200, n).
	BatchSize     int
	Tol           float64
	NIterNoChange int
	Beta1         float64
	Beta2         float64
	Epsilon       float64
	Shuffle       bool
	Seed          uint64
}

// DefaultParams returns adam defaults with a 200-epoch cap; callers set the
// hyperparameters under search.
func DefaultParams() Params {
	return Params{
		HiddenUnits:   100,
		LearningRate:  1e-3,
		Alpha:         1e-4,
		MaxIter:       200,
		Tol:           1e-4,
		NIterNoChange: 10,
		Beta1:         0.9,
		Beta2:         0.999,
		Epsilon:       1e-8,
		Shuffle:       true,
	}
}

func (p Params) validate() error {
	switch {
	case p.HiddenUnits < 1:
		return fmt.Errorf("hidden units must be >= 1, got %d", p.HiddenUnits)
	case !(p.LearningRate > 0) || math.IsInf(p.LearningRate, 0):
		return fmt.Errorf("learning rate must be positive and finite, got %g", p.LearningRate)
	case !(p.Alpha >= 0) || math.IsInf(p.Alpha, 0):
		return fmt.Errorf("alpha must be non-negative and finite, got %g", p.Alpha)
	case p.MaxIter < 1:
		return fmt.Errorf("max iterations must be >= 1, got %d", p.MaxIter)
	case p.BatchSize < 0:
		return fmt.Errorf("batch size must be >= 0, got %d", p.BatchSize)
	case p.NIterNoChange < 1:
		return fmt.Errorf("n_iter_no_change must be >= 1, got %d", p.NIterNoChange)
	}
	return nil
}

// FitInfo summarises one training run.
type FitInfo struct {
	// Iterations is the number of epochs run.
	Iterations int
	// Converged is false when training stopped at MaxIter.
	Converged bool
	// Loss is the last epoch loss (half mean squared error plus penalty).
	Loss float64
}

// Regressor is a single-hidden-layer perceptron with ReLU activation.
type Regressor struct {
	Params Params

	inputs int
	// w1 is inputs x hidden, row-major; w2 has one weight per hidden unit.
	w1, b1, w2 []float64
	b2         float64
	lossCurve  []float64
}

// NewRegressor validates p and returns an unfitted regressor.
func NewRegressor(p Params) (*Regressor, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Regressor{Params: p}, nil
}

// LossCurve returns the per-epoch training loss of the last Fit.
func (r *Regressor) LossCurve() []float64 {
	return r.lossCurve
}

// Fitted reports whether weights are present.
func (r *Regressor) Fitted() bool {
	return r.w1 != nil
}

// Fit trains the network on X and y, re-initialising all weights.
func (r *Regressor) Fit(X mat.Matrix, y []float64) (FitInfo, error) {
	n, in := X.Dims()
	if n == 0 {
		return FitInfo{}, errEmptyMatrix
	}
	if len(y) != n {
		return FitInfo{}, fmt.Errorf("X has %d rows but y has %d values", n, len(y))
	}
	p := r.Params
	h := p.HiddenUnits
	rng := core.NewRand(p.Seed, core.StreamModel)

	r.inputs = in
	r.w1, r.b1 = glorotInit(rng, in, h, in*h), glorotInit(rng, in, h, h)
	r.w2, r.b2 = glorotInit(rng, h, 1, h), glorotInit(rng, h, 1, 1)[0]
	r.lossCurve = r.lossCurve[:0]

	batch := p.BatchSize
	if batch == 0 || batch > n {
		batch = min(200, n)
	}

	opt := newAdam(p, len(r.w1)+len(r.b1)+len(r.w2)+1)
	grad := make([]float64, opt.size)

	W1 := mat.NewDense(in, h, r.w1)
	W2 := mat.NewVecDense(h, r.w2)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	bestLoss := math.Inf(1)
	noImprove := 0
	info := FitInfo{}
	for epoch := 1; epoch <= p.MaxIter; epoch++ {
		if p.Shuffle {
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		var accLoss float64
		for start := 0; start < n; start += batch {
			end := min(start+batch, n)
			rows := order[start:end]
			b := len(rows)

			Xb := mat.NewDense(b, in, nil)
			yb := make([]float64, b)
			for k, idx := range rows {
				for j := 0; j < in; j++ {
					Xb.Set(k, j, X.At(idx, j))
				}
				yb[k] = y[idx]
			}

			// forward
			Z1 := mat.NewDense(b, h, nil)
			Z1.Mul(Xb, W1)
			A1 := mat.NewDense(b, h, nil)
			A1.Apply(func(_, j int, v float64) float64 { return relu(v + r.b1[j]) }, Z1)
			out := mat.NewVecDense(b, nil)
			out.MulVec(A1, W2)

			delta2 := mat.NewVecDense(b, nil)
			var sse float64
			for k := 0; k < b; k++ {
				d := out.AtVec(k) + r.b2 - yb[k]
				delta2.SetVec(k, d)
				sse += d * d
			}
			penalty := floats.Dot(r.w1, r.w1) + floats.Dot(r.w2, r.w2)
			loss := sse/(2*float64(b)) + 0.5*p.Alpha*penalty/float64(b)
			accLoss += loss * float64(b)

			// backward
			fb := float64(b)
			gW1 := mat.NewDense(in, h, grad[:in*h])
			gB1 := grad[in*h : in*h+h]
			gW2 := mat.NewVecDense(h, grad[in*h+h:in*h+2*h])

			gW2.MulVec(A1.T(), delta2)
			for j := 0; j < h; j++ {
				gW2.SetVec(j, (gW2.AtVec(j)+p.Alpha*r.w2[j])/fb)
			}
			grad[len(grad)-1] = mat.Sum(delta2) / fb

			delta1 := mat.NewDense(b, h, nil)
			delta1.Outer(1, delta2, W2)
			delta1.Apply(func(i, j int, v float64) float64 {
				if A1.At(i, j) <= 0 {
					return 0
				}
				return v
			}, delta1)

			gW1.Mul(Xb.T(), delta1)
			gW1.Apply(func(i, j int, v float64) float64 {
				return (v + p.Alpha*r.w1[i*h+j]) / fb
			}, gW1)
			for j := 0; j < h; j++ {
				gB1[j] = mat.Sum(delta1.ColView(j)) / fb
			}

			opt.step(grad, r.w1, r.b1, r.w2, &r.b2)
		}

		epochLoss := accLoss / float64(n)
		r.lossCurve = append(r.lossCurve, epochLoss)
		info.Iterations = epoch
		info.Loss = epochLoss
		if math.IsNaN(epochLoss) || math.IsInf(epochLoss, 0) {
			return info, fmt.Errorf("training diverged at epoch %d", epoch)
		}

		if epochLoss > bestLoss-p.Tol {
			noImprove++
		} else {
			noImprove = 0
		}
		if epochLoss < bestLoss {
			bestLoss = epochLoss
		}
		if noImprove > p.NIterNoChange {
			info.Converged = true
			break
		}
	}
	return info, nil
}

// Predict returns one prediction per row of X.
func (r *Regressor) Predict(X mat.Matrix) ([]float64, error) {
	if !r.Fitted() {
		return nil, errNotFitted
	}
	n, in := X.Dims()
	if in != r.inputs {
		return nil, fmt.Errorf("regressor fitted on %d features, got %d", r.inputs, in)
	}
	h := r.Params.HiddenUnits
	Z1 := mat.NewDense(n, h, nil)
	Z1.Mul(X, mat.NewDense(in, h, r.w1))
	Z1.Apply(func(_, j int, v float64) float64 { return relu(v + r.b1[j]) }, Z1)
	out := mat.NewVecDense(n, nil)
	out.MulVec(Z1, mat.NewVecDense(h, r.w2))

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = out.AtVec(i) + r.b2
	}
	return pred, nil
}

func relu(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

// glorotInit draws size values uniform in +-sqrt(6/(fanIn+fanOut)).
func glorotInit(rng *rand.Rand, fanIn, fanOut, size int) []float64 {
	bound := math.Sqrt(6 / float64(fanIn+fanOut))
	out := make([]float64, size)
	for i := range out {
		out[i] = (2*rng.Float64() - 1) * bound
	}
	return out
}

// adam keeps first and second moment estimates over the flattened parameters
// laid out as w1 | b1 | w2 | b2.
type adam struct {
	lr, beta1, beta2, eps float64
	size                  int
	t                     int
	m, v                  []float64
}

func newAdam(p Params, size int) *adam {
	return &adam{
		lr:    p.LearningRate,
		beta1: p.Beta1,
		beta2: p.Beta2,
		eps:   p.Epsilon,
		size:  size,
		m:     make([]float64, size),
		v:     make([]float64, size),
	}
}

func (a *adam) step(grad, w1, b1, w2 []float64, b2 *float64) {
	a.t++
	lrT := a.lr * math.Sqrt(1-math.Pow(a.beta2, float64(a.t))) / (1 - math.Pow(a.beta1, float64(a.t)))
	k := 0
	update := func(params []float64) {
		for i := range params {
			g := grad[k]
			a.m[k] = a.beta1*a.m[k] + (1-a.beta1)*g
			a.v[k] = a.beta2*a.v[k] + (1-a.beta2)*g*g
			params[i] -= lrT * a.m[k] / (math.Sqrt(a.v[k]) + a.eps)
			k++
		}
	}
	update(w1)
	update(b1)
	update(w2)
	last := []float64{*b2}
	update(last)
	*b2 = last[0]
}
