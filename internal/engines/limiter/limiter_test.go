package limiter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/toolcrib/vbwear/pkg/core"
	"github.com/toolcrib/vbwear/pkg/evaluator"
)

// stubEvaluator scores an individual by its hidden units and fails on the
// configured value.
type stubEvaluator struct {
	failOn   int
	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
}

var errStub = errors.New("stub failure")

func (s *stubEvaluator) Fitness(_ context.Context, ind core.Individual, _ mat.Matrix, _ []float64) (evaluator.Result, error) {
	s.calls.Add(1)
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if ind.HiddenUnits == s.failOn {
		return evaluator.Result{}, errStub
	}
	return evaluator.Result{Fitness: float64(ind.HiddenUnits)}, nil
}

func members(n int) []core.Individual {
	out := make([]core.Individual, n)
	for i := range out {
		out[i] = core.Individual{HiddenUnits: i + 1, LearningRate: 1e-3, Alpha: 1e-4}
	}
	return out
}

func TestNewLimiter(t *testing.T) {
	tests := []struct {
		name     string
		strategy LimiterStrategy
		config   *LimiterConfig
		wantErr  bool
	}{
		{name: "Test case 1: serial", strategy: SerialStrategy},
		{name: "Test case 2: bounded with nil config", strategy: BoundedStrategy},
		{name: "Test case 3: bounded with explicit size", strategy: BoundedStrategy, config: &LimiterConfig{MaxConcurrency: 3}},
		{name: "Test case 4: negative size", strategy: BoundedStrategy, config: &LimiterConfig{MaxConcurrency: -1}, wantErr: true},
		{name: "Test case 5: unknown strategy", strategy: LimiterStrategy(42), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLimiter(tt.strategy, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLimiter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("expected a limiter")
			}
		})
	}
}

func TestEvaluateKeepsMemberOrder(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		l, err := ForWorkers(workers)
		if err != nil {
			t.Fatalf("ForWorkers(%d): %v", workers, err)
		}
		ms := members(20)
		results, err := l.Evaluate(context.Background(), &stubEvaluator{failOn: -1}, ms, nil, nil)
		if err != nil {
			t.Fatalf("workers=%d: unexpected error %v", workers, err)
		}
		for i, r := range results {
			if r.Fitness != float64(ms[i].HiddenUnits) {
				t.Errorf("workers=%d: result %d = %v, want %v", workers, i, r.Fitness, ms[i].HiddenUnits)
			}
		}
	}
}

func TestBoundedLimiterRespectsBound(t *testing.T) {
	l, err := NewBoundedLimiter(&BoundedLimiterConfig{LimiterConfig{MaxConcurrency: 3}})
	if err != nil {
		t.Fatal(err)
	}
	ev := &stubEvaluator{failOn: -1}
	if _, err := l.Evaluate(context.Background(), ev, members(30), nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := ev.peak.Load(); got > 3 {
		t.Errorf("peak concurrency %d exceeds bound 3", got)
	}
	if got := ev.calls.Load(); got != 30 {
		t.Errorf("expected 30 evaluations, got %d", got)
	}
}

func TestEvaluateReportsFirstFailure(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		wantCalls int32
	}{
		{name: "Test case 1: serial stops at the failure", workers: 1, wantCalls: 5},
		{name: "Test case 2: bounded finishes the generation", workers: 4, wantCalls: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ForWorkers(tt.workers)
			if err != nil {
				t.Fatal(err)
			}
			ev := &stubEvaluator{failOn: 5}
			_, err = l.Evaluate(context.Background(), ev, members(10), nil, nil)
			if !errors.Is(err, errStub) {
				t.Fatalf("expected stub error, got %v", err)
			}
			if got := ev.calls.Load(); got != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, got)
			}
		})
	}
}
