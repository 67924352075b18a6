package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/toolcrib/vbwear/api/v1alpha1"
	"github.com/toolcrib/vbwear/internal/collector"
	"github.com/toolcrib/vbwear/internal/features"
	"github.com/toolcrib/vbwear/pkg/config"
	"github.com/toolcrib/vbwear/pkg/core"
	"github.com/toolcrib/vbwear/pkg/evaluator"
	"github.com/toolcrib/vbwear/pkg/mlp"
)

var millHeader = []string{"time", "DOC", "feed", "material", "smcAC", "smcDC", "vib_table", "vib_spindle", "AE_table", "AE_spindle", "VB"}

// memorySource serves a fixed table.
type memorySource struct {
	table *collector.Table
	err   error
}

func (s *memorySource) Name() string { return "memory" }

func (s *memorySource) Load(context.Context) (*collector.Table, error) {
	return s.table, s.err
}

func millSource(n int, vb func(i int) string) *memorySource {
	rows := make([][]string, n)
	for i := range rows {
		t := float64(i)
		rows[i] = []string{
			fmt.Sprint(t), "1.5", "0.5", fmt.Sprint(1 + i%2),
			fmt.Sprint(0.1 * t), fmt.Sprint(0.05 * t), "0.3", "0.4",
			fmt.Sprint(0.2 + 0.01*t), "0.6",
			vb(i),
		}
	}
	table, err := collector.NewTable("memory", millHeader, rows)
	Expect(err).NotTo(HaveOccurred())
	return &memorySource{table: table}
}

func wear(i int) string { return fmt.Sprint(0.01 * float64(i)) }

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Search.PopulationSize = 4
	cfg.Search.Generations = 2
	cfg.Search.SearchMaxIter = 5
	cfg.Search.FinalMaxIter = 20
	cfg.Search.Workers = 2
	cfg.Search.Bounds.HiddenUnits = core.IntRange{Min: 2, Max: 6}
	return cfg
}

var _ = Describe("Score", func() {
	It("should report a perfect fit", func() {
		m := Score([]float64{1, 2, 3}, []float64{1, 2, 3})
		Expect(m.MSE).To(BeZero())
		Expect(m.RMSE).To(BeZero())
		Expect(m.MAE).To(BeZero())
		Expect(m.R2).To(BeNumerically("~", 1, 1e-12))
	})

	It("should compute errors of an offset prediction", func() {
		m := Score([]float64{2, 3, 4, 5}, []float64{1, 2, 3, 4})
		Expect(m.MSE).To(BeNumerically("~", 1, 1e-12))
		Expect(m.RMSE).To(BeNumerically("~", 1, 1e-12))
		Expect(m.MAE).To(BeNumerically("~", 1, 1e-12))
		// SSres = 4, SStot = 5
		Expect(m.R2).To(BeNumerically("~", 0.2, 1e-12))
	})

	It("should handle a constant target", func() {
		Expect(Score([]float64{2, 2}, []float64{2, 2}).R2).To(Equal(1.0))
		Expect(Score([]float64{1, 3}, []float64{2, 2}).R2).To(BeZero())
	})

	It("should compute residuals as actual minus predicted", func() {
		Expect(Residuals([]float64{1, 5}, []float64{2, 3})).To(Equal([]float64{1, -2}))
	})
})

var _ = Describe("TrainingPipeline", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("when creating a pipeline", func() {
		It("should reject a nil configuration", func() {
			_, err := NewTrainingPipeline(nil)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an invalid configuration", func() {
			cfg := smallConfig()
			cfg.Search.Folds = 1
			_, err := NewTrainingPipeline(&cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("folds"))
		})
	})

	Context("when training", func() {
		var (
			cfg    config.Config
			src    *memorySource
			result *TrainResult
		)

		BeforeEach(func() {
			cfg = smallConfig()
			src = millSource(40, wear)
			p, err := NewTrainingPipeline(&cfg)
			Expect(err).NotTo(HaveOccurred())
			result, err = p.Train(ctx, src)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return a fitted model with the split schema", func() {
			Expect(result.Model.Model.Fitted()).To(BeTrue())
			Expect(result.Model.Schema.Validate()).To(Succeed())
			Expect(result.Model.Schema.Columns).To(HaveLen(11))
			Expect(result.Model.Hyper).To(Equal(result.Best))
			Expect(result.Best.Validate(cfg.Search.Bounds)).To(Succeed())
		})

		It("should split the rows 32/8", func() {
			Expect(result.Split).To(Equal(v1alpha1.SplitInfo{Rows: 40, Train: 32, Test: 8}))
		})

		It("should record one history value per generation", func() {
			Expect(result.History).To(HaveLen(cfg.Search.Generations))
			Expect(result.History.NonIncreasing(0)).To(BeTrue())
			Expect(result.Generations).To(HaveLen(len(result.History)))
			last, _ := result.History.Last()
			Expect(result.BestFitness).To(BeNumerically("<=", last))
		})

		It("should produce finite test metrics", func() {
			Expect(math.IsInf(result.Metrics.MSE, 0) || math.IsNaN(result.Metrics.MSE)).To(BeFalse())
			Expect(result.Metrics.RMSE).To(BeNumerically("~", math.Sqrt(result.Metrics.MSE), 1e-12))
		})

		It("should fill a succeeded run record", func() {
			run := result.Run
			Expect(run.ID).NotTo(BeEmpty())
			Expect(run.Status.Phase).To(Equal(v1alpha1.PhaseSucceeded))
			Expect(run.Status.FinishTime).NotTo(BeNil())
			Expect(run.Status.Search.Best).To(Equal(result.Best))
			Expect(run.Status.Test).To(Equal(result.Metrics))
			for _, t := range []string{v1alpha1.TypeDataReady, v1alpha1.TypeSearchComplete, v1alpha1.TypeModelReady} {
				c, ok := run.GetCondition(t)
				Expect(ok).To(BeTrue(), t)
				Expect(c.Status).To(Equal(v1alpha1.ConditionTrue), t)
			}
		})

		It("should validate on the same test rows", func() {
			p, err := NewTrainingPipeline(&cfg)
			Expect(err).NotTo(HaveOccurred())
			v, err := p.Validate(ctx, src, result.Model)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Rows).To(HaveLen(8))
			for i := 1; i < len(v.Rows); i++ {
				Expect(v.Rows[i]).To(BeNumerically(">", v.Rows[i-1]))
			}
			Expect(v.Metrics.MSE).To(BeNumerically("~", result.Metrics.MSE, 1e-9))
			for i, r := range v.Rows {
				Expect(v.Actual[i]).To(BeNumerically("~", 0.01*float64(r), 1e-12))
				Expect(v.Residuals[i]).To(BeNumerically("~", v.Actual[i]-v.Predicted[i], 1e-12))
			}
		})

		It("should predict every row with progress milestones", func() {
			p, err := NewTrainingPipeline(&cfg)
			Expect(err).NotTo(HaveOccurred())
			var seen []int
			p.SetProgress(func(stage string, percent int) {
				Expect(stage).To(Equal("predict"))
				seen = append(seen, percent)
			})
			out, err := p.Predict(ctx, src, result.Model)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Values).To(HaveLen(40))
			Expect(out.Max).To(Equal(out.Values[out.MaxRow]))
			for _, v := range out.Values {
				Expect(v).To(BeNumerically("<=", out.Max))
			}
			Expect(seen).To(Equal([]int{5, 20, 50, 90, 100}))
		})

		It("should predict identically after an artifact round trip", func() {
			data, err := result.Model.MarshalBinary()
			Expect(err).NotTo(HaveOccurred())
			var loaded mlp.Pipeline
			Expect(loaded.UnmarshalBinary(data)).To(Succeed())

			p, err := NewTrainingPipeline(&cfg)
			Expect(err).NotTo(HaveOccurred())
			a, err := p.Predict(ctx, src, result.Model)
			Expect(err).NotTo(HaveOccurred())
			b, err := p.Predict(ctx, src, &loaded)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Values).To(Equal(a.Values))
		})

		It("should reject validation with a different feature layout", func() {
			other := cfg
			other.Features.Categories = []string{"1", "2", "3"}
			p, err := NewTrainingPipeline(&other)
			Expect(err).NotTo(HaveOccurred())
			_, err = p.Validate(ctx, src, result.Model)
			Expect(errors.Is(err, features.ErrDataError)).To(BeTrue())
		})
	})

	Context("when training is deterministic", func() {
		It("should reproduce the search for the same seed", func() {
			cfg := smallConfig()
			run := func(workers int) *TrainResult {
				c := cfg
				c.Search.Workers = workers
				p, err := NewTrainingPipeline(&c)
				Expect(err).NotTo(HaveOccurred())
				res, err := p.Train(ctx, millSource(30, wear))
				Expect(err).NotTo(HaveOccurred())
				return res
			}
			a, b := run(1), run(3)
			Expect(b.Best).To(Equal(a.Best))
			Expect(b.History).To(Equal(a.History))
			Expect(b.Metrics).To(Equal(a.Metrics))
			Expect(b.Run.ID).NotTo(Equal(a.Run.ID))
		})
	})

	Context("when training fails", func() {
		It("should return the failed run on a load error", func() {
			cfg := smallConfig()
			p, err := NewTrainingPipeline(&cfg)
			Expect(err).NotTo(HaveOccurred())
			_, err = p.Train(ctx, &memorySource{err: errors.New("disk on fire")})
			var runErr *RunError
			Expect(errors.As(err, &runErr)).To(BeTrue())
			Expect(runErr.Run.Status.Phase).To(Equal(v1alpha1.PhaseFailed))
			c, ok := runErr.Run.GetCondition(v1alpha1.TypeDataReady)
			Expect(ok).To(BeTrue())
			Expect(c.Reason).To(Equal(v1alpha1.ReasonDataInvalid))
		})

		It("should report a missing column as a data error", func() {
			table, err := collector.NewTable("memory", []string{"time", "VB"}, [][]string{{"1", "0.1"}})
			Expect(err).NotTo(HaveOccurred())
			cfg := smallConfig()
			p, err := NewTrainingPipeline(&cfg)
			Expect(err).NotTo(HaveOccurred())
			_, err = p.Train(ctx, &memorySource{table: table})
			Expect(errors.Is(err, features.ErrDataError)).To(BeTrue())
		})

		It("should abort when folds exceed the training rows", func() {
			cfg := smallConfig()
			cfg.Search.Folds = 10
			p, err := NewTrainingPipeline(&cfg)
			Expect(err).NotTo(HaveOccurred())
			_, err = p.Train(ctx, millSource(10, wear))
			Expect(errors.Is(err, evaluator.ErrOptimizationAbort)).To(BeTrue())
			var runErr *RunError
			Expect(errors.As(err, &runErr)).To(BeTrue())
			c, _ := runErr.Run.GetCondition(v1alpha1.TypeSearchComplete)
			Expect(c.Reason).To(Equal(v1alpha1.ReasonSearchAborted))
		})

		It("should report cancellation", func() {
			cfg := smallConfig()
			p, err := NewTrainingPipeline(&cfg)
			Expect(err).NotTo(HaveOccurred())
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err = p.Train(cctx, millSource(30, wear))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			var runErr *RunError
			Expect(errors.As(err, &runErr)).To(BeTrue())
			c, _ := runErr.Run.GetCondition(v1alpha1.TypeSearchComplete)
			Expect(c.Reason).To(Equal(v1alpha1.ReasonSearchCancelled))
		})
	})

	Context("when predicting with an unfitted model", func() {
		It("should fail", func() {
			cfg := smallConfig()
			p, err := NewTrainingPipeline(&cfg)
			Expect(err).NotTo(HaveOccurred())
			_, err = p.Predict(ctx, millSource(5, wear), &mlp.Pipeline{})
			Expect(err).To(HaveOccurred())
		})
	})
})
