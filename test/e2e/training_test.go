package e2e

import (
	"context"
	"math"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/toolcrib/vbwear/api/v1alpha1"
	"github.com/toolcrib/vbwear/internal/actuator"
	"github.com/toolcrib/vbwear/internal/collector"
	"github.com/toolcrib/vbwear/internal/optimizer"
	"github.com/toolcrib/vbwear/internal/report"
	"github.com/toolcrib/vbwear/internal/store"
	"github.com/toolcrib/vbwear/pkg/config"
	"github.com/toolcrib/vbwear/pkg/mlp"
)

func scenarioConfig() config.Config {
	cfg := config.Default()
	cfg.Search.PopulationSize = 10
	cfg.Search.Generations = 5
	return cfg
}

var _ = Describe("Training a wear model on synthetic milling data", Ordered, func() {
	var (
		ctx     context.Context
		cfg     config.Config
		dataset string
		src     collector.Source
		result  *optimizer.TrainResult
		emitter *actuator.MetricsEmitter
	)

	BeforeAll(func() {
		ctx = context.Background()
		cfg = scenarioConfig()
		dataset = writeMillCSV("mill.csv", 100, []string{"1", "2"})

		var err error
		src, err = collector.NewSource(dataset)
		Expect(err).NotTo(HaveOccurred())

		pipeline, err := optimizer.NewTrainingPipeline(&cfg)
		Expect(err).NotTo(HaveOccurred())
		emitter = actuator.NewMetricsEmitter("e2e")
		pipeline.AddObserver(emitter)
		pipeline.SetProgress(emitter.SetProgress)

		result, err = pipeline.Train(ctx, src)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should complete the search with a monotone history", func() {
		Expect(result.History).To(HaveLen(cfg.Search.Generations))
		for i := 1; i < len(result.History); i++ {
			Expect(result.History[i]).To(BeNumerically("<=", result.History[i-1]))
		}
		Expect(result.Best.Validate(cfg.Search.Bounds)).To(Succeed())
		Expect(result.Run.Status.Phase).To(Equal(v1alpha1.PhaseSucceeded))
	})

	It("should hold out 20 rows and score the test split with r2 >= 0", func() {
		Expect(result.Split.Train).To(Equal(80))
		Expect(result.Split.Test).To(Equal(20))
		Expect(result.Metrics.R2).To(BeNumerically(">=", 0))
		Expect(math.IsNaN(result.Metrics.RMSE)).To(BeFalse())
	})

	It("should predict a training row within 20% of its wear", func() {
		pipeline, err := optimizer.NewTrainingPipeline(&cfg)
		Expect(err).NotTo(HaveOccurred())
		validation, err := pipeline.Validate(ctx, src, result.Model)
		Expect(err).NotTo(HaveOccurred())
		test := map[int]bool{}
		for _, r := range validation.Rows {
			test[r] = true
		}
		row := -1
		for r := 80; r >= 50; r-- {
			if !test[r] {
				row = r
				break
			}
		}
		Expect(row).To(BeNumerically(">=", 50))

		pred, err := pipeline.Predict(ctx, src, result.Model)
		Expect(err).NotTo(HaveOccurred())
		want := wearVB(row)
		Expect(pred.Values[row]).To(BeNumerically("~", want, 0.2*want))
	})

	It("should reproduce predictions from the saved artifact", func() {
		path := filepath.Join(workDir, "wear_model.bin")
		Expect(result.Model.SaveFile(path)).To(Succeed())
		loaded, err := mlp.LoadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Schema.Equal(result.Model.Schema)).To(BeTrue())

		pipeline, err := optimizer.NewTrainingPipeline(&cfg)
		Expect(err).NotTo(HaveOccurred())
		a, err := pipeline.Predict(ctx, src, result.Model)
		Expect(err).NotTo(HaveOccurred())
		b, err := pipeline.Predict(ctx, src, loaded)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Values).To(Equal(a.Values))
	})

	It("should export metrics, plots and the run record", func() {
		emitter.ObserveTest(result.Metrics)
		Expect(emitter.WriteFile(filepath.Join(workDir, "metrics.prom"))).To(Succeed())
		Expect(report.HistoryPlot(result.History, filepath.Join(workDir, "history.png"))).To(Succeed())

		runs, err := store.Open(ctx, filepath.Join(workDir, "runs.db"))
		Expect(err).NotTo(HaveOccurred())
		defer runs.Close()
		artifact, err := result.Model.MarshalBinary()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs.Save(ctx, result.Run, artifact)).To(Succeed())

		got, err := runs.Get(ctx, result.Run.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Status.Search.Best).To(Equal(result.Best))

		stored, err := runs.Artifact(ctx, result.Run.ID)
		Expect(err).NotTo(HaveOccurred())
		var restored mlp.Pipeline
		Expect(restored.UnmarshalBinary(stored)).To(Succeed())
	})
})

var _ = Describe("Training with an unlisted material value", func() {
	It("should encode material 3 as all-zero indicators and still train", func() {
		ctx := context.Background()
		cfg := scenarioConfig()
		cfg.Search.PopulationSize = 4
		cfg.Search.Generations = 2
		cfg.Search.SearchMaxIter = 50
		cfg.Search.FinalMaxIter = 100

		src, err := collector.NewSource(writeMillCSV("mill_material3.csv", 60, []string{"1", "2", "3"}))
		Expect(err).NotTo(HaveOccurred())
		pipeline, err := optimizer.NewTrainingPipeline(&cfg)
		Expect(err).NotTo(HaveOccurred())
		result, err := pipeline.Train(ctx, src)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Model.Schema.Columns).To(HaveLen(11))
		Expect(result.Model.Schema.Categories).To(Equal([]string{"1", "2"}))

		pred, err := pipeline.Predict(ctx, src, result.Model)
		Expect(err).NotTo(HaveOccurred())
		Expect(pred.Values).To(HaveLen(60))
		for _, v := range pred.Values {
			Expect(math.IsNaN(v)).To(BeFalse())
		}
	})
})
