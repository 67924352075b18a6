package actuator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/toolcrib/vbwear/api/v1alpha1"
	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/pkg/core"
)

const namespace = "vbwear"

// MetricsEmitter records run metrics into its own registry.
type MetricsEmitter struct {
	registry *prometheus.Registry

	generation          prometheus.Gauge
	bestFitness         prometheus.Gauge
	meanFitness         prometheus.Gauge
	evaluations         prometheus.Counter
	cacheHits           prometheus.Counter
	convergenceWarnings prometheus.Counter
	testScore           *prometheus.GaugeVec
	progress            *prometheus.GaugeVec
}

// NewMetricsEmitter creates an emitter whose metrics carry the run_id label.
func NewMetricsEmitter(runID string) *MetricsEmitter {
	labels := prometheus.Labels{"run_id": runID}
	e := &MetricsEmitter{
		registry: prometheus.NewRegistry(),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "search", Name: "generation",
			Help: "Last completed generation of the genetic search.", ConstLabels: labels,
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "search", Name: "best_fitness",
			Help: "Best cross-validated MSE of the last generation.", ConstLabels: labels,
		}),
		meanFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "search", Name: "mean_fitness",
			Help: "Mean cross-validated MSE of the last generation.", ConstLabels: labels,
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "search", Name: "evaluations_total",
			Help: "Fitness evaluations that trained models.", ConstLabels: labels,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "search", Name: "cache_hits_total",
			Help: "Fitness evaluations served from the cache.", ConstLabels: labels,
		}),
		convergenceWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "convergence_warnings_total",
			Help: "Fits that stopped at their iteration cap.", ConstLabels: labels,
		}),
		testScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "test_score",
			Help: "Held-out score of the final model.", ConstLabels: labels,
		}, []string{"metric"}),
		progress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "progress_percent",
			Help: "Progress of the running pipeline stage.", ConstLabels: labels,
		}, []string{"stage"}),
	}
	e.registry.MustRegister(
		e.generation, e.bestFitness, e.meanFitness,
		e.evaluations, e.cacheHits, e.convergenceWarnings,
		e.testScore, e.progress,
	)
	return e
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (e *MetricsEmitter) Registry() *prometheus.Registry {
	return e.registry
}

// OnGeneration updates the search metrics from one generation.
func (e *MetricsEmitter) OnGeneration(ctx context.Context, stats core.GenerationStats) {
	e.generation.Set(float64(stats.Generation))
	e.bestFitness.Set(stats.Best)
	e.meanFitness.Set(stats.Mean)
	e.evaluations.Add(float64(stats.Evaluations))
	e.cacheHits.Add(float64(stats.CacheHits))
	e.convergenceWarnings.Add(float64(stats.Warnings))
	logging.FromContext(ctx).V(logging.TRACE).Info("Emitted generation metrics", "generation", stats.Generation)
}

// AddConvergenceWarnings counts warnings raised outside the search.
func (e *MetricsEmitter) AddConvergenceWarnings(n int) {
	e.convergenceWarnings.Add(float64(n))
}

// ObserveTest records the held-out scores of the final model.
func (e *MetricsEmitter) ObserveTest(m v1alpha1.Metrics) {
	e.testScore.WithLabelValues("mse").Set(m.MSE)
	e.testScore.WithLabelValues("rmse").Set(m.RMSE)
	e.testScore.WithLabelValues("mae").Set(m.MAE)
	e.testScore.WithLabelValues("r2").Set(m.R2)
}

// SetProgress records the completion percentage of a stage.
func (e *MetricsEmitter) SetProgress(stage string, percent int) {
	e.progress.WithLabelValues(stage).Set(float64(percent))
}

// WriteText writes all metrics in the Prometheus text format.
func (e *MetricsEmitter) WriteText(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encoding metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile writes the text format to path.
func (e *MetricsEmitter) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := e.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
