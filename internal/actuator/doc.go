// Package actuator emits the observable state of a training run.
//
// The actuator package turns optimizer events into Prometheus metrics. A
// MetricsEmitter observes the genetic search generation by generation, records
// the held-out scores of the final model and tracks pipeline progress. The
// metrics live in a private registry and are written out in the Prometheus text
// exposition format, for node-exporter textfile collection or ad-hoc scraping.
//
// # Metric Emission
//
//	vbwear_search_generation{run_id="..."} 41
//	vbwear_search_best_fitness{run_id="..."} 0.00213
//	vbwear_search_mean_fitness{run_id="..."} 0.0057
//	vbwear_search_evaluations_total{run_id="..."} 1215
//	vbwear_search_cache_hits_total{run_id="..."} 645
//	vbwear_convergence_warnings_total{run_id="..."} 12
//	vbwear_test_score{run_id="...",metric="rmse"} 0.046
//	vbwear_progress_percent{run_id="...",stage="search"} 50
//
// # Usage
//
//	emitter := actuator.NewMetricsEmitter(runID)
//	optimizer.AddObserver(emitter)
//	...
//	emitter.ObserveTest(metrics)
//	err := emitter.WriteFile("run.prom")
package actuator
