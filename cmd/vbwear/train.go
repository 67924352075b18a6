package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/toolcrib/vbwear/api/v1alpha1"
	"github.com/toolcrib/vbwear/internal/actuator"
	"github.com/toolcrib/vbwear/internal/collector"
	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/internal/optimizer"
	"github.com/toolcrib/vbwear/internal/report"
	"github.com/toolcrib/vbwear/internal/store"
)

const defaultModelPath = "wear_model.bin"

type trainOptions struct {
	modelPath   string
	historyPlot string
	summary     string
	metricsOut  string
	storePath   string
}

func newTrainCommand(opts *options) *cobra.Command {
	to := &trainOptions{}
	cmd := &cobra.Command{
		Use:   "train <dataset>",
		Short: "Search hyperparameters, fit the final model and score it on the test split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, opts, to, args[0])
		},
	}
	cmd.Flags().StringVar(&to.modelPath, "model", defaultModelPath, "model artifact output path")
	cmd.Flags().StringVar(&to.historyPlot, "history-plot", "", "write the fitness history chart to this PNG")
	cmd.Flags().StringVar(&to.summary, "summary", "", "write the run record as YAML to this path")
	cmd.Flags().StringVar(&to.metricsOut, "metrics-out", "", "write run metrics in Prometheus text format to this path")
	cmd.Flags().StringVar(&to.storePath, "store", "", "record the run in this SQLite run registry")
	return cmd
}

func runTrain(cmd *cobra.Command, opts *options, to *trainOptions, dataset string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	out := cmd.OutOrStdout()

	src, err := collector.NewSource(dataset)
	if err != nil {
		return err
	}
	pipeline, err := optimizer.NewTrainingPipeline(opts.config)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	pipeline.SetRunID(runID)
	emitter := actuator.NewMetricsEmitter(runID)
	pipeline.AddObserver(emitter)
	pipeline.SetProgress(emitter.SetProgress)

	var runs *store.Store
	if to.storePath != "" {
		if runs, err = store.Open(ctx, to.storePath); err != nil {
			return err
		}
		defer runs.Close()
	}

	result, err := pipeline.Train(ctx, src)
	if err != nil {
		var runErr *optimizer.RunError
		if runs != nil && errors.As(err, &runErr) {
			if serr := runs.Save(ctx, runErr.Run, nil); serr != nil {
				logger.Error(serr, "Failed to record failed run", "runID", runID)
			}
		}
		return err
	}
	run := result.Run

	if err := result.Model.SaveFile(to.modelPath); err != nil {
		return err
	}
	run.Status.ModelPath = to.modelPath
	logger.Info("Model saved", "path", to.modelPath)

	emitter.ObserveTest(result.Metrics)
	emitter.AddConvergenceWarnings(run.Status.Search.ConvergenceWarnings - searchWarnings(result))

	if to.historyPlot != "" {
		if err := report.HistoryPlot(result.History, to.historyPlot); err != nil {
			return err
		}
	}
	if to.summary != "" {
		data, err := run.ToYAML()
		if err != nil {
			return err
		}
		if err := os.WriteFile(to.summary, data, 0o644); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	if to.metricsOut != "" {
		if err := emitter.WriteFile(to.metricsOut); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	if runs != nil {
		artifact, err := result.Model.MarshalBinary()
		if err != nil {
			return err
		}
		if err := runs.Save(ctx, run, artifact); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "run:        %s\n", run.ID)
	fmt.Fprintf(out, "best:       %s\n", result.Best)
	fmt.Fprintf(out, "cv mse:     %.6f\n", result.BestFitness)
	fmt.Fprintf(out, "test rmse:  %.6f\n", result.Metrics.RMSE)
	fmt.Fprintf(out, "test r2:    %.4f\n", result.Metrics.R2)
	if c, ok := run.GetCondition(v1alpha1.TypeModelReady); ok && c.Reason == v1alpha1.ReasonNotConverged {
		fmt.Fprintf(out, "warning:    %s\n", c.Message)
	}
	return nil
}

// searchWarnings counts the warnings already reported per generation.
func searchWarnings(result *optimizer.TrainResult) int {
	n := 0
	for _, g := range result.Generations {
		n += g.Warnings
	}
	return n
}
