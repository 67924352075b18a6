package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolcrib/vbwear/internal/collector"
	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/internal/optimizer"
	"github.com/toolcrib/vbwear/internal/report"
	"github.com/toolcrib/vbwear/pkg/mlp"
)

func newValidateCommand(opts *options) *cobra.Command {
	var plotsDir string
	cmd := &cobra.Command{
		Use:   "validate <dataset> <model>",
		Short: "Score a model on the test split of a dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := collector.NewSource(args[0])
			if err != nil {
				return err
			}
			model, err := mlp.LoadFile(args[1])
			if err != nil {
				return err
			}
			pipeline, err := optimizer.NewTrainingPipeline(opts.config)
			if err != nil {
				return err
			}
			res, err := pipeline.Validate(ctx, src, model)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rows: %d\n", len(res.Rows))
			fmt.Fprintf(out, "rmse: %.6f\n", res.Metrics.RMSE)
			fmt.Fprintf(out, "mae:  %.6f\n", res.Metrics.MAE)
			fmt.Fprintf(out, "r2:   %.4f\n", res.Metrics.R2)

			if plotsDir != "" {
				paths, err := report.ValidationPlots(plotsDir, res.Rows, res.Actual, res.Predicted, res.Residuals)
				if err != nil {
					return err
				}
				logging.FromContext(ctx).Info("Wrote validation plots", "paths", paths)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&plotsDir, "plots-dir", "", "write validation charts into this directory")
	return cmd
}
