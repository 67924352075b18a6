package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolcrib/vbwear/internal/collector"
	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/internal/optimizer"
	"github.com/toolcrib/vbwear/pkg/mlp"
)

func newPredictCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <dataset> <model>",
		Short: "Predict tool wear for every row of a dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)
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
			pipeline.SetProgress(func(stage string, percent int) {
				logger.V(logging.DEBUG).Info("Progress", "stage", stage, "percent", percent)
			})
			pred, err := pipeline.Predict(ctx, src, model)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "row\tVB")
			for i, v := range pred.Values {
				fmt.Fprintf(out, "%d\t%.6f\n", i, v)
			}
			fmt.Fprintf(out, "max predicted wear: %.6f (row %d)\n", pred.Max, pred.MaxRow)
			return nil
		},
	}
}
