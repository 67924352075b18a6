package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/toolcrib/vbwear/internal/store"
)

const defaultStorePath = "vbwear_runs.db"

func newRunsCommand(_ *options) *cobra.Command {
	var storePath string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run registry",
	}
	cmd.PersistentFlags().StringVar(&storePath, "store", defaultStorePath, "SQLite run registry")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runs, err := store.Open(ctx, storePath)
			if err != nil {
				return err
			}
			defer runs.Close()
			summaries, err := runs.List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tPHASE\tCV MSE\tTEST RMSE\tMODEL\tDATASET")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.6f\t%.6f\t%t\t%s\n",
					s.ID, s.StartTime.Format(time.RFC3339), s.Phase, s.BestFitness, s.TestRMSE, s.HasModel, s.Dataset)
			}
			return w.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the record of one run as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runs, err := store.Open(ctx, storePath)
			if err != nil {
				return err
			}
			defer runs.Close()
			run, err := runs.Get(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := run.ToYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
