package main

import (
	"github.com/spf13/cobra"

	internalconfig "github.com/toolcrib/vbwear/internal/config"
	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/pkg/config"
)

// options is shared by every subcommand.
type options struct {
	configFile string
	config     *config.Config
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "vbwear",
		Short:         "Tune, train and apply a tool wear (VB) regressor",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := internalconfig.Load(cmd.Flags(), opts.configFile)
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(logging.Options{
				Development: cfg.Logging.Development,
				Verbosity:   cfg.Logging.Verbosity,
				JSON:        cfg.Logging.JSON,
			})
			if err != nil {
				return err
			}
			logging.SetDefault(logger)
			cmd.SetContext(logging.IntoContext(cmd.Context(), logger))
			opts.config = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	internalconfig.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newTrainCommand(opts),
		newValidateCommand(opts),
		newPredictCommand(opts),
		newRunsCommand(opts),
		newConfigCommand(opts),
	)
	return cmd
}

func newConfigCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := internalconfig.Dump(*opts.config)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
