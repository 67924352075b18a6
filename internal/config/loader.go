// Package config loads the run configuration from defaults, a YAML file,
// VBWEAR_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/toolcrib/vbwear/internal/logging"
	runconfig "github.com/toolcrib/vbwear/pkg/config"
)

// EnvPrefix prefixes every environment override, e.g. VBWEAR_SEARCH_GENERATIONS.
const EnvPrefix = "VBWEAR"

// flagKeys maps a command-line flag to the configuration key it overrides.
var flagKeys = map[string]string{
	"seed":            "seed",
	"model-seed":      "modelSeed",
	"population-size": "search.populationSize",
	"generations":     "search.generations",
	"mutation-rate":   "search.mutationRate",
	"folds":           "search.folds",
	"search-max-iter": "search.searchMaxIter",
	"final-max-iter":  "search.finalMaxIter",
	"workers":         "search.workers",
	"test-fraction":   "features.testFraction",
	"verbosity":       "logging.verbosity",
}

// RegisterFlags adds the configuration flags to fs. Their defaults only apply
// when the flag is set explicitly.
func RegisterFlags(fs *pflag.FlagSet) {
	d := runconfig.Default()
	fs.Uint64("seed", d.Seed, "seed of the train/test split and the genetic search")
	fs.Uint64("model-seed", d.ModelSeed, "seed of the network weight initialisation")
	fs.Int("population-size", d.Search.PopulationSize, "individuals per generation")
	fs.Int("generations", d.Search.Generations, "number of generations")
	fs.Float64("mutation-rate", d.Search.MutationRate, "per-trait mutation probability")
	fs.Int("folds", d.Search.Folds, "cross-validation folds of the fitness function")
	fs.Int("search-max-iter", d.Search.SearchMaxIter, "epoch cap of fits inside the search")
	fs.Int("final-max-iter", d.Search.FinalMaxIter, "epoch cap of the final fit")
	fs.Int("workers", d.Search.Workers, "concurrent fitness evaluations (0 = number of CPUs)")
	fs.Float64("test-fraction", d.Features.TestFraction, "share of rows held out for testing")
	fs.IntP("verbosity", "v", d.Logging.Verbosity, "log verbosity (0 info, 1 debug, 2 trace)")
}

// Load builds and validates the configuration. path and flags are optional.
func Load(flags *pflag.FlagSet, path string) (*runconfig.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults, err := Dump(runconfig.Default())
	if err != nil {
		return nil, err
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("reading defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &runconfig.Config{}
	if err := v.UnmarshalExact(cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Default().V(logging.DEBUG).Info("Loaded configuration",
		"file", path,
		"seed", cfg.Seed,
		"populationSize", cfg.Search.PopulationSize,
		"generations", cfg.Search.Generations,
		"folds", cfg.Search.Folds)
	return cfg, nil
}

// Dump renders cfg as YAML in the layout Load reads.
func Dump(cfg runconfig.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
