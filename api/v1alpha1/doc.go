// Package v1alpha1 contains the serializable record of a training run.
//
// A TrainingRun pairs the configuration a run was started with (Spec) with what
// it produced (Status). Records are written as YAML summaries by the CLI and
// stored as JSON in the run registry; field names follow the JSON tags in both.
package v1alpha1
