package v1alpha1

import (
	"time"

	"sigs.k8s.io/yaml"

	"github.com/toolcrib/vbwear/pkg/config"
	"github.com/toolcrib/vbwear/pkg/core"
)

// APIVersion and Kind identify serialized TrainingRun records.
const (
	APIVersion = "vbwear.toolcrib.io/v1alpha1"
	Kind       = "TrainingRun"
)

// TrainingRunSpec is the input of a training run.
type TrainingRunSpec struct {
	// Dataset is the location the data was loaded from.
	Dataset string `json:"dataset"`

	// Config is the effective configuration after defaults, file, env and flags.
	Config config.Config `json:"config"`
}

// Metrics are regression scores on held-out rows.
type Metrics struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// SplitInfo records the size of the prepared dataset.
type SplitInfo struct {
	// Rows is the number of rows after dropping missing targets.
	Rows    int `json:"rows"`
	Dropped int `json:"dropped"`
	Train   int `json:"train"`
	Test    int `json:"test"`
}

// SearchSummary is the outcome of the hyperparameter search.
type SearchSummary struct {
	Best        core.Individual `json:"best"`
	BestFitness float64         `json:"bestFitness"`
	// History is the best cross-validated MSE of every generation.
	History             []float64 `json:"history"`
	Evaluations         int       `json:"evaluations"`
	CacheHits           int       `json:"cacheHits"`
	ConvergenceWarnings int       `json:"convergenceWarnings"`
	StoppedEarly        bool      `json:"stoppedEarly,omitempty"`
}

// RunPhase is the lifecycle position of a run.
type RunPhase string

const (
	PhasePending   RunPhase = "Pending"
	PhaseRunning   RunPhase = "Running"
	PhaseSucceeded RunPhase = "Succeeded"
	PhaseFailed    RunPhase = "Failed"
)

// ConditionStatus is True, False or Unknown.
type ConditionStatus string

const (
	ConditionTrue    ConditionStatus = "True"
	ConditionFalse   ConditionStatus = "False"
	ConditionUnknown ConditionStatus = "Unknown"
)

// Condition is one observation about a run.
type Condition struct {
	Type               string          `json:"type"`
	Status             ConditionStatus `json:"status"`
	Reason             string          `json:"reason,omitempty"`
	Message            string          `json:"message,omitempty"`
	LastTransitionTime time.Time       `json:"lastTransitionTime"`
}

// TrainingRunStatus is the output of a training run.
type TrainingRunStatus struct {
	Phase      RunPhase           `json:"phase"`
	StartTime  time.Time          `json:"startTime,omitempty"`
	FinishTime *time.Time         `json:"finishTime,omitempty"`
	Split      SplitInfo          `json:"split"`
	Search     SearchSummary      `json:"search"`
	Test       Metrics            `json:"test"`
	Schema     core.FeatureSchema `json:"schema"`
	// ModelPath is set once the artifact has been written.
	ModelPath  string      `json:"modelPath,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// TrainingRun is the record of one training run.
type TrainingRun struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	// ID is unique per run.
	ID string `json:"id"`

	Spec   TrainingRunSpec   `json:"spec"`
	Status TrainingRunStatus `json:"status,omitempty"`
}

// NewTrainingRun creates a pending run record.
func NewTrainingRun(id, dataset string, cfg config.Config) *TrainingRun {
	return &TrainingRun{
		APIVersion: APIVersion,
		Kind:       Kind,
		ID:         id,
		Spec:       TrainingRunSpec{Dataset: dataset, Config: cfg},
		Status:     TrainingRunStatus{Phase: PhasePending},
	}
}

// SetCondition adds or replaces the condition of the same type. The transition
// time only moves when the status changes.
func (r *TrainingRun) SetCondition(c Condition) {
	if c.LastTransitionTime.IsZero() {
		c.LastTransitionTime = time.Now().UTC()
	}
	for i, existing := range r.Status.Conditions {
		if existing.Type != c.Type {
			continue
		}
		if existing.Status == c.Status {
			c.LastTransitionTime = existing.LastTransitionTime
		}
		r.Status.Conditions[i] = c
		return
	}
	r.Status.Conditions = append(r.Status.Conditions, c)
}

// GetCondition returns the condition of the given type.
func (r *TrainingRun) GetCondition(conditionType string) (Condition, bool) {
	for _, c := range r.Status.Conditions {
		if c.Type == conditionType {
			return c, true
		}
	}
	return Condition{}, false
}

// ToYAML renders the run with its JSON field names.
func (r *TrainingRun) ToYAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// FromYAML parses a run rendered by ToYAML.
func FromYAML(data []byte) (*TrainingRun, error) {
	r := &TrainingRun{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Condition Types for TrainingRun
const (
	// TypeDataReady indicates whether the dataset was loaded and split
	TypeDataReady = "DataReady"
	// TypeSearchComplete indicates whether the genetic search finished
	TypeSearchComplete = "SearchComplete"
	// TypeModelReady indicates whether the final model was fitted and scored
	TypeModelReady = "ModelReady"
)

// Condition Reasons
const (
	// ReasonDataPrepared indicates the feature matrix was built
	ReasonDataPrepared = "DataPrepared"
	// ReasonDataInvalid indicates the dataset could not be turned into features
	ReasonDataInvalid = "DataInvalid"
	// ReasonSearchSucceeded indicates the search returned a winner
	ReasonSearchSucceeded = "SearchSucceeded"
	// ReasonSearchAborted indicates a fatal evaluation error ended the search
	ReasonSearchAborted = "SearchAborted"
	// ReasonSearchCancelled indicates the run was cancelled between generations
	ReasonSearchCancelled = "SearchCancelled"
	// ReasonModelFitted indicates the final model was trained on the training split
	ReasonModelFitted = "ModelFitted"
	// ReasonNotConverged indicates the final fit hit its iteration cap
	ReasonNotConverged = "NotConverged"
)
