package mlp

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/toolcrib/vbwear/pkg/core"
)

const (
	artifactMagic   = "VBWM"
	artifactVersion = 1
)

// ErrBadArtifact is returned for blobs that are not model artifacts.
var ErrBadArtifact = errors.New("not a model artifact")

type artifact struct {
	Magic   string
	Version int
	Schema  core.FeatureSchema
	Hyper   core.Individual
	Params  Params
	Info    FitInfo

	Mean, Scale []float64

	Inputs     int
	W1, B1, W2 []float64
	B2         float64
}

// MarshalBinary encodes a fitted pipeline.
func (p *Pipeline) MarshalBinary() ([]byte, error) {
	if p.Scaler == nil || p.Model == nil || !p.Model.Fitted() || p.Scaler.Mean == nil {
		return nil, errNotFitted
	}
	if err := p.Schema.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	a := artifact{
		Magic:   artifactMagic,
		Version: artifactVersion,
		Schema:  p.Schema,
		Hyper:   p.Hyper,
		Params:  p.Model.Params,
		Info:    p.Info,
		Mean:    p.Scaler.Mean,
		Scale:   p.Scaler.Scale,
		Inputs:  p.Model.inputs,
		W1:      p.Model.w1,
		B1:      p.Model.b1,
		W2:      p.Model.w2,
		B2:      p.Model.b2,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&a); err != nil {
		return nil, fmt.Errorf("encoding model: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes an artifact written by MarshalBinary. The embedded
// schema must be valid for the current feature layout rules.
func (p *Pipeline) UnmarshalBinary(data []byte) error {
	var a artifact
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&a); err != nil {
		return fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	if a.Magic != artifactMagic {
		return ErrBadArtifact
	}
	if a.Version != artifactVersion {
		return fmt.Errorf("%w: unsupported artifact version %d", ErrBadArtifact, a.Version)
	}
	if err := a.Schema.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	h := a.Params.HiddenUnits
	if a.Inputs != a.Schema.Width() || len(a.W1) != a.Inputs*h || len(a.B1) != h || len(a.W2) != h ||
		len(a.Mean) != a.Inputs || len(a.Scale) != a.Inputs {
		return fmt.Errorf("%w: inconsistent weight shapes", ErrBadArtifact)
	}
	p.Schema = a.Schema
	p.Hyper = a.Hyper
	p.Info = a.Info
	p.Scaler = &StandardScaler{Mean: a.Mean, Scale: a.Scale}
	p.Model = &Regressor{
		Params: a.Params,
		inputs: a.Inputs,
		w1:     a.W1,
		b1:     a.B1,
		w2:     a.W2,
		b2:     a.B2,
	}
	return nil
}

// Save writes the pipeline to w.
func (p *Pipeline) Save(w io.Writer) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Load reads a pipeline written by Save.
func Load(r io.Reader) (*Pipeline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{}
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveFile writes the pipeline to path.
func (p *Pipeline) SaveFile(path string) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a pipeline from path.
func LoadFile(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}
