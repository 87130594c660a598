package product

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
)

// Section is a free-form configuration block (source, target, endpoint).
// A nil Section means the block was not declared.
type Section map[string]any

// scalarSectionKey holds the value of a section written as a bare scalar,
// e.g. "source": "s3://raw/events".
const scalarSectionKey = "uri"

// UnmarshalJSON accepts an object or a bare scalar shorthand.
func (s *Section) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode section: %w", err)
		}
		*s = m
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode section: %w", err)
	}
	*s = Section{scalarSectionKey: v}
	return nil
}

// UnmarshalYAML accepts a mapping or a bare scalar shorthand.
func (s *Section) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("decode section: %w", err)
		}
		if m == nil {
			m = map[string]any{}
		}
		*s = m
		return nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("decode section: %w", err)
	}
	*s = Section{scalarSectionKey: v}
	return nil
}

// Model describes the model a pipeline trains, runs or serves.
type Model struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Version      string `json:"version,omitempty" yaml:"version,omitempty"`
	Framework    string `json:"framework,omitempty" yaml:"framework,omitempty"`
	ArtifactPath string `json:"artifact_path,omitempty" yaml:"artifact_path,omitempty"`
}

type modelFields Model

// UnmarshalJSON accepts an object or a bare model name.
func (m *Model) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &m.Name) //nolint:wrapcheck // plain string decode
	}
	var f modelFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}
	*m = Model(f)
	return nil
}

// UnmarshalYAML accepts a mapping or a bare model name.
func (m *Model) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		m.Name = node.Value
		return nil
	}
	var f modelFields
	if err := node.Decode(&f); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}
	*m = Model(f)
	return nil
}

// Config is the pipeline configuration; each pipeline type has its own variant.
type Config interface {
	PipelineType() pipeline.Type
}

// IngestionConfig lands raw data from a source into a target table.
type IngestionConfig struct {
	Source Section `json:"source,omitempty" yaml:"source,omitempty"`
	Target Section `json:"target,omitempty" yaml:"target,omitempty"`
}

// ProcessingConfig transforms sources into a single target table.
type ProcessingConfig struct {
	Source Section `json:"source,omitempty" yaml:"source,omitempty"`
	Target Section `json:"target,omitempty" yaml:"target,omitempty"`
}

// InferenceConfig runs a model over a source and writes predictions to a target.
type InferenceConfig struct {
	Source Section `json:"source,omitempty" yaml:"source,omitempty"`
	Model  *Model  `json:"model,omitempty" yaml:"model,omitempty"`
	Target Section `json:"target,omitempty" yaml:"target,omitempty"`
}

// TrainingConfig trains a model; its output is the model artifact, not a table.
type TrainingConfig struct {
	Source Section `json:"source,omitempty" yaml:"source,omitempty"`
	Model  *Model  `json:"model,omitempty" yaml:"model,omitempty"`
}

// ServingConfig exposes a model behind an endpoint. Target is an optional logging table.
type ServingConfig struct {
	Model    *Model  `json:"model,omitempty" yaml:"model,omitempty"`
	Endpoint Section `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Target   Section `json:"target,omitempty" yaml:"target,omitempty"`
}

// PipelineType implements Config.
func (IngestionConfig) PipelineType() pipeline.Type { return pipeline.Ingestion }

// PipelineType implements Config.
func (ProcessingConfig) PipelineType() pipeline.Type { return pipeline.Processing }

// PipelineType implements Config.
func (InferenceConfig) PipelineType() pipeline.Type { return pipeline.ModelInference }

// PipelineType implements Config.
func (TrainingConfig) PipelineType() pipeline.Type { return pipeline.ModelTraining }

// PipelineType implements Config.
func (ServingConfig) PipelineType() pipeline.Type { return pipeline.ModelServing }

// newConfig returns an empty variant for t, or nil for unset/unknown types.
func newConfig(t pipeline.Type) Config {
	switch t {
	case pipeline.Ingestion:
		return &IngestionConfig{}
	case pipeline.Processing:
		return &ProcessingConfig{}
	case pipeline.ModelInference:
		return &InferenceConfig{}
	case pipeline.ModelTraining:
		return &TrainingConfig{}
	case pipeline.ModelServing:
		return &ServingConfig{}
	default:
		return nil
	}
}

// Normalize returns the value form of c. Pointer variants satisfy Config too,
// so callers building products in code may pass either; a nil pointer yields nil.
func Normalize(c Config) Config {
	switch v := c.(type) {
	case *IngestionConfig:
		if v == nil {
			return nil
		}
		return *v
	case *ProcessingConfig:
		if v == nil {
			return nil
		}
		return *v
	case *InferenceConfig:
		if v == nil {
			return nil
		}
		return *v
	case *TrainingConfig:
		if v == nil {
			return nil
		}
		return *v
	case *ServingConfig:
		if v == nil {
			return nil
		}
		return *v
	}
	return c
}

// DecodeJSONConfig decodes raw JSON into the variant selected by t.
// Unset or unknown types and empty payloads yield a nil Config.
func DecodeJSONConfig(t pipeline.Type, raw json.RawMessage) (Config, error) {
	target := newConfig(t)
	if target == nil || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", t, err)
	}
	return Normalize(target), nil
}

// DecodeYAMLConfig decodes a YAML node into the variant selected by t.
func DecodeYAMLConfig(t pipeline.Type, node *yaml.Node) (Config, error) {
	target := newConfig(t)
	if target == nil || node == nil || node.Kind == 0 {
		return nil, nil
	}
	if err := node.Decode(target); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", t, err)
	}
	return Normalize(target), nil
}
