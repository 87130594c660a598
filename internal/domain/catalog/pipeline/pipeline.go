package pipeline

import (
	"fmt"
	"strings"
)

// Type is the kind of computational process a data product implements.
type Type string

// Pipeline type constants.
const (
	Ingestion      Type = "ingestion"
	Processing     Type = "processing"
	ModelInference Type = "model_inference"
	ModelTraining  Type = "model_training"
	ModelServing   Type = "model_serving"
)

// All lists every known pipeline type.
func All() []Type {
	return []Type{Ingestion, Processing, ModelInference, ModelTraining, ModelServing}
}

// IsValid checks if the pipeline type is one of the supported values.
func (t Type) IsValid() bool {
	switch t {
	case Ingestion, Processing, ModelInference, ModelTraining, ModelServing:
		return true
	}
	return false
}

// IsSet reports whether a pipeline type was declared at all.
func (t Type) IsSet() bool { return t != "" }

func (t Type) String() string { return string(t) }

// Parse resolves a pipeline type name, accepting dashes for underscores.
func Parse(s string) (Type, error) {
	t := Type(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown pipeline type %q", s)
	}
	return t, nil
}
