// Package compat holds the static layer/pipeline business rules and the
// validators built on them. Every function is pure and never fails.
package compat

import (
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
)

// allowedPipelines is the fixed layer -> pipeline type table.
var allowedPipelines = map[layer.Layer][]pipeline.Type{
	layer.Bronze: {pipeline.Ingestion},
	layer.Silver: {pipeline.Processing, pipeline.ModelInference, pipeline.ModelServing},
	layer.Gold:   {pipeline.Processing, pipeline.ModelInference, pipeline.ModelServing},
	layer.Model:  {pipeline.ModelTraining},
}

// RecommendedPipelineTypes returns the pipeline types legal for l.
// Unknown layers yield an empty slice.
func RecommendedPipelineTypes(l layer.Layer) []pipeline.Type {
	allowed := allowedPipelines[l]
	out := make([]pipeline.Type, len(allowed))
	copy(out, allowed)
	return out
}

// SuggestLayersForPipelineType returns the layers on which t is legal, in layer order.
// Unknown pipeline types yield an empty slice.
func SuggestLayersForPipelineType(t pipeline.Type) []layer.Layer {
	out := []layer.Layer{}
	for _, l := range layer.All() {
		if isAllowed(l, t) {
			out = append(out, l)
		}
	}
	return out
}

func isAllowed(l layer.Layer, t pipeline.Type) bool {
	for _, a := range allowedPipelines[l] {
		if a == t {
			return true
		}
	}
	return false
}
