package catalogd

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
)

// ValidationService checks layer, pipeline and technology compatibility.
type ValidationService struct {
	svc validationUseCase
	obs *observer
}

// Validate checks c and those of products built against it.
// An invalid contract is reported in the result, never as an error.
func (s *ValidationService) Validate(ctx context.Context, c *Contract, products []Product) ValidationResult {
	start := time.Now()
	res := s.svc.Validate(ctx, c, products)
	s.obs.observe("validate", start, nil)
	return res
}

// ValidateContract validates a contract stored in the data source.
func (s *ValidationService) ValidateContract(ctx context.Context, id string) (_ ValidationResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("validate_contract", start, err) }()

	res, err := s.svc.ValidateContract(ctx, id)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("validate contract: %w", err)
	}
	return res, nil
}

// PipelineTypesFor lists the pipeline types allowed on a layer (case-insensitive).
func (s *ValidationService) PipelineTypesFor(l string) ([]PipelineType, error) {
	parsed, err := layer.Parse(l)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return s.svc.Recommendations(parsed), nil
}

// LayersFor lists the layers a pipeline type may run on.
func (s *ValidationService) LayersFor(t string) ([]Layer, error) {
	parsed, err := pipeline.Parse(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return s.svc.LayerSuggestions(parsed), nil
}
