package validation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/compat"
	domval "github.com/kailas-cloud/catalogd/internal/domain/validation"
	logpkg "github.com/kailas-cloud/catalogd/internal/logger"
	"github.com/kailas-cloud/catalogd/internal/metrics"
)

// Service runs compatibility validation for submitted or stored contracts.
type Service struct {
	source Source
}

// New creates a validation service. source can be nil when only
// submitted contracts are validated.
func New(source Source) *Service {
	return &Service{source: source}
}

// Validate checks c and its products. The outcome is always data;
// an invalid contract is not an error.
func (s *Service) Validate(ctx context.Context, c *contract.Contract, products []product.Product) domval.Result {
	res := compat.ValidateDataContractWithProducts(c, products)

	outcome := "valid"
	if !res.Valid {
		outcome = "invalid"
	}
	metrics.ValidationsTotal.WithLabelValues(outcome).Inc()

	logpkg.FromContext(ctx).Debug("contract validated",
		zap.String("contract_id", c.ID),
		zap.Bool("valid", res.Valid),
		zap.Int("errors", len(res.Errors)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res
}

// ValidateContract loads the stored contract id with its products and validates them.
func (s *Service) ValidateContract(ctx context.Context, id string) (domval.Result, error) {
	if s.source == nil {
		return domval.Result{}, fmt.Errorf("validate contract %q: no data source configured", id)
	}

	c, err := s.source.GetContract(ctx, id)
	if err != nil {
		return domval.Result{}, fmt.Errorf("get contract: %w", err)
	}
	products, err := s.source.ListProductsByContract(ctx, id)
	if err != nil {
		return domval.Result{}, fmt.Errorf("list products: %w", err)
	}
	return s.Validate(ctx, &c, products), nil
}

// Recommendations lists the pipeline types allowed for l.
func (s *Service) Recommendations(l layer.Layer) []pipeline.Type {
	return compat.RecommendedPipelineTypes(l)
}

// LayerSuggestions lists the layers that accept t.
func (s *Service) LayerSuggestions(t pipeline.Type) []layer.Layer {
	return compat.SuggestLayersForPipelineType(t)
}
