package catalogd

import (
	"context"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
	"github.com/kailas-cloud/catalogd/internal/domain/search/request"
	"github.com/kailas-cloud/catalogd/internal/domain/search/result"
	domval "github.com/kailas-cloud/catalogd/internal/domain/validation"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn     func(ctx context.Context, req *request.Request) ([]result.Result, error)
	suggestFn    func(ctx context.Context, partial string) ([]result.Suggestion, error)
	buildFn      func(ctx context.Context) (index.Stats, error)
	stats        index.Stats
	invalidateFn func(ctx context.Context) error
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) Suggestions(ctx context.Context, partial string) ([]result.Suggestion, error) {
	return m.suggestFn(ctx, partial)
}

func (m *mockSearchUC) BuildIndex(ctx context.Context) (index.Stats, error) {
	return m.buildFn(ctx)
}

func (m *mockSearchUC) Stats() index.Stats { return m.stats }

func (m *mockSearchUC) Invalidate(ctx context.Context) error {
	return m.invalidateFn(ctx)
}

// --- validationUseCase mock ---

type mockValidationUC struct {
	validateFn         func(ctx context.Context, c *contract.Contract, products []product.Product) domval.Result
	validateContractFn func(ctx context.Context, id string) (domval.Result, error)
}

func (m *mockValidationUC) Validate(
	ctx context.Context, c *contract.Contract, products []product.Product,
) domval.Result {
	return m.validateFn(ctx, c, products)
}

func (m *mockValidationUC) ValidateContract(ctx context.Context, id string) (domval.Result, error) {
	return m.validateContractFn(ctx, id)
}

func (m *mockValidationUC) Recommendations(l layer.Layer) []pipeline.Type {
	if l == layer.Bronze {
		return []pipeline.Type{pipeline.Ingestion}
	}
	return []pipeline.Type{}
}

func (m *mockValidationUC) LayerSuggestions(t pipeline.Type) []layer.Layer {
	if t == pipeline.ModelTraining {
		return []layer.Layer{layer.Model}
	}
	return []layer.Layer{}
}
