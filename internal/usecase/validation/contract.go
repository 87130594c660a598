package validation

import (
	"context"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
)

// Source loads stored catalog records for validation.
// GetContract returns domain.ErrNotFound for an unknown id.
type Source interface {
	GetContract(ctx context.Context, id string) (contract.Contract, error)
	ListProductsByContract(ctx context.Context, contractID string) ([]product.Product, error)
}
