package search

import (
	"context"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
)

// DataSource provides the catalog entities the index is built from.
type DataSource interface {
	ListContracts(ctx context.Context) ([]contract.Contract, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
}

// SnapshotStore shares built indexes between replicas. Implementations expire
// snapshots on their own; Load reports ok=false when nothing is stored.
type SnapshotStore interface {
	Load(ctx context.Context) (index.Index, bool, error)
	Save(ctx context.Context, idx *index.Index) error
	Delete(ctx context.Context) error
}

// Expander returns extra semantic terms for a normalized query.
type Expander interface {
	Expand(ctx context.Context, query string) ([]string, error)
}
