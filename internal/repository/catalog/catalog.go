// Package catalog provides the data sources the catalog service reads
// contracts and products from.
package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
)

// snapshot is an immutable in-memory catalog shared by the sources.
type snapshot struct {
	contracts []contract.Contract
	products  []product.Product
	byID      map[string]int
}

func newSnapshot(contracts []contract.Contract, products []product.Product) (*snapshot, error) {
	byID := make(map[string]int, len(contracts))
	for i := range contracts {
		id := contracts[i].ID
		if id == "" {
			return nil, fmt.Errorf("contract %d: missing id", i)
		}
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate contract id %q", id)
		}
		byID[id] = i
	}
	return &snapshot{contracts: contracts, products: products, byID: byID}, nil
}

func (s *snapshot) listContracts() []contract.Contract { return slices.Clone(s.contracts) }

func (s *snapshot) listProducts() []product.Product { return slices.Clone(s.products) }

func (s *snapshot) getContract(id string) (contract.Contract, error) {
	i, ok := s.byID[id]
	if !ok {
		return contract.Contract{}, fmt.Errorf("contract %q: %w", id, domain.ErrNotFound)
	}
	return s.contracts[i], nil
}

func (s *snapshot) productsByContract(id string) []product.Product {
	return product.ForContract(s.products, id)
}

func ctxErr(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
