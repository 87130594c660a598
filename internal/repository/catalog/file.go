package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
)

// fixture is the YAML layout of a catalog file.
type fixture struct {
	Contracts []contract.Contract `yaml:"contracts"`
	Products  []product.Product   `yaml:"products"`
}

// FileSource serves a catalog loaded once from a YAML fixture file.
type FileSource struct {
	path string
	data *snapshot
}

// NewFileSource reads and parses the fixture at path.
func NewFileSource(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	data, err := parseFixture(raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	return &FileSource{path: path, data: data}, nil
}

func parseFixture(raw []byte) (*snapshot, error) {
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return newSnapshot(f.Contracts, f.Products)
}

// ListContracts returns every contract in file order.
func (s *FileSource) ListContracts(ctx context.Context) ([]contract.Contract, error) {
	if err := ctxErr(ctx, "list contracts"); err != nil {
		return nil, err
	}
	return s.data.listContracts(), nil
}

// ListProducts returns every product in file order.
func (s *FileSource) ListProducts(ctx context.Context) ([]product.Product, error) {
	if err := ctxErr(ctx, "list products"); err != nil {
		return nil, err
	}
	return s.data.listProducts(), nil
}

// GetContract returns the contract with id or domain.ErrNotFound.
func (s *FileSource) GetContract(ctx context.Context, id string) (contract.Contract, error) {
	if err := ctxErr(ctx, "get contract"); err != nil {
		return contract.Contract{}, err
	}
	return s.data.getContract(id)
}

// ListProductsByContract returns the products built against contract id.
func (s *FileSource) ListProductsByContract(ctx context.Context, id string) ([]product.Product, error) {
	if err := ctxErr(ctx, "list products"); err != nil {
		return nil, err
	}
	return s.data.productsByContract(id), nil
}

// Ping reports whether the source can serve requests.
func (s *FileSource) Ping(ctx context.Context) error {
	return ctxErr(ctx, "ping "+s.path)
}
