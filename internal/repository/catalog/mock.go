package catalog

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
)

// errSimulated is the cause of an injected fetch failure.
var errSimulated = errors.New("simulated network failure")

// MockConfig tunes the generated catalog and the simulated network.
type MockConfig struct {
	Seed        uint64
	Latency     time.Duration
	FailureRate float64 // probability in [0,1] that a call fails
}

// MockSource serves a deterministic generated catalog behind a simulated
// slow and unreliable network.
type MockSource struct {
	cfg  MockConfig
	data *snapshot

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockSource generates the catalog for cfg.Seed. The same seed always
// yields the same catalog.
func NewMockSource(cfg MockConfig) *MockSource {
	contracts, products := generate(cfg.Seed)
	data, err := newSnapshot(contracts, products)
	if err != nil {
		// generate produces unique ids by construction.
		panic(err)
	}
	return &MockSource{
		cfg:  cfg,
		data: data,
		rng:  rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)), //nolint:gosec // simulation only
	}
}

// ListContracts returns every generated contract.
func (s *MockSource) ListContracts(ctx context.Context) ([]contract.Contract, error) {
	if err := s.call(ctx, "list contracts"); err != nil {
		return nil, err
	}
	return s.data.listContracts(), nil
}

// ListProducts returns every generated product.
func (s *MockSource) ListProducts(ctx context.Context) ([]product.Product, error) {
	if err := s.call(ctx, "list products"); err != nil {
		return nil, err
	}
	return s.data.listProducts(), nil
}

// GetContract returns the contract with id or domain.ErrNotFound.
func (s *MockSource) GetContract(ctx context.Context, id string) (contract.Contract, error) {
	if err := s.call(ctx, "get contract"); err != nil {
		return contract.Contract{}, err
	}
	return s.data.getContract(id)
}

// ListProductsByContract returns the products built against contract id.
func (s *MockSource) ListProductsByContract(ctx context.Context, id string) ([]product.Product, error) {
	if err := s.call(ctx, "list products"); err != nil {
		return nil, err
	}
	return s.data.productsByContract(id), nil
}

// Ping checks the simulated network without injecting failures.
func (s *MockSource) Ping(ctx context.Context) error {
	return ctxErr(ctx, "ping")
}

// call waits out the simulated latency and rolls for a failure.
func (s *MockSource) call(ctx context.Context, op string) error {
	if s.cfg.Latency > 0 {
		t := time.NewTimer(s.cfg.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return domain.NewFetchError(op, ctx.Err())
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.NewFetchError(op, err)
	}

	if s.cfg.FailureRate > 0 && s.roll() < s.cfg.FailureRate {
		return domain.NewFetchError(op, errSimulated)
	}
	return nil
}

func (s *MockSource) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
