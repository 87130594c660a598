package catalogd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/db"
	dbBadger "github.com/kailas-cloud/catalogd/internal/db/badger"
	dbRedis "github.com/kailas-cloud/catalogd/internal/db/redis"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
	"github.com/kailas-cloud/catalogd/internal/domain/search/request"
	"github.com/kailas-cloud/catalogd/internal/domain/search/result"
	domval "github.com/kailas-cloud/catalogd/internal/domain/validation"
	"github.com/kailas-cloud/catalogd/internal/metrics"
	catalogrepo "github.com/kailas-cloud/catalogd/internal/repository/catalog"
	"github.com/kailas-cloud/catalogd/internal/repository/expcache"
	"github.com/kailas-cloud/catalogd/internal/repository/snapshot"
	healthuc "github.com/kailas-cloud/catalogd/internal/usecase/health"
	searchuc "github.com/kailas-cloud/catalogd/internal/usecase/search"
	validationuc "github.com/kailas-cloud/catalogd/internal/usecase/validation"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultSeed             = 42
)

// Internal interfaces, replaced in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
	Suggestions(ctx context.Context, partial string) ([]result.Suggestion, error)
	BuildIndex(ctx context.Context) (index.Stats, error)
	Stats() index.Stats
	Invalidate(ctx context.Context) error
}

type validationUseCase interface {
	Validate(ctx context.Context, c *contract.Contract, products []product.Product) domval.Result
	ValidateContract(ctx context.Context, id string) (domval.Result, error)
	Recommendations(l layer.Layer) []pipeline.Type
	LayerSuggestions(t pipeline.Type) []layer.Layer
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// source is what the client needs from a catalog data source.
type source interface {
	searchuc.DataSource
	validationuc.Source
	healthuc.SourcePinger
}

// Client is the catalogd SDK entry point.
type Client struct {
	store         db.Store
	source        source
	searchSvc     searchUseCase
	validationSvc validationUseCase
	healthSvc     healthUseCase
	obs           *observer
}

// New creates a Client. Without options it serves the seed-42 mock catalog
// and keeps the index in process only.
// The provided context is used for the store readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{seed: defaultSeed}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.failureRate < 0 || cfg.failureRate > 1 {
		return nil, fmt.Errorf("catalogd: failure rate must be between 0 and 1, got %g", cfg.failureRate)
	}

	src, err := createSource(cfg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("catalogd: database not ready: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return wireClient(src, store, cfg, obs), nil
}

func createSource(cfg *clientConfig) (source, error) {
	if cfg.fixturePath != "" {
		s, err := catalogrepo.NewFileSource(cfg.fixturePath)
		if err != nil {
			return nil, fmt.Errorf("catalogd: load fixture: %w", err)
		}
		return s, nil
	}
	return catalogrepo.NewMockSource(catalogrepo.MockConfig{
		Seed:        cfg.seed,
		Latency:     cfg.latency,
		FailureRate: cfg.failureRate,
	}), nil
}

// createStore returns a nil store when none is configured.
func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "":
		return nil, nil
	case "memory":
		s, err := dbBadger.NewStore(dbBadger.Config{}, zap.NewNop())
		if err != nil {
			return nil, fmt.Errorf("catalogd: create memory store: %w", err)
		}
		return s, nil
	case "badger":
		if cfg.badgerPath == "" {
			return nil, fmt.Errorf("catalogd: badger path is required")
		}
		s, err := dbBadger.NewStore(dbBadger.Config{Path: cfg.badgerPath}, zap.NewNop())
		if err != nil {
			return nil, fmt.Errorf("catalogd: create badger store: %w", err)
		}
		return s, nil
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("catalogd: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("catalogd: unknown driver %q", cfg.driver)
	}
}

func wireClient(src source, store db.Store, cfg *clientConfig, obs *observer) *Client {
	searchSvc := searchuc.New(src, nil).WithTTL(cfg.indexTTL)
	if store != nil {
		ttl := cfg.indexTTL
		if ttl <= 0 {
			ttl = index.DefaultTTL
		}
		searchSvc = searchSvc.WithSnapshots(snapshot.New(store, ttl))
	}
	if cfg.expander != nil {
		var exp searchuc.Expander = cfg.expander
		if store != nil {
			exp = expcache.New(cfg.expander, store, cfg.cacheTTL, metrics.ExpanderCacheTotal, nil)
		}
		searchSvc = searchSvc.WithExpander(exp)
	}

	var dbPinger healthuc.DBPinger
	if store != nil {
		dbPinger = store
	}

	return &Client{
		store:         store,
		source:        src,
		searchSvc:     searchSvc,
		validationSvc: validationuc.New(src),
		healthSvc:     healthuc.New(src, dbPinger, nil),
		obs:           obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks data source connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.source.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}

// Validation returns the compatibility validation service.
func (c *Client) Validation() *ValidationService {
	return &ValidationService{svc: c.validationSvc, obs: c.obs}
}
