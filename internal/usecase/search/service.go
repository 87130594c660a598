package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
	"github.com/kailas-cloud/catalogd/internal/domain/search/request"
	"github.com/kailas-cloud/catalogd/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/catalogd/internal/logger"
	"github.com/kailas-cloud/catalogd/internal/metrics"
)

// minSuggestionLen is the shortest partial query that yields suggestions.
const minSuggestionLen = 2

const buildKey = "index"

// Service owns the search index cache and answers searches against it.
type Service struct {
	source    DataSource
	snapshots SnapshotStore
	expander  Expander
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
	seq       *Sequencer

	mu      sync.RWMutex
	current *index.Index
	builds  singleflight.Group
}

// New creates a search service over source with the default index TTL.
func New(source DataSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source: source,
		ttl:    index.DefaultTTL,
		now:    time.Now,
		logger: logger,
		seq:    NewSequencer(),
	}
}

// WithTTL overrides how long a built index stays fresh.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithSnapshots shares built indexes through store.
func (s *Service) WithSnapshots(store SnapshotStore) *Service {
	s.snapshots = store
	return s
}

// WithExpander adds provider-backed semantic terms to every query.
func (s *Service) WithExpander(e Expander) *Service {
	s.expander = e
	return s
}

// WithClock replaces time.Now (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Search ranks the index against req. A blank query returns no results
// without touching the index. Index build failures are returned as is.
func (s *Service) Search(ctx context.Context, req *request.Request) (results []result.Result, err error) {
	start := time.Now()
	defer func() { observe("search", start, err) }()

	if strings.TrimSpace(req.Query()) == "" {
		return []result.Result{}, nil
	}

	ctx, ticket := s.seq.Begin(ctx, req.Session())
	defer ticket.Done()

	idx, err := s.ensureIndex(ctx)
	if err != nil {
		if !ticket.Current() {
			return nil, domain.ErrSuperseded
		}
		return nil, err
	}

	q := newQuery(req.Query(), s.expand(ctx, req.Query()))
	results = rank(idx, &q, req.Filters())
	if len(results) > req.Limit() {
		results = results[:req.Limit()]
	}

	if !ticket.Current() {
		return nil, domain.ErrSuperseded
	}
	metrics.SearchResults.Observe(float64(len(results)))
	return results, nil
}

// Suggestions returns autocomplete entries whose name contains partial.
// Partial queries shorter than two characters yield nothing.
func (s *Service) Suggestions(ctx context.Context, partial string) (out []result.Suggestion, err error) {
	start := time.Now()
	defer func() { observe("suggest", start, err) }()

	partial = strings.TrimSpace(partial)
	if utf8.RuneCountInString(partial) < minSuggestionLen {
		return []result.Suggestion{}, nil
	}

	idx, err := s.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}
	return suggest(idx, partial), nil
}

// BuildIndex fetches the catalog, installs a fresh index and returns its stats.
// On failure the previous index, if any, stays installed. Searches waiting on
// the same build are not affected if ctx is canceled.
func (s *Service) BuildIndex(ctx context.Context) (index.Stats, error) {
	bctx := context.WithoutCancel(ctx)
	v, err, _ := s.builds.Do(buildKey, func() (any, error) {
		return s.rebuild(bctx)
	})
	if err != nil {
		return index.Stats{}, err //nolint:wrapcheck // rebuild already wraps with ErrIndexBuild
	}
	idx, _ := v.(*index.Index)
	return idx.Stats(s.now(), s.ttl), nil
}

// Stats describes the installed index. A never-built index reports zero counts.
func (s *Service) Stats() index.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Stats(s.now(), s.ttl)
}

// Invalidate drops the installed index and the shared snapshot so the next
// search rebuilds from the data source.
func (s *Service) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx); err != nil {
			return fmt.Errorf("delete index snapshot: %w", err)
		}
	}
	return nil
}

// ensureIndex returns a fresh index, loading a shared snapshot or rebuilding
// when the installed one is missing or stale. Concurrent callers share one build.
func (s *Service) ensureIndex(ctx context.Context) (*index.Index, error) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if !cur.IsStale(s.now(), s.ttl) {
		return cur, nil
	}

	// The build is shared by every waiting caller, so one superseded request
	// must not cancel it for the others.
	bctx := context.WithoutCancel(ctx)
	v, err, _ := s.builds.Do(buildKey, func() (any, error) {
		if idx, ok := s.loadSnapshot(bctx); ok {
			return idx, nil
		}
		return s.rebuild(bctx)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // rebuild already wraps with ErrIndexBuild
	}
	idx, _ := v.(*index.Index)
	return idx, nil
}

func (s *Service) rebuild(ctx context.Context) (*index.Index, error) {
	start := time.Now()
	log := logpkg.FromContext(ctx)

	var (
		contracts []contract.Contract
		products  []product.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contracts, err = s.source.ListContracts(gctx)
		if err != nil {
			return fmt.Errorf("list contracts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = s.source.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		log.Warn("search index build failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexBuild, err)
	}

	idx := assemble(contracts, products, s.now())
	s.install(&idx)

	metrics.IndexBuildsTotal.WithLabelValues("ok").Inc()
	metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("search index built",
		zap.Int("domains", len(idx.Domains)),
		zap.Int("contracts", len(idx.Contracts)),
		zap.Int("products", len(idx.Products)),
		zap.Duration("duration", time.Since(start)),
	)

	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, &idx); err != nil {
			s.logger.Warn("failed to save index snapshot", zap.Error(err))
		}
	}
	return &idx, nil
}

func (s *Service) loadSnapshot(ctx context.Context) (*index.Index, bool) {
	if s.snapshots == nil {
		return nil, false
	}
	idx, ok, err := s.snapshots.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load index snapshot", zap.Error(err))
		return nil, false
	}
	if !ok || idx.IsStale(s.now(), s.ttl) {
		return nil, false
	}
	s.install(&idx)
	s.logger.Debug("search index loaded from snapshot", zap.Time("last_updated", idx.LastUpdated))
	return &idx, true
}

func (s *Service) install(idx *index.Index) {
	s.mu.Lock()
	s.current = idx
	s.mu.Unlock()

	metrics.IndexEntries.WithLabelValues("domain").Set(float64(len(idx.Domains)))
	metrics.IndexEntries.WithLabelValues("contract").Set(float64(len(idx.Contracts)))
	metrics.IndexEntries.WithLabelValues("product").Set(float64(len(idx.Products)))
}

// expand asks the optional expander for extra terms. Failures only cost recall.
func (s *Service) expand(ctx context.Context, q string) []string {
	if s.expander == nil {
		return nil
	}
	terms, err := s.expander.Expand(ctx, strings.ToLower(strings.TrimSpace(q)))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logpkg.FromContext(ctx).Warn("semantic expansion failed", zap.Error(err))
		}
		return nil
	}
	return terms
}

func observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, domain.ErrSuperseded):
		status = "superseded"
	case err != nil:
		status = "error"
	}
	metrics.SearchDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
