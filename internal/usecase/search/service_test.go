package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
	"github.com/kailas-cloud/catalogd/internal/domain/search/request"
	"github.com/kailas-cloud/catalogd/internal/domain/search/result"
)

// --- mocks ---

type mockSource struct {
	contracts []contract.Contract
	products  []product.Product
	err       error

	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newMockSource() *mockSource {
	c, p := testCatalog()
	return &mockSource{contracts: c, products: p}
}

func (m *mockSource) ListContracts(ctx context.Context) ([]contract.Contract, error) {
	m.calls.Add(1)
	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.contracts, nil
}

func (m *mockSource) ListProducts(_ context.Context) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

type mockSnapshots struct {
	mu      sync.Mutex
	stored  *index.Index
	loadErr error
	saves   int
	deletes int
}

func (m *mockSnapshots) Load(_ context.Context) (index.Index, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return index.Index{}, false, m.loadErr
	}
	if m.stored == nil {
		return index.Index{}, false, nil
	}
	return *m.stored, true, nil
}

func (m *mockSnapshots) Save(_ context.Context, idx *index.Index) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	cp := *idx
	m.stored = &cp
	return nil
}

func (m *mockSnapshots) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	m.stored = nil
	return nil
}

type mockExpander struct {
	terms []string
	err   error
	got   string
}

func (m *mockExpander) Expand(_ context.Context, q string) ([]string, error) {
	m.got = q
	return m.terms, m.err
}

// --- helpers ---

func ids(rs []result.Result) []string {
	out := make([]string, len(rs))
	for i := range rs {
		out[i] = rs[i].ID()
	}
	return out
}

func newReq(t *testing.T, q string, f filter.Filters, session string) *request.Request {
	t.Helper()
	req, err := request.New(q, f, 0, session)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time      { return c.t }
func (c *clock) add(d time.Duration) { c.t = c.t.Add(d) }

// --- tests ---

func TestSearch_BlankQuerySkipsBuild(t *testing.T) {
	src := newMockSource()
	svc := New(src, nil)

	got, err := svc.Search(context.Background(), newReq(t, "   ", filter.Filters{}, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("want empty non-nil slice, got %v", got)
	}
	if src.calls.Load() != 0 {
		t.Error("blank query must not build the index")
	}
}

func TestSearch_RanksAndFilters(t *testing.T) {
	svc := New(newMockSource(), nil)
	ctx := context.Background()

	got, err := svc.Search(ctx, newReq(t, "card", filter.Filters{}, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected results for card")
	}
	for _, r := range got {
		if r.ID() == "c3" {
			t.Errorf("insurance contract must not match card: %v", ids(got))
		}
	}

	got, err = svc.Search(ctx, newReq(t, "card", filter.Filters{Layers: []string{"Gold"}}, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "c2" {
		t.Errorf("layer filter results = %v", ids(got))
	}
}

func TestSearch_Limit(t *testing.T) {
	svc := New(newMockSource(), nil)
	req, err := request.New("card", filter.Filters{}, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestSearch_IndexCachedWithinTTL(t *testing.T) {
	src := newMockSource()
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := New(src, nil).WithClock(clk.now).WithTTL(time.Minute)
	ctx := context.Background()

	for range 3 {
		if _, err := svc.Search(ctx, newReq(t, "card", filter.Filters{}, "")); err != nil {
			t.Fatal(err)
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("builds = %d, want 1", n)
	}

	clk.add(2 * time.Minute)
	if _, err := svc.Search(ctx, newReq(t, "card", filter.Filters{}, "")); err != nil {
		t.Fatal(err)
	}
	if n := src.calls.Load(); n != 2 {
		t.Errorf("stale index must rebuild, builds = %d", n)
	}
}

func TestSearch_BuildErrorPropagatesAndKeepsOldIndex(t *testing.T) {
	src := newMockSource()
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := New(src, nil).WithClock(clk.now)
	ctx := context.Background()

	if _, err := svc.BuildIndex(ctx); err != nil {
		t.Fatal(err)
	}

	src.err = domain.NewFetchError("list contracts", errors.New("boom"))
	_, err := svc.BuildIndex(ctx)
	if !errors.Is(err, domain.ErrIndexBuild) {
		t.Errorf("want ErrIndexBuild, got %v", err)
	}
	if !errors.Is(err, domain.ErrDataSourceUnavailable) {
		t.Errorf("cause must stay matchable, got %v", err)
	}
	if st := svc.Stats(); st.Contracts != 3 {
		t.Errorf("old index must stay installed, stats = %+v", st)
	}

	clk.add(index.DefaultTTL + time.Second)
	if _, err := svc.Search(ctx, newReq(t, "card", filter.Filters{}, "")); !errors.Is(err, domain.ErrIndexBuild) {
		t.Errorf("search must surface the build error, got %v", err)
	}
}

func TestSearch_UsesFreshSnapshot(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c, p := testCatalog()
	snap := assemble(c, p, now.Add(-time.Minute))
	store := &mockSnapshots{stored: &snap}
	src := newMockSource()
	svc := New(src, nil).WithClock(func() time.Time { return now }).WithSnapshots(store)

	got, err := svc.Search(context.Background(), newReq(t, "card", filter.Filters{}, ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Error("expected results from snapshot")
	}
	if src.calls.Load() != 0 {
		t.Error("fresh snapshot must not trigger a rebuild")
	}
}

func TestSearch_StaleSnapshotRebuildsAndSaves(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c, p := testCatalog()
	snap := assemble(c, p, now.Add(-time.Hour))
	store := &mockSnapshots{stored: &snap}
	src := newMockSource()
	svc := New(src, nil).WithClock(func() time.Time { return now }).WithSnapshots(store)

	if _, err := svc.Search(context.Background(), newReq(t, "card", filter.Filters{}, "")); err != nil {
		t.Fatal(err)
	}
	if src.calls.Load() != 1 {
		t.Error("stale snapshot must trigger a rebuild")
	}
	if store.saves != 1 || !store.stored.LastUpdated.Equal(now) {
		t.Errorf("rebuilt index must be saved, saves=%d", store.saves)
	}
}

func TestSearch_SnapshotLoadErrorFallsBackToRebuild(t *testing.T) {
	store := &mockSnapshots{loadErr: errors.New("redis down")}
	src := newMockSource()
	svc := New(src, nil).WithSnapshots(store)

	if _, err := svc.Search(context.Background(), newReq(t, "card", filter.Filters{}, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls.Load() != 1 {
		t.Error("expected a rebuild")
	}
}

func TestSearch_ExpanderTermsAndErrors(t *testing.T) {
	exp := &mockExpander{terms: []string{"insurance", "policies"}}
	svc := New(newMockSource(), nil).WithExpander(exp)
	ctx := context.Background()

	got, err := svc.Search(ctx, newReq(t, "  Apolices ", filter.Filters{}, ""))
	if err != nil {
		t.Fatal(err)
	}
	if exp.got != "apolices" {
		t.Errorf("expander query = %q", exp.got)
	}
	found := false
	for _, r := range got {
		if r.ID() == "c3" {
			found = true
		}
	}
	if !found {
		t.Errorf("expander term should surface insurance contract: %v", ids(got))
	}

	exp.err = errors.New("provider down")
	if _, err := svc.Search(ctx, newReq(t, "card", filter.Filters{}, "")); err != nil {
		t.Errorf("expander failure must be ignored, got %v", err)
	}
}

func TestSearch_SupersededRequest(t *testing.T) {
	src := newMockSource()
	src.started = make(chan struct{})
	src.release = make(chan struct{})
	svc := New(src, nil)

	req := newReq(t, "card", filter.Filters{}, "tab-1")
	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Search(context.Background(), req)
		errCh <- err
	}()

	<-src.started
	_, newer := svc.seq.Begin(context.Background(), "tab-1")
	close(src.release)

	if err := <-errCh; !errors.Is(err, domain.ErrSuperseded) {
		t.Errorf("want ErrSuperseded, got %v", err)
	}
	newer.Done()

	// The shared build survives the superseded caller.
	if st := svc.Stats(); st.Contracts != 3 {
		t.Errorf("index should be installed, stats = %+v", st)
	}
}

func TestBuildIndex_CanceledCallerDoesNotFailWaitingSearch(t *testing.T) {
	src := newMockSource()
	src.started = make(chan struct{})
	src.release = make(chan struct{})
	svc := New(src, nil)

	rctx, cancel := context.WithCancel(context.Background())
	buildErr := make(chan error, 1)
	go func() {
		_, err := svc.BuildIndex(rctx)
		buildErr <- err
	}()
	<-src.started

	searchErr := make(chan error, 1)
	go func() {
		_, err := svc.Search(context.Background(), newReq(t, "cards", filter.Filters{}, ""))
		searchErr <- err
	}()
	// Let the search join the in-flight build before the reindex caller goes away.
	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(src.release)

	if err := <-searchErr; err != nil {
		t.Fatalf("search failed with the reindex caller's cancellation: %v", err)
	}
	if err := <-buildErr; err != nil {
		t.Errorf("build: %v", err)
	}
	if src.calls.Load() != 1 {
		t.Errorf("builds = %d, want 1 shared build", src.calls.Load())
	}
	if st := svc.Stats(); st.Contracts != 3 {
		t.Errorf("index should be installed, stats = %+v", st)
	}
}

func TestSuggestions(t *testing.T) {
	src := newMockSource()
	svc := New(src, nil)
	ctx := context.Background()

	got, err := svc.Suggestions(ctx, " c ")
	if err != nil || len(got) != 0 {
		t.Errorf("short partial: got %v, %v", got, err)
	}
	if src.calls.Load() != 0 {
		t.Error("short partial must not build the index")
	}

	got, err = svc.Suggestions(ctx, "CARD")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < 2 || got[0].ID != "domain:cards" {
		t.Errorf("suggestions = %+v", got)
	}
}

func TestBuildIndexAndInvalidate(t *testing.T) {
	store := &mockSnapshots{}
	src := newMockSource()
	svc := New(src, nil).WithSnapshots(store)
	ctx := context.Background()

	if st := svc.Stats(); st.Fresh || st.Contracts != 0 {
		t.Errorf("unbuilt stats = %+v", st)
	}

	st, err := svc.BuildIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Domains != 2 || st.Contracts != 3 || st.Products != 2 || !st.Fresh {
		t.Errorf("stats = %+v", st)
	}

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if store.deletes != 1 {
		t.Error("invalidate must drop the snapshot")
	}
	if svc.Stats().Fresh {
		t.Error("index must be gone after invalidate")
	}

	if _, err := svc.Search(ctx, newReq(t, "card", filter.Filters{}, "")); err != nil {
		t.Fatal(err)
	}
	if src.calls.Load() != 2 {
		t.Errorf("builds = %d, want 2", src.calls.Load())
	}
}
