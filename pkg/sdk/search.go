package catalogd

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogd/internal/domain/search/request"
)

// SearchService queries the catalog search index.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// Query starts a search for text.
func (s *SearchService) Query(text string) *SearchBuilder {
	return &SearchBuilder{svc: s, query: text}
}

// Suggest returns up to 10 autocomplete entries whose name contains partial.
func (s *SearchService) Suggest(ctx context.Context, partial string) (_ []Suggestion, err error) {
	start := time.Now()
	defer func() { s.obs.observe("suggest", start, err) }()

	out, err := s.svc.Suggestions(ctx, partial)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return out, nil
}

// Reindex rebuilds the index from the data source now.
func (s *SearchService) Reindex(ctx context.Context) (_ IndexStats, err error) {
	start := time.Now()
	defer func() { s.obs.observe("reindex", start, err) }()

	st, err := s.svc.BuildIndex(ctx)
	if err != nil {
		return IndexStats{}, fmt.Errorf("reindex: %w", err)
	}
	return fromStats(st), nil
}

// Stats describes the index currently held by the client.
func (s *SearchService) Stats() IndexStats {
	return fromStats(s.svc.Stats())
}

// Invalidate drops the index and any shared snapshot; the next search rebuilds.
func (s *SearchService) Invalidate(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("invalidate", start, err) }()

	if err = s.svc.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}
	return nil
}

// SearchBuilder is a fluent builder for search queries.
// Filters within one dimension are alternatives; dimensions are combined.
type SearchBuilder struct {
	svc     *SearchService
	query   string
	filters filter.Filters
	limit   int
	session string
}

// Domains keeps results from any of the given domains.
func (b *SearchBuilder) Domains(domains ...string) *SearchBuilder {
	b.filters.Domains = append(b.filters.Domains, domains...)
	return b
}

// Layers keeps results from any of the given layers (case-insensitive).
func (b *SearchBuilder) Layers(layers ...string) *SearchBuilder {
	b.filters.Layers = append(b.filters.Layers, layers...)
	return b
}

// Statuses keeps results with any of the given statuses.
func (b *SearchBuilder) Statuses(statuses ...string) *SearchBuilder {
	b.filters.Statuses = append(b.filters.Statuses, statuses...)
	return b
}

// Technologies keeps products built with any of the given technologies.
func (b *SearchBuilder) Technologies(techs ...string) *SearchBuilder {
	b.filters.Technologies = append(b.filters.Technologies, techs...)
	return b
}

// Limit sets the maximum number of results. Default: 50, max 200.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Session ties the search to a caller session. A later search in the same
// session makes this one fail with ErrSuperseded.
func (b *SearchBuilder) Session(id string) *SearchBuilder {
	b.session = id
	return b
}

// Do executes the search. Results are sorted by descending score.
func (b *SearchBuilder) Do(ctx context.Context) (_ []Hit, err error) {
	start := time.Now()
	defer func() { b.svc.obs.observe("search", start, err) }()

	f := b.filters
	if len(f.Layers) > 0 {
		layers := make([]string, len(f.Layers))
		for i, v := range f.Layers {
			l, err := layer.Parse(v)
			if err != nil {
				return nil, fmt.Errorf("search: %w: %w", ErrInvalidRequest, err)
			}
			layers[i] = l.String()
		}
		f.Layers = layers
	}

	req, err := request.New(b.query, f, b.limit, b.session)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %w", ErrInvalidRequest, err)
	}

	results, err := b.svc.svc.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromResults(results), nil
}
