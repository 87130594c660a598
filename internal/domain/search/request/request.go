package request

import (
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/catalogd/internal/domain/search/filter"
)

// Search request limits.
const (
	MaxQueryLength = 512
	DefaultLimit   = 50
	MaxLimit       = 200
)

// Request is a validated free-text search.
type Request struct {
	query   string
	filters filter.Filters
	limit   int
	session string
}

// New validates and creates a Request. limit <= 0 selects DefaultLimit.
// session identifies the caller for supersession; empty disables it.
func New(query string, filters filter.Filters, limit int, session string) (Request, error) {
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d characters)", MaxQueryLength)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		return Request{}, fmt.Errorf("limit must be at most %d, got %d", MaxLimit, limit)
	}
	if err := filters.Validate(); err != nil {
		return Request{}, err
	}
	return Request{query: query, filters: filters, limit: limit, session: session}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Filters returns the active filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Limit returns the maximum number of results.
func (r *Request) Limit() int { return r.limit }

// Session returns the caller session id.
func (r *Request) Session() string { return r.session }
