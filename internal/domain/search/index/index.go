package index

import (
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain/search/entity"
)

// DefaultTTL is how long a built index stays fresh.
const DefaultTTL = 5 * time.Minute

// MaxKeywords caps the keywords extracted per entity.
const MaxKeywords = 10

// Entry is a flattened, keyword-annotated catalog entity.
// Fields that do not apply to the entity type are left empty.
type Entry struct {
	ID           string      `json:"id"`
	Type         entity.Type `json:"type"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Keywords     []string    `json:"keywords"`
	Domain       string      `json:"domain,omitempty"`
	Layer        string      `json:"layer,omitempty"`
	Status       string      `json:"status,omitempty"`
	Technology   string      `json:"technology,omitempty"`
	QualityScore *float64    `json:"quality_score,omitempty"`
}

// Index is an immutable snapshot of all searchable entities.
// It is rebuilt wholesale, never patched.
type Index struct {
	Domains     []Entry   `json:"domains"`
	Contracts   []Entry   `json:"contracts"`
	Products    []Entry   `json:"products"`
	LastUpdated time.Time `json:"last_updated"`
}

// IsEmpty reports whether the index was never built.
func (i *Index) IsEmpty() bool {
	return i == nil || i.LastUpdated.IsZero()
}

// IsStale reports whether the index must be rebuilt at now.
func (i *Index) IsStale(now time.Time, ttl time.Duration) bool {
	if i.IsEmpty() {
		return true
	}
	return now.Sub(i.LastUpdated) > ttl
}

// Entries returns domains, contracts and products in index order.
func (i *Index) Entries() []Entry {
	out := make([]Entry, 0, len(i.Domains)+len(i.Contracts)+len(i.Products))
	out = append(out, i.Domains...)
	out = append(out, i.Contracts...)
	return append(out, i.Products...)
}

// Stats summarizes an index for diagnostics.
type Stats struct {
	Domains     int       `json:"domains"`
	Contracts   int       `json:"contracts"`
	Products    int       `json:"products"`
	LastUpdated time.Time `json:"last_updated"`
	Fresh       bool      `json:"fresh"`
}

// Stats returns entity counts and freshness at now.
func (i *Index) Stats(now time.Time, ttl time.Duration) Stats {
	if i == nil {
		return Stats{}
	}
	return Stats{
		Domains:     len(i.Domains),
		Contracts:   len(i.Contracts),
		Products:    len(i.Products),
		LastUpdated: i.LastUpdated,
		Fresh:       !i.IsStale(now, ttl),
	}
}
