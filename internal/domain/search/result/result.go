package result

import "github.com/kailas-cloud/catalogd/internal/domain/search/entity"

// Metadata carries the filterable attributes of a hit.
type Metadata struct {
	Domain       string   `json:"domain,omitempty"`
	Layer        string   `json:"layer,omitempty"`
	Status       string   `json:"status,omitempty"`
	Technology   string   `json:"technology,omitempty"`
	QualityScore *float64 `json:"quality_score,omitempty"`
}

// Highlights holds HTML-marked copies of matched fields.
type Highlights struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsEmpty reports whether no field was highlighted.
func (h Highlights) IsEmpty() bool { return h.Name == "" && h.Description == "" }

// Result is a single ranked search hit.
type Result struct {
	id          string
	entityType  entity.Type
	title       string
	description string
	score       float64
	metadata    Metadata
	highlights  Highlights
}

// New creates a search result.
func New(
	id string, entityType entity.Type, title, description string,
	score float64, metadata Metadata, highlights Highlights,
) Result {
	return Result{
		id: id, entityType: entityType, title: title, description: description,
		score: score, metadata: metadata, highlights: highlights,
	}
}

// ID returns the entity identifier.
func (r *Result) ID() string { return r.id }

// Type returns the entity type.
func (r *Result) Type() entity.Type { return r.entityType }

// Title returns the entity name.
func (r *Result) Title() string { return r.title }

// Description returns the entity description.
func (r *Result) Description() string { return r.description }

// Score returns the relevance score.
func (r *Result) Score() float64 { return r.score }

// Metadata returns the filterable attributes.
func (r *Result) Metadata() Metadata { return r.metadata }

// Highlights returns the marked fields.
func (r *Result) Highlights() Highlights { return r.highlights }

// Actions returns what the user may do with this result.
func (r *Result) Actions() []entity.Action { return r.entityType.Actions() }

// WithScore returns a copy of r with a new score.
func (r Result) WithScore(score float64) Result {
	r.score = score
	return r
}

// Suggestion is an autocomplete entry.
type Suggestion struct {
	Text string      `json:"text"`
	Type entity.Type `json:"type"`
	ID   string      `json:"id"`
}
