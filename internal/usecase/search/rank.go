package search

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/catalogd/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
	"github.com/kailas-cloud/catalogd/internal/domain/search/result"
)

// Scoring weights.
const (
	phraseWeight   = 1.0
	tokenWeight    = 0.5
	semanticWeight = 0.3
	minRelevance   = 0.3

	qualityBase      = 0.8
	qualityWeight    = 0.2
	publishedBoost   = 1.1
	publishedStatus  = "published"
	highlightOpenTag = "<mark>"
	highlightEndTag  = "</mark>"
)

// relevance scores e against q in [0, 1].
// Phrase, token and semantic hits are summed and normalized by the number of
// tokens plus the weighted number of semantic terms.
func relevance(e *index.Entry, q *query) float64 {
	denom := float64(len(q.tokens)) + semanticWeight*float64(len(q.semantic))
	if denom == 0 {
		return 0
	}

	text := strings.ToLower(e.Name + " " + e.Description + " " + strings.Join(e.Keywords, " "))

	score := 0.0
	if strings.Contains(text, q.text) {
		score += phraseWeight
	}
	for _, t := range q.tokens {
		if strings.Contains(text, t) {
			score += tokenWeight
		}
	}
	for _, t := range q.semantic {
		if strings.Contains(text, t) {
			score += semanticWeight
		}
	}

	score /= denom
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// boost applies the type, quality and publication multipliers.
func boost(e *index.Entry, score float64) float64 {
	score *= e.Type.Boost()
	if e.QualityScore != nil {
		score *= qualityBase + *e.QualityScore*qualityWeight
	}
	if e.Status == publishedStatus {
		score *= publishedBoost
	}
	return score
}

// highlighter marks every case-insensitive occurrence of a literal query.
type highlighter struct {
	pattern *regexp.Regexp
}

func newHighlighter(raw string) highlighter {
	if raw == "" {
		return highlighter{}
	}
	return highlighter{pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(raw))}
}

// mark returns text with matches wrapped in <mark>, or "" when nothing matched.
// Text outside and inside the marks is HTML-escaped.
func (h highlighter) mark(text string) string {
	if h.pattern == nil {
		return ""
	}
	locs := h.pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return ""
	}
	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		b.WriteString(html.EscapeString(text[prev:loc[0]]))
		b.WriteString(highlightOpenTag)
		b.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
		b.WriteString(highlightEndTag)
		prev = loc[1]
	}
	b.WriteString(html.EscapeString(text[prev:]))
	return b.String()
}

// rank scores, filters, highlights and boosts every entry of idx, then sorts by
// boosted score descending. Ties keep index order.
func rank(idx *index.Index, q *query, f filter.Filters) []result.Result {
	hl := newHighlighter(q.raw)

	var out []result.Result
	for _, group := range [][]index.Entry{idx.Domains, idx.Contracts, idx.Products} {
		for i := range group {
			e := &group[i]
			score := relevance(e, q)
			if score <= minRelevance {
				continue
			}
			if !f.Matches(filter.Target{
				Domain: e.Domain, Layer: e.Layer, Status: e.Status, Technology: e.Technology,
			}) {
				continue
			}
			out = append(out, toResult(e, boost(e, score), hl))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})
	if out == nil {
		out = []result.Result{}
	}
	return out
}

func toResult(e *index.Entry, score float64, hl highlighter) result.Result {
	return result.New(
		e.ID, e.Type, e.Name, e.Description, score,
		result.Metadata{
			Domain:       e.Domain,
			Layer:        e.Layer,
			Status:       e.Status,
			Technology:   e.Technology,
			QualityScore: e.QualityScore,
		},
		result.Highlights{
			Name:        hl.mark(e.Name),
			Description: hl.mark(e.Description),
		},
	)
}

// maxSuggestions caps autocomplete output.
const maxSuggestions = 10

// suggest returns up to maxSuggestions entries whose name contains partial,
// domains first, then contracts, then products, each in index order.
func suggest(idx *index.Index, partial string) []result.Suggestion {
	needle := strings.ToLower(partial)
	out := make([]result.Suggestion, 0, maxSuggestions)
	for _, e := range idx.Entries() {
		if !strings.Contains(strings.ToLower(e.Name), needle) {
			continue
		}
		out = append(out, result.Suggestion{Text: e.Name, Type: e.Type, ID: e.ID})
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
