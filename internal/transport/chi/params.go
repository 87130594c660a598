package chi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogd/internal/domain/search/request"
)

// bindSearchParams binds the query string of a search request (form style, exploded).
func bindSearchParams(r *http.Request) (SearchParams, error) {
	var p SearchParams
	q := r.URL.Query()

	binds := []struct {
		name string
		dest any
	}{
		{"q", &p.Q},
		{"domain", &p.Domain},
		{"layer", &p.Layer},
		{"status", &p.Status},
		{"technology", &p.Technology},
		{"limit", &p.Limit},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return SearchParams{}, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

// searchRequestFromParams validates p into a search request.
// Layer filter values are matched case-insensitively. An absent limit selects defaultLimit.
func searchRequestFromParams(p *SearchParams, session string, defaultLimit int) (request.Request, error) {
	layers := make([]string, 0, len(deref(p.Layer)))
	for _, v := range deref(p.Layer) {
		l, err := layer.Parse(v)
		if err != nil {
			return request.Request{}, fmt.Errorf("layer filter: %w", err)
		}
		layers = append(layers, l.String())
	}

	statuses := make([]string, 0, len(deref(p.Status)))
	for _, v := range deref(p.Status) {
		statuses = append(statuses, strings.ToLower(strings.TrimSpace(v)))
	}

	f := filter.Filters{
		Domains:      nonEmpty(deref(p.Domain)),
		Layers:       layers,
		Statuses:     statuses,
		Technologies: nonEmpty(deref(p.Technology)),
	}

	limit := defaultLimit
	if p.Limit != nil {
		if *p.Limit <= 0 || *p.Limit > request.MaxLimit {
			return request.Request{}, fmt.Errorf("limit must be between 1 and %d", request.MaxLimit)
		}
		limit = *p.Limit
	}

	var q string
	if p.Q != nil {
		q = *p.Q
	}
	req, err := request.New(q, f, limit, session)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

func nonEmpty(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func deref(vs *[]string) []string {
	if vs == nil {
		return nil
	}
	return *vs
}
