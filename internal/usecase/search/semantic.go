package search

import "strings"

// synonymGroup adds terms to a query that contains any trigger substring.
type synonymGroup struct {
	triggers []string
	terms    []string
}

// synonymGroups is the fixed bilingual (en/pt) catalog vocabulary.
var synonymGroups = []synonymGroup{
	{
		triggers: []string{"card", "cartao", "cartão"},
		terms:    []string{"credit", "payment", "transaction", "credito", "pagamento"},
	},
	{
		triggers: []string{"insurance", "seguro"},
		terms:    []string{"policy", "coverage", "premium", "apolice", "cobertura", "sinistro"},
	},
	{
		triggers: []string{"consortium", "consorcio", "consórcio"},
		terms:    []string{"financing", "group", "member", "financiamento", "grupo", "cota"},
	},
}

// query is a normalized search query with its derived terms.
type query struct {
	raw      string
	text     string
	tokens   []string
	semantic []string
}

// newQuery normalizes raw and derives semantic terms from the static synonym
// table plus extra. Terms equal to a query token are not repeated.
func newQuery(raw string, extra []string) query {
	text := strings.ToLower(strings.TrimSpace(raw))
	tokens := strings.Fields(text)

	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[t] = struct{}{}
	}
	var semantic []string
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		semantic = append(semantic, term)
	}

	for _, g := range synonymGroups {
		if !containsAny(text, g.triggers) {
			continue
		}
		for _, term := range g.terms {
			add(term)
		}
	}
	for _, term := range extra {
		add(term)
	}

	return query{raw: strings.TrimSpace(raw), text: text, tokens: tokens, semantic: semantic}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
