package search

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
)

// minKeywordLen is the shortest token kept as a keyword (exclusive bound).
const minKeywordLen = 2

// extractKeywords returns up to index.MaxKeywords distinct lowercase
// alphanumeric tokens longer than minKeywordLen, in first-seen order.
func extractKeywords(name, description string) []string {
	text := strings.ToLower(name + " " + description)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, index.MaxKeywords)
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len([]rune(w)) <= minKeywordLen {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == index.MaxKeywords {
			break
		}
	}
	return out
}

// slugify lowercases s and collapses every run of non-alphanumerics into "-".
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
