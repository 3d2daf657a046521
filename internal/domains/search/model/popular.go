package model

import "strings"

// PopularTerms turns author names into search terms: the first word of
// each, deduplicated in order, at most limit of them.
func PopularTerms(authors []string, limit int) []string {
	seen := make(map[string]struct{}, len(authors))
	terms := make([]string, 0, limit)
	for _, author := range authors {
		fields := strings.Fields(author)
		if len(fields) == 0 {
			continue
		}
		term := fields[0]
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
		if len(terms) == limit {
			break
		}
	}
	return terms
}
