package listview

import (
	"strings"
	"unicode/utf8"
)

// SearchParam is the query parameter holding the free-text search.
const SearchParam = "q"

// SearchQueryParser turns a search box value into lower-case terms.
// Configured with sensible defaults for a list page search box.
type SearchQueryParser struct {
	maxLength int
}

// NewSearchQueryParser creates a SearchQueryParser that truncates queries
// longer than 1000 characters.
func NewSearchQueryParser() *SearchQueryParser {
	return &SearchQueryParser{
		maxLength: 1000,
	}
}

// Parse splits a user's search query into terms.
// Performs the following transformations:
//  1. Trims whitespace
//  2. Truncates to the maximum length
//  3. Removes special characters (quotes, parentheses)
//  4. Splits into words
//  5. Converts to lowercase
//
// Examples:
//
//	"User Email" → ["user", "email"]
//	`"str" (email)` → ["str", "email"]
//
// An empty or whitespace-only query yields no terms and matches everything.
func (p *SearchQueryParser) Parse(query string) []string {
	query = strings.TrimSpace(query)
	if len(query) > p.maxLength {
		cut := p.maxLength
		for cut > 0 && !utf8.RuneStart(query[cut]) {
			cut--
		}
		query = query[:cut]
	}

	query = p.sanitize(query)

	words := strings.Fields(query)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		terms = append(terms, strings.ToLower(word))
	}
	return terms
}

func (p *SearchQueryParser) sanitize(query string) string {
	return strings.NewReplacer(`"`, "", "'", "", "(", "", ")", "").Replace(query)
}

// MatchesAll reports whether every term occurs in at least one haystack.
// Matching is case-insensitive; terms must already be lower-case.
func MatchesAll(terms []string, haystack ...string) bool {
	if len(terms) == 0 {
		return true
	}

	lowered := make([]string, len(haystack))
	for i, h := range haystack {
		lowered[i] = strings.ToLower(h)
	}

	for _, term := range terms {
		found := false
		for _, h := range lowered {
			if strings.Contains(h, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TextSearch adapts a haystack extractor into a search function.
func TextSearch[T any](fields func(T) []string) func(T, string) bool {
	parser := NewSearchQueryParser()
	return func(item T, query string) bool {
		return MatchesAll(parser.Parse(query), fields(item)...)
	}
}
