package search

import "strings"

// Query is a normalized free-text query: trimmed, lowercased, with
// internal whitespace runs collapsed to single spaces. The zero Query
// means "no text constraint", which is valid input, not an error.
type Query string

// Normalize canonicalizes raw user input into a Query. It is total:
// every string input normalizes, possibly to the empty Query.
func Normalize(raw string) Query {
	return Query(strings.ToLower(strings.Join(strings.Fields(raw), " ")))
}

// IsEmpty reports whether the query carries no text constraint.
func (q Query) IsEmpty() bool { return q == "" }
