package search

import "strings"

// Matches reports whether m satisfies the text query. An empty query
// matches everything. Otherwise the query must be a case-insensitive
// substring of the message content, the author's display name, or the
// author's username — substring semantics, so "file" matches "files".
func Matches(q Query, m *Message, author User) bool {
	if q.IsEmpty() {
		return true
	}
	needle := string(q)
	return strings.Contains(strings.ToLower(m.Content), needle) ||
		strings.Contains(strings.ToLower(author.DisplayName), needle) ||
		strings.Contains(strings.ToLower(author.Username), needle)
}
