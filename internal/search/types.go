// Package search implements the query engine behind hearth's message
// search: free-text matching over a message corpus combined with
// structured facet filters, deterministic recency ranking, and the
// sequenced lifecycle of an in-flight search.
package search

// Message is one searchable message record. The engine never mutates
// messages; the corpus owns them.
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	Content     string
	Attachments []Attachment
	CreatedAt   int64 // unix millis
}

// HasAttachments reports whether the message carries at least one attachment.
func (m *Message) HasAttachments() bool {
	return len(m.Attachments) > 0
}

// Attachment is a file attached to a message. Only its presence matters
// for filtering; the rest passes through for display.
type Attachment struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
}

// User is a read-only reference entity joined into results for display.
type User struct {
	ID          string
	DisplayName string
	Username    string
}

// Channel is a read-only reference entity joined into results for display.
type Channel struct {
	ID         string
	Name       string
	ServerName string
}

// Result is a matched message enriched with display names for the
// author and channel. Results are output-only; nothing persists them.
type Result struct {
	Message     Message
	AuthorName  string
	AuthorHandle string
	ChannelName string
	ServerName  string
}
