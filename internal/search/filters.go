package search

// Filters is the structured constraint set of a search. Every field is
// optional: a zero value constrains nothing. Set fields combine by
// conjunction, so filters can only narrow a query, never broaden it.
//
// HasFile=false is "attachments not required", not "must have none";
// there is deliberately no way to exclude messages with attachments.
type Filters struct {
	ChannelID string `json:"channel_id,omitempty"`
	AuthorID  string `json:"author_id,omitempty"`
	HasFile   bool   `json:"has_file,omitempty"`
}

// IsZero reports whether no constraint is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Match reports whether m satisfies every set constraint.
func (f Filters) Match(m *Message) bool {
	if f.ChannelID != "" && m.ChannelID != f.ChannelID {
		return false
	}
	if f.AuthorID != "" && m.AuthorID != f.AuthorID {
		return false
	}
	if f.HasFile && !m.HasAttachments() {
		return false
	}
	return true
}
