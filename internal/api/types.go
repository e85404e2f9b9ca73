package api

import "github.com/ghndrx/hearth-mobile-sub001/internal/search"

// Wire representations of the search domain types.

type Attachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	AuthorID    string       `json:"author_id"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   int64        `json:"created_at_unix_ms"`
}

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
}

type Channel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ServerName string `json:"server_name"`
}

type Result struct {
	Message      Message `json:"message"`
	AuthorName   string  `json:"author_name"`
	AuthorHandle string  `json:"author_handle"`
	ChannelName  string  `json:"channel_name"`
	ServerName   string  `json:"server_name"`
}

// SearchRequest is the body of POST /api/v1/search. Absent filter
// fields leave the search unconstrained.
type SearchRequest struct {
	Query     string `json:"query"`
	ChannelID string `json:"channel_id,omitempty"`
	AuthorID  string `json:"author_id,omitempty"`
	HasFile   bool   `json:"has_file,omitempty"`
}

// IssueResponse acknowledges an accepted search.
type IssueResponse struct {
	Sequence uint64 `json:"sequence"`
	Status   string `json:"status"`
}

// StateResponse is the session snapshot returned by GET /api/v1/search.
type StateResponse struct {
	Status    string   `json:"status"`
	Sequence  uint64   `json:"sequence"`
	Query     string   `json:"query"`
	ChannelID string   `json:"channel_id,omitempty"`
	AuthorID  string   `json:"author_id,omitempty"`
	HasFile   bool     `json:"has_file,omitempty"`
	Results   []Result `json:"results"`
	Error     string   `json:"error,omitempty"`
}

func toWireMessage(m search.Message) Message {
	out := Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	for _, a := range m.Attachments {
		out.Attachments = append(out.Attachments, Attachment(a))
	}
	return out
}

func fromWireMessage(m Message) search.Message {
	out := search.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	for _, a := range m.Attachments {
		out.Attachments = append(out.Attachments, search.Attachment(a))
	}
	return out
}

func toWireResult(r search.Result) Result {
	return Result{
		Message:      toWireMessage(r.Message),
		AuthorName:   r.AuthorName,
		AuthorHandle: r.AuthorHandle,
		ChannelName:  r.ChannelName,
		ServerName:   r.ServerName,
	}
}
