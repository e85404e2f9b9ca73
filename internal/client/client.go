// Package client is the HTTP client for a hearth search daemon. It
// implements search.Corpus over the API so a client-side surface can
// run its own search session against the daemon's corpus.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/api"
	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
)

// Client talks to one daemon's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the daemon at baseURL, e.g.
// "http://127.0.0.1:8745".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Health probes the daemon.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

// IssueSearch starts a search on the daemon's session.
func (c *Client) IssueSearch(ctx context.Context, req api.SearchRequest) (api.IssueResponse, error) {
	var out api.IssueResponse
	err := c.post(ctx, "/api/v1/search", req, &out)
	return out, err
}

// RefreshSearch re-issues the daemon session's last query.
func (c *Client) RefreshSearch(ctx context.Context) (api.IssueResponse, error) {
	var out api.IssueResponse
	err := c.post(ctx, "/api/v1/search/refresh", nil, &out)
	return out, err
}

// SearchState returns the daemon session's current snapshot.
func (c *Client) SearchState(ctx context.Context) (api.StateResponse, error) {
	var out api.StateResponse
	err := c.get(ctx, "/api/v1/search", &out)
	return out, err
}

// WaitSearch issues a search and polls until that sequence settles or
// ctx expires. Convenience for one-shot callers like hearthctl.
func (c *Client) WaitSearch(ctx context.Context, req api.SearchRequest) (api.StateResponse, error) {
	issued, err := c.IssueSearch(ctx, req)
	if err != nil {
		return api.StateResponse{}, err
	}
	for {
		state, err := c.SearchState(ctx)
		if err != nil {
			return api.StateResponse{}, err
		}
		if state.Sequence >= issued.Sequence && state.Status != string(search.StatusSearching) {
			return state, nil
		}
		select {
		case <-time.After(25 * time.Millisecond):
		case <-ctx.Done():
			return api.StateResponse{}, ctx.Err()
		}
	}
}

// FetchMessages returns the daemon's corpus snapshot. Part of
// search.Corpus.
func (c *Client) FetchMessages(ctx context.Context) ([]search.Message, error) {
	var wire []api.Message
	if err := c.get(ctx, "/api/v1/messages", &wire); err != nil {
		return nil, err
	}
	msgs := make([]search.Message, 0, len(wire))
	for _, m := range wire {
		msgs = append(msgs, messageFromWire(m))
	}
	return msgs, nil
}

// LookupUser resolves a user by ID. Part of search.Corpus.
func (c *Client) LookupUser(ctx context.Context, id string) (search.User, error) {
	var u api.User
	if err := c.get(ctx, "/api/v1/users/"+id, &u); err != nil {
		return search.User{}, err
	}
	return search.User(u), nil
}

// LookupChannel resolves a channel by ID. Part of search.Corpus.
func (c *Client) LookupChannel(ctx context.Context, id string) (search.Channel, error) {
	var ch api.Channel
	if err := c.get(ctx, "/api/v1/channels/"+id, &ch); err != nil {
		return search.Channel{}, err
	}
	return search.Channel(ch), nil
}

// ListChannels returns all known channels.
func (c *Client) ListChannels(ctx context.Context) ([]search.Channel, error) {
	var wire []api.Channel
	if err := c.get(ctx, "/api/v1/channels", &wire); err != nil {
		return nil, err
	}
	out := make([]search.Channel, 0, len(wire))
	for _, ch := range wire {
		out = append(out, search.Channel(ch))
	}
	return out, nil
}

// IngestBatch sends a batch of messages to the daemon.
func (c *Client) IngestBatch(ctx context.Context, msgs []search.Message) error {
	wire := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		wire = append(wire, messageToWire(m))
	}
	return c.post(ctx, "/api/v1/messages/batch", wire, nil)
}

// IngestUser sends a reference user record to the daemon.
func (c *Client) IngestUser(ctx context.Context, u search.User) error {
	return c.post(ctx, "/api/v1/users", api.User(u), nil)
}

// IngestChannel sends a reference channel record to the daemon.
func (c *Client) IngestChannel(ctx context.Context, ch search.Channel) error {
	return c.post(ctx, "/api/v1/channels", api.Channel(ch), nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(body))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func messageFromWire(m api.Message) search.Message {
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

func messageToWire(m search.Message) api.Message {
	out := api.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	for _, a := range m.Attachments {
		out.Attachments = append(out.Attachments, api.Attachment(a))
	}
	return out
}
