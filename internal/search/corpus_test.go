package search

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// fakeCorpus is an in-memory corpus for engine and session tests.
type fakeCorpus struct {
	mu       sync.Mutex
	msgs     []Message
	users    map[string]User
	channels map[string]Channel
	err      error
	fetches  atomic.Int32
}

func (c *fakeCorpus) FetchMessages(_ context.Context) ([]Message, error) {
	c.fetches.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return slices.Clone(c.msgs), nil
}

func (c *fakeCorpus) LookupUser(_ context.Context, id string) (User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.users[id], nil
}

func (c *fakeCorpus) LookupChannel(_ context.Context, id string) (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels[id], nil
}

// scenarioCorpus builds the five-message demo corpus used across the
// engine tests: a small server with general/random/announcements/help
// channels and one attachment-bearing message.
func scenarioCorpus() *fakeCorpus {
	return &fakeCorpus{
		msgs: []Message{
			{ID: "msg1", ChannelID: "general", AuthorID: "alice", Content: "Welcome to the general channel", CreatedAt: 1000},
			{ID: "msg2", ChannelID: "general", AuthorID: "bob", Content: "I uploaded the project files to the shared drive", CreatedAt: 2000,
				Attachments: []Attachment{{ID: "att1", Filename: "roadmap.pdf", ContentType: "application/pdf", Size: 48211}}},
			{ID: "msg3", ChannelID: "random", AuthorID: "alice", Content: "Anyone seen the new design mockups?", CreatedAt: 3000},
			{ID: "msg4", ChannelID: "announcements", AuthorID: "carol", Content: "Server maintenance scheduled for Sunday", CreatedAt: 4000},
			{ID: "msg5", ChannelID: "help", AuthorID: "dave", Content: "Having a login issue on mobile", CreatedAt: 5000},
		},
		users: map[string]User{
			"alice": {ID: "alice", DisplayName: "Alice", Username: "alice"},
			"bob":   {ID: "bob", DisplayName: "Bob Santos", Username: "bsantos"},
			"carol": {ID: "carol", DisplayName: "Carol", Username: "carol"},
			"dave":  {ID: "dave", DisplayName: "Dave", Username: "dave"},
		},
		channels: map[string]Channel{
			"general":       {ID: "general", Name: "general", ServerName: "Hearth HQ"},
			"random":        {ID: "random", Name: "random", ServerName: "Hearth HQ"},
			"announcements": {ID: "announcements", Name: "announcements", ServerName: "Hearth HQ"},
			"help":          {ID: "help", Name: "help", ServerName: "Hearth HQ"},
		},
	}
}

// gatedCorpus blocks every FetchMessages call until the test releases
// it, so tests can force completions out of issue order.
type gatedCorpus struct {
	fakeCorpus
	mu    sync.Mutex
	calls []chan fetchOutcome
	ready chan struct{}
}

type fetchOutcome struct {
	msgs []Message
	err  error
}

func newGatedCorpus() *gatedCorpus {
	return &gatedCorpus{ready: make(chan struct{}, 16)}
}

func (c *gatedCorpus) FetchMessages(ctx context.Context) ([]Message, error) {
	ch := make(chan fetchOutcome)
	c.mu.Lock()
	c.calls = append(c.calls, ch)
	c.mu.Unlock()
	c.ready <- struct{}{}

	select {
	case out := <-ch:
		return out.msgs, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release completes the i-th fetch (in call order) with the given outcome.
func (c *gatedCorpus) release(i int, out fetchOutcome) {
	c.mu.Lock()
	ch := c.calls[i]
	c.mu.Unlock()
	ch <- out
}
