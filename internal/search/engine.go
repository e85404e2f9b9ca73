package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Corpus supplies the searchable message set and the reference entities
// joined into results. FetchMessages returns a consistent (possibly
// stale) snapshot per call. Lookups resolve missing entities to zero
// values without error; the engine falls back to raw IDs for display.
type Corpus interface {
	FetchMessages(ctx context.Context) ([]Message, error)
	LookupUser(ctx context.Context, id string) (User, error)
	LookupChannel(ctx context.Context, id string) (Channel, error)
}

// Engine executes one search over a corpus: facet filters first, then
// the text matcher, then recency ranking and display-name enrichment.
// An Engine is stateless and safe for concurrent use.
type Engine struct {
	corpus Corpus
	logger *zap.Logger
}

// NewEngine creates an engine over the given corpus.
func NewEngine(corpus Corpus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{corpus: corpus, logger: logger}
}

// Execute runs a single query and returns the ranked, enriched results.
// A failed corpus fetch is reported as ErrCorpusUnavailable; lookup
// failures only degrade display names, never the match set.
func (e *Engine) Execute(ctx context.Context, raw string, filters Filters) ([]Result, error) {
	query := Normalize(raw)

	msgs, err := e.corpus.FetchMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}

	users := make(map[string]User)
	var matched []Message
	for i := range msgs {
		m := &msgs[i]
		if !filters.Match(m) {
			continue
		}
		author, ok := users[m.AuthorID]
		if !ok {
			author = e.lookupUser(ctx, m.AuthorID)
			users[m.AuthorID] = author
		}
		if !Matches(query, m, author) {
			continue
		}
		matched = append(matched, *m)
	}

	ranked := Rank(matched)

	channels := make(map[string]Channel)
	results := make([]Result, 0, len(ranked))
	for _, m := range ranked {
		ch, ok := channels[m.ChannelID]
		if !ok {
			ch = e.lookupChannel(ctx, m.ChannelID)
			channels[m.ChannelID] = ch
		}
		results = append(results, enrich(m, users[m.AuthorID], ch))
	}

	e.logger.Debug("query executed",
		zap.String("query", string(query)),
		zap.Int("corpus", len(msgs)),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func (e *Engine) lookupUser(ctx context.Context, id string) User {
	u, err := e.corpus.LookupUser(ctx, id)
	if err != nil {
		e.logger.Warn("user lookup failed", zap.String("user_id", id), zap.Error(err))
		return User{ID: id}
	}
	return u
}

func (e *Engine) lookupChannel(ctx context.Context, id string) Channel {
	ch, err := e.corpus.LookupChannel(ctx, id)
	if err != nil {
		e.logger.Warn("channel lookup failed", zap.String("channel_id", id), zap.Error(err))
		return Channel{ID: id}
	}
	return ch
}

// enrich joins display names into a result, falling back to raw IDs
// when the reference entities are unknown.
func enrich(m Message, author User, ch Channel) Result {
	r := Result{
		Message:      m,
		AuthorName:   author.DisplayName,
		AuthorHandle: author.Username,
		ChannelName:  ch.Name,
		ServerName:   ch.ServerName,
	}
	if r.AuthorName == "" {
		r.AuthorName = m.AuthorID
	}
	if r.ChannelName == "" {
		r.ChannelName = m.ChannelID
	}
	return r
}
