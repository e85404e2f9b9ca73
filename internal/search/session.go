package search

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/bus"
	"go.uber.org/zap"
)

// Status is the externally visible state of a search session.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusSearching Status = "SEARCHING"
	StatusSuccess   Status = "SUCCESS"
	StatusError     Status = "ERROR"
)

// validTransitions defines allowed session state transitions. Issuing a
// query preempts whatever is in flight, so Searching re-enters itself.
var validTransitions = map[Status][]Status{
	StatusIdle:      {StatusSearching},
	StatusSearching: {StatusSearching, StatusSuccess, StatusError},
	StatusSuccess:   {StatusSearching},
	StatusError:     {StatusSearching},
}

// StatusChange is the payload of search.status_changed events.
type StatusChange struct {
	From     Status
	To       Status
	Sequence uint64
}

// Completed is the payload of search.completed events.
type Completed struct {
	Sequence uint64
	Query    string
	Results  int
}

// Session owns the lifecycle of one search surface's queries over time.
// Each Issue gets the next sequence number; a completing query applies
// its outcome only while its sequence is still the session's current
// one, so results surface in issue order regardless of completion
// order. Stale completions — successes and failures alike — are
// silently discarded.
//
// The optional debounce window delays the corpus fetch after each
// issue; a query superseded within the window never fetches at all.
// Correctness does not depend on the window: with zero debounce every
// keystroke still resolves to a last-issued-wins outcome.
type Session struct {
	engine   *Engine
	bus      *bus.Bus
	logger   *zap.Logger
	debounce time.Duration

	seq atomic.Uint64

	mu          sync.RWMutex
	status      Status
	lastQuery   string
	lastFilters Filters
	results     []Result
	err         error
}

// NewSession creates an idle session over the given engine. The bus is
// optional; when present, state transitions and completions are
// published on it. debounce <= 0 disables coalescing.
func NewSession(engine *Engine, b *bus.Bus, logger *zap.Logger, debounce time.Duration) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		engine:   engine,
		bus:      b,
		logger:   logger,
		debounce: debounce,
		status:   StatusIdle,
	}
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Status   Status
	Sequence uint64
	Query    string
	Filters  Filters
	Results  []Result
	Err      error
}

// Issue starts a new search, superseding any in-flight one, and returns
// the assigned sequence number. The result is delivered asynchronously
// via Snapshot and bus events. ctx scopes the corpus fetch; it should
// outlive the surface, not the individual query.
func (s *Session) Issue(ctx context.Context, query string, filters Filters) uint64 {
	seq := s.seq.Add(1)

	s.mu.Lock()
	// A later Issue may already have run between the counter bump and
	// here; never let this one clobber its stored query pair.
	if seq == s.seq.Load() {
		s.lastQuery = query
		s.lastFilters = filters
	}
	s.transitionLocked(StatusSearching, seq)
	s.mu.Unlock()

	go s.run(ctx, seq, query, filters)
	return seq
}

// Refresh re-issues the last query and filters. On a fresh session this
// issues the unconstrained match-all query.
func (s *Session) Refresh(ctx context.Context) uint64 {
	s.mu.RLock()
	query, filters := s.lastQuery, s.lastFilters
	s.mu.RUnlock()
	return s.Issue(ctx, query, filters)
}

// Status returns the current session status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Snapshot returns a copy of the current session state. The results
// slice is cloned so callers can hold it across later issues.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Status:   s.status,
		Sequence: s.seq.Load(),
		Query:    s.lastQuery,
		Filters:  s.lastFilters,
		Results:  slices.Clone(s.results),
		Err:      s.err,
	}
}

func (s *Session) run(ctx context.Context, seq uint64, query string, filters Filters) {
	if s.debounce > 0 {
		timer := time.NewTimer(s.debounce)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
		// Superseded within the window: skip the fetch entirely.
		if seq != s.seq.Load() {
			return
		}
	}

	results, err := s.engine.Execute(ctx, query, filters)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq.Load() {
		// Stale: a newer issue owns the session. No visible transition.
		s.logger.Debug("discarding stale completion",
			zap.Uint64("sequence", seq),
			zap.Uint64("current", s.seq.Load()),
		)
		return
	}

	if err != nil {
		s.results = nil
		s.err = err
		s.transitionLocked(StatusError, seq)
		s.logger.Warn("search failed", zap.Uint64("sequence", seq), zap.Error(err))
		return
	}

	s.results = results
	s.err = nil
	s.transitionLocked(StatusSuccess, seq)

	if s.bus != nil {
		s.bus.Publish(bus.Event{
			Kind:      bus.KindSearchCompleted,
			Timestamp: time.Now(),
			Payload:   Completed{Sequence: seq, Query: query, Results: len(results)},
		})
	}
}

// transitionLocked moves the session to a new status and publishes the
// change. Callers hold s.mu.
func (s *Session) transitionLocked(to Status, seq uint64) {
	if !slices.Contains(validTransitions[s.status], to) {
		// Unreachable with the transitions Issue/run perform; guard
		// against future callers all the same.
		s.logger.Error("invalid transition",
			zap.String("from", string(s.status)),
			zap.String("to", string(to)),
		)
		return
	}
	from := s.status
	s.status = to
	if s.bus != nil {
		s.bus.Publish(bus.Event{
			Kind:      bus.KindSearchStatusChanged,
			Timestamp: time.Now(),
			Payload:   StatusChange{From: from, To: to, Sequence: seq},
		})
	}
}
