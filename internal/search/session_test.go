package search

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/bus"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func TestSessionStartsIdle(t *testing.T) {
	s := NewSession(NewEngine(scenarioCorpus(), nil), nil, nil, 0)
	if s.Status() != StatusIdle {
		t.Errorf("status = %s, want IDLE", s.Status())
	}
	if snap := s.Snapshot(); snap.Sequence != 0 {
		t.Errorf("sequence = %d, want 0", snap.Sequence)
	}
}

func TestSequenceStartsAtOneAndIncreases(t *testing.T) {
	s := NewSession(NewEngine(scenarioCorpus(), nil), nil, nil, 0)
	ctx := context.Background()
	for want := uint64(1); want <= 3; want++ {
		if got := s.Issue(ctx, "", Filters{}); got != want {
			t.Errorf("Issue sequence = %d, want %d", got, want)
		}
	}
}

func TestIssueEntersSearching(t *testing.T) {
	corpus := newGatedCorpus()
	s := NewSession(NewEngine(corpus, nil), nil, nil, 0)

	s.Issue(context.Background(), "hello", Filters{})
	<-corpus.ready

	if s.Status() != StatusSearching {
		t.Errorf("status = %s, want SEARCHING", s.Status())
	}
	corpus.release(0, fetchOutcome{})
	waitFor(t, "success", func() bool { return s.Status() == StatusSuccess })
}

func TestIssueSuccess(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe(bus.KindSearchCompleted, 10)
	defer unsub()

	s := NewSession(NewEngine(scenarioCorpus(), nil), b, nil, 0)
	seq := s.Issue(context.Background(), "file", Filters{})

	select {
	case evt := <-ch:
		done, ok := evt.Payload.(Completed)
		if !ok {
			t.Fatalf("payload type = %T, want Completed", evt.Payload)
		}
		if done.Sequence != seq || done.Results != 1 {
			t.Errorf("completed = %+v, want sequence=%d results=1", done, seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for search.completed")
	}

	snap := s.Snapshot()
	if snap.Status != StatusSuccess {
		t.Errorf("status = %s, want SUCCESS", snap.Status)
	}
	if got := resultIDs(snap.Results); !slices.Equal(got, []string{"msg2"}) {
		t.Errorf("results = %v, want [msg2]", got)
	}
}

// TestLastIssuedWins covers the core ordering guarantee: B is issued
// after A, A's fetch completes after B's, and A's result must never
// surface.
func TestLastIssuedWins(t *testing.T) {
	corpus := newGatedCorpus()
	s := NewSession(NewEngine(corpus, nil), nil, nil, 0)
	ctx := context.Background()

	seqA := s.Issue(ctx, "a", Filters{})
	<-corpus.ready
	seqB := s.Issue(ctx, "b", Filters{})
	<-corpus.ready

	// B completes first and becomes the current result.
	corpus.release(1, fetchOutcome{msgs: []Message{{ID: "from-b", CreatedAt: 1}}})
	waitFor(t, "B's success", func() bool { return s.Status() == StatusSuccess })

	// A completes late; its result must be discarded without a state change.
	corpus.release(0, fetchOutcome{msgs: []Message{{ID: "from-a", CreatedAt: 1}}})
	time.Sleep(50 * time.Millisecond)

	snap := s.Snapshot()
	if snap.Sequence != seqB {
		t.Errorf("sequence = %d, want %d", snap.Sequence, seqB)
	}
	if got := resultIDs(snap.Results); !slices.Equal(got, []string{"from-b"}) {
		t.Errorf("results = %v, want [from-b] (A=%d must not win)", got, seqA)
	}
	if snap.Status != StatusSuccess {
		t.Errorf("status = %s, want SUCCESS", snap.Status)
	}
}

func TestStaleFailureDiscarded(t *testing.T) {
	corpus := newGatedCorpus()
	s := NewSession(NewEngine(corpus, nil), nil, nil, 0)
	ctx := context.Background()

	s.Issue(ctx, "a", Filters{})
	<-corpus.ready
	s.Issue(ctx, "b", Filters{})
	<-corpus.ready

	corpus.release(1, fetchOutcome{msgs: []Message{{ID: "ok"}}})
	waitFor(t, "B's success", func() bool { return s.Status() == StatusSuccess })

	// A fails late; the error must not surface.
	corpus.release(0, fetchOutcome{err: errors.New("boom")})
	time.Sleep(50 * time.Millisecond)

	snap := s.Snapshot()
	if snap.Status != StatusSuccess || snap.Err != nil {
		t.Errorf("status = %s err = %v, stale failure leaked", snap.Status, snap.Err)
	}
}

func TestCurrentFailureSurfaces(t *testing.T) {
	c := scenarioCorpus()
	c.err = errors.New("disk on fire")
	s := NewSession(NewEngine(c, nil), nil, nil, 0)

	s.Issue(context.Background(), "", Filters{})
	waitFor(t, "error state", func() bool { return s.Status() == StatusError })

	snap := s.Snapshot()
	if !errors.Is(snap.Err, ErrCorpusUnavailable) {
		t.Errorf("err = %v, want ErrCorpusUnavailable", snap.Err)
	}
	if snap.Results != nil {
		t.Errorf("results = %v, want none on error", snap.Results)
	}
}

func TestIssueRecoversFromError(t *testing.T) {
	c := scenarioCorpus()
	c.err = errors.New("transient")
	s := NewSession(NewEngine(c, nil), nil, nil, 0)
	ctx := context.Background()

	s.Issue(ctx, "", Filters{})
	waitFor(t, "error state", func() bool { return s.Status() == StatusError })

	c.mu.Lock()
	c.err = nil
	c.mu.Unlock()

	s.Issue(ctx, "", Filters{})
	waitFor(t, "recovery", func() bool { return s.Status() == StatusSuccess })
	if snap := s.Snapshot(); snap.Err != nil {
		t.Errorf("err = %v, want nil after recovery", snap.Err)
	}
}

func TestRefreshReissuesLastPair(t *testing.T) {
	s := NewSession(NewEngine(scenarioCorpus(), nil), nil, nil, 0)
	ctx := context.Background()

	filters := Filters{ChannelID: "general"}
	first := s.Issue(ctx, "file", filters)
	waitFor(t, "first success", func() bool {
		snap := s.Snapshot()
		return snap.Status == StatusSuccess && snap.Sequence == first
	})

	refreshed := s.Refresh(ctx)
	if refreshed != first+1 {
		t.Errorf("refresh sequence = %d, want %d", refreshed, first+1)
	}
	waitFor(t, "refresh success", func() bool {
		snap := s.Snapshot()
		return snap.Status == StatusSuccess && snap.Sequence == refreshed
	})

	snap := s.Snapshot()
	if snap.Query != "file" || snap.Filters != filters {
		t.Errorf("refresh pair = (%q, %+v), want (file, %+v)", snap.Query, snap.Filters, filters)
	}
	if got := resultIDs(snap.Results); !slices.Equal(got, []string{"msg2"}) {
		t.Errorf("results = %v, want [msg2]", got)
	}
}

func TestRefreshOnFreshSessionIssuesMatchAll(t *testing.T) {
	s := NewSession(NewEngine(scenarioCorpus(), nil), nil, nil, 0)

	s.Refresh(context.Background())
	waitFor(t, "success", func() bool { return s.Status() == StatusSuccess })

	if snap := s.Snapshot(); len(snap.Results) != 5 {
		t.Errorf("got %d results, want the whole corpus", len(snap.Results))
	}
}

// TestDebounceCoalesces issues a burst of queries inside one debounce
// window and verifies only the last one reaches the corpus.
func TestDebounceCoalesces(t *testing.T) {
	c := scenarioCorpus()
	s := NewSession(NewEngine(c, nil), nil, nil, 40*time.Millisecond)
	ctx := context.Background()

	for _, q := range []string{"f", "fi", "fil", "file"} {
		s.Issue(ctx, q, Filters{})
	}
	waitFor(t, "success", func() bool { return s.Status() == StatusSuccess })

	if n := c.fetches.Load(); n != 1 {
		t.Errorf("corpus fetches = %d, want 1 (burst should coalesce)", n)
	}
	snap := s.Snapshot()
	if snap.Query != "file" {
		t.Errorf("surviving query = %q, want the last one", snap.Query)
	}
	if got := resultIDs(snap.Results); !slices.Equal(got, []string{"msg2"}) {
		t.Errorf("results = %v, want [msg2]", got)
	}
}

func TestTransitionsPublishStatusEvents(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe(bus.KindSearchStatusChanged, 10)
	defer unsub()

	s := NewSession(NewEngine(scenarioCorpus(), nil), b, nil, 0)
	s.Issue(context.Background(), "", Filters{})

	want := []StatusChange{
		{From: StatusIdle, To: StatusSearching, Sequence: 1},
		{From: StatusSearching, To: StatusSuccess, Sequence: 1},
	}
	for _, w := range want {
		select {
		case evt := <-ch:
			change, ok := evt.Payload.(StatusChange)
			if !ok {
				t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
			}
			if change != w {
				t.Errorf("change = %+v, want %+v", change, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for %+v", w)
		}
	}
}

func TestSnapshotResultsAreIsolated(t *testing.T) {
	s := NewSession(NewEngine(scenarioCorpus(), nil), nil, nil, 0)
	s.Issue(context.Background(), "", Filters{})
	waitFor(t, "success", func() bool { return s.Status() == StatusSuccess })

	snap := s.Snapshot()
	if len(snap.Results) == 0 {
		t.Fatal("no results")
	}
	snap.Results[0].Message.ID = "mutated"

	if again := s.Snapshot(); again.Results[0].Message.ID == "mutated" {
		t.Error("snapshot shares backing array with session state")
	}
}

func TestCancelledContextAbandonsQuery(t *testing.T) {
	corpus := newGatedCorpus()
	s := NewSession(NewEngine(corpus, nil), nil, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	s.Issue(ctx, "", Filters{})
	<-corpus.ready
	cancel()

	// The fetch returns ctx.Err(); the query is still current, so the
	// session surfaces it as an error like any other corpus failure.
	waitFor(t, "error state", func() bool { return s.Status() == StatusError })
}
