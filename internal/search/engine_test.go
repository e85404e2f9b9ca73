package search

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func resultIDs(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Message.ID
	}
	return out
}

func TestExecuteTextQuery(t *testing.T) {
	e := NewEngine(scenarioCorpus(), nil)

	// "file" matches "files" by substring; nothing else in the corpus
	// contains it.
	results, err := e.Execute(context.Background(), "file", Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if got := resultIDs(results); !slices.Equal(got, []string{"msg2"}) {
		t.Errorf("results = %v, want [msg2]", got)
	}
}

func TestExecuteChannelFilter(t *testing.T) {
	e := NewEngine(scenarioCorpus(), nil)

	results, err := e.Execute(context.Background(), "", Filters{ChannelID: "general"})
	if err != nil {
		t.Fatal(err)
	}
	if got := resultIDs(results); !slices.Equal(got, []string{"msg2", "msg1"}) {
		t.Errorf("results = %v, want [msg2 msg1] (recency order)", got)
	}
}

func TestExecuteAttachmentFilter(t *testing.T) {
	e := NewEngine(scenarioCorpus(), nil)

	results, err := e.Execute(context.Background(), "", Filters{HasFile: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := resultIDs(results); !slices.Equal(got, []string{"msg2"}) {
		t.Errorf("results = %v, want [msg2]", got)
	}
	for _, r := range results {
		if len(r.Message.Attachments) == 0 {
			t.Errorf("result %s has no attachments under HasFile", r.Message.ID)
		}
	}
}

func TestExecuteUnconstrainedReturnsWholeCorpus(t *testing.T) {
	c := scenarioCorpus()
	e := NewEngine(c, nil)

	results, err := e.Execute(context.Background(), "", Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(c.msgs) {
		t.Fatalf("got %d results, want %d", len(results), len(c.msgs))
	}
	want := []string{"msg5", "msg4", "msg3", "msg2", "msg1"}
	if got := resultIDs(results); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestExecuteConjunction(t *testing.T) {
	e := NewEngine(scenarioCorpus(), nil)

	// Channel + author + text must all hold.
	results, err := e.Execute(context.Background(), "welcome", Filters{ChannelID: "general", AuthorID: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if got := resultIDs(results); !slices.Equal(got, []string{"msg1"}) {
		t.Errorf("results = %v, want [msg1]", got)
	}

	// Same text, wrong author: empty.
	results, err = e.Execute(context.Background(), "welcome", Filters{AuthorID: "bob"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", resultIDs(results))
	}
}

func TestExecuteMatchesAuthorNames(t *testing.T) {
	e := NewEngine(scenarioCorpus(), nil)

	// "santos" appears only in bob's display name.
	results, err := e.Execute(context.Background(), "santos", Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if got := resultIDs(results); !slices.Equal(got, []string{"msg2"}) {
		t.Errorf("results = %v, want [msg2]", got)
	}
}

func TestExecuteNoDuplicates(t *testing.T) {
	e := NewEngine(scenarioCorpus(), nil)

	results, err := e.Execute(context.Background(), "", Filters{})
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.Message.ID] {
			t.Errorf("duplicate result %s", r.Message.ID)
		}
		seen[r.Message.ID] = true
	}
}

func TestExecuteDeterministic(t *testing.T) {
	e := NewEngine(scenarioCorpus(), nil)

	first, err := e.Execute(context.Background(), "e", Filters{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Execute(context.Background(), "e", Filters{})
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(resultIDs(first), resultIDs(again)) {
			t.Fatalf("run %d order = %v, want %v", i, resultIDs(again), resultIDs(first))
		}
	}
}

func TestExecuteEnrichment(t *testing.T) {
	e := NewEngine(scenarioCorpus(), nil)

	results, err := e.Execute(context.Background(), "file", Filters{})
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if r.AuthorName != "Bob Santos" || r.AuthorHandle != "bsantos" {
		t.Errorf("author = %q/%q, want Bob Santos/bsantos", r.AuthorName, r.AuthorHandle)
	}
	if r.ChannelName != "general" || r.ServerName != "Hearth HQ" {
		t.Errorf("channel = %q/%q, want general/Hearth HQ", r.ChannelName, r.ServerName)
	}
}

func TestExecuteUnknownEntitiesFallBackToIDs(t *testing.T) {
	c := scenarioCorpus()
	c.users = map[string]User{}
	c.channels = map[string]Channel{}
	e := NewEngine(c, nil)

	results, err := e.Execute(context.Background(), "welcome", Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].AuthorName != "alice" || results[0].ChannelName != "general" {
		t.Errorf("fallback names = %q/%q, want raw IDs", results[0].AuthorName, results[0].ChannelName)
	}
}

func TestExecuteCorpusFailure(t *testing.T) {
	c := scenarioCorpus()
	c.err = errors.New("disk on fire")
	e := NewEngine(c, nil)

	_, err := e.Execute(context.Background(), "", Filters{})
	if !errors.Is(err, ErrCorpusUnavailable) {
		t.Errorf("err = %v, want ErrCorpusUnavailable", err)
	}
}
