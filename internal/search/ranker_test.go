package search

import (
	"slices"
	"testing"
)

func TestRankMostRecentFirst(t *testing.T) {
	msgs := []Message{
		{ID: "a", CreatedAt: 1000},
		{ID: "b", CreatedAt: 3000},
		{ID: "c", CreatedAt: 2000},
	}
	ranked := Rank(msgs)
	got := ids(ranked)
	want := []string{"b", "c", "a"}
	if !slices.Equal(got, want) {
		t.Errorf("Rank order = %v, want %v", got, want)
	}
}

func TestRankTieBreaksByID(t *testing.T) {
	msgs := []Message{
		{ID: "z", CreatedAt: 1000},
		{ID: "a", CreatedAt: 1000},
		{ID: "m", CreatedAt: 1000},
	}
	got := ids(Rank(msgs))
	want := []string{"a", "m", "z"}
	if !slices.Equal(got, want) {
		t.Errorf("tie-break order = %v, want %v", got, want)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	msgs := []Message{
		{ID: "a", CreatedAt: 1000},
		{ID: "b", CreatedAt: 2000},
	}
	_ = Rank(msgs)
	if msgs[0].ID != "a" || msgs[1].ID != "b" {
		t.Errorf("input mutated: %v", ids(msgs))
	}
}

func TestRankDeterministic(t *testing.T) {
	msgs := []Message{
		{ID: "d", CreatedAt: 2000},
		{ID: "b", CreatedAt: 3000},
		{ID: "a", CreatedAt: 2000},
		{ID: "c", CreatedAt: 1000},
	}
	first := ids(Rank(msgs))
	for i := 0; i < 10; i++ {
		if got := ids(Rank(msgs)); !slices.Equal(got, first) {
			t.Fatalf("run %d order = %v, want %v", i, got, first)
		}
	}
}

func ids(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
