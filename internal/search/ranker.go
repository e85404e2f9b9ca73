package search

import (
	"cmp"
	"slices"
)

// Rank orders messages most recent first. Equal timestamps fall back to
// ascending message ID so repeated searches over an unchanged corpus
// produce identical orderings. The input slice is not modified.
func Rank(msgs []Message) []Message {
	out := slices.Clone(msgs)
	slices.SortFunc(out, func(a, b Message) int {
		if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
