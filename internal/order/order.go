// Package order defines the total order shared by every topic set in the
// index: newest timestamp first, ties broken by larger id first.
package order

import "github.com/huandu/skiplist"

// Key is the ordering key of a topic: a timestamp and an id. It doubles as
// the synthetic "probe" key used to fast-forward a cursor to an arbitrary
// position without needing a real topic.
type Key struct {
	TS uint32
	ID uint64
}

// Less reports whether a sorts before b in the canonical order: newer
// timestamp first, larger id first on a tie.
func Less(a, b Key) bool {
	if a.TS != b.TS {
		return a.TS > b.TS
	}
	return a.ID > b.ID
}

// Probe builds a search-only key for fast-forwarding to the first topic
// at-or-after ts, regardless of id.
func Probe(ts uint32) Key {
	return Key{TS: ts, ID: 0}
}

// comparable adapts Key to github.com/huandu/skiplist's Comparable
// interface so every ordered topic set can be backed directly by a
// *skiplist.SkipList.
type comparable struct{}

// Comparable is the shared comparator passed to skiplist.New for every
// per-tag and per-word topic set.
var Comparable skiplist.Comparable = comparable{}

func (comparable) Compare(lhs, rhs interface{}) int {
	a, b := lhs.(Key), rhs.(Key)
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}

// CalcScore gives the skip list a fast leveling hint. It only needs to be
// monotonic with Compare, not exact, since Compare is always the tie
// breaker: descending ts dominates, descending id is the secondary term,
// scaled into [0, 1e10] so it never outweighs a one-second ts step.
func (comparable) CalcScore(key interface{}) float64 {
	k := key.(Key)
	return -(float64(k.TS)*1e10 + float64(k.ID)/(1<<64)*1e10)
}
