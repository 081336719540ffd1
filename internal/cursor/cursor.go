// Package cursor implements a lazy topic-iterator protocol:
// peek/advance/fast-forward over a descending (ts, id) stream of topics
// without duplicates, plus five implementations (null, basic, union,
// intersection, difference) built on top of it.
package cursor

import (
	"tagd/internal/order"
	"tagd/internal/store"
)

// Cursor produces topic references in descending canonical order without
// duplicates. Advance is undefined when Peek returns nil; FastForward's
// precondition is that the current head strictly precedes ref.
type Cursor interface {
	// Peek returns the current head, or nil if exhausted. Stable across
	// repeated calls.
	Peek() *store.Topic
	// Advance moves past the current head.
	Advance()
	// FastForward repositions so the new head is the first element
	// at-or-after ref in the canonical order.
	FastForward(ref order.Key)
	// Max is an upper bound on the number of elements the cursor can
	// still produce.
	Max() int
}
