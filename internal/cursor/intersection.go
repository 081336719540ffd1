package cursor

import (
	"tagd/internal/order"
	"tagd/internal/store"
)

// intersectionCursor returns topics present in every child, found by a
// cyclic round-robin scan: track a candidate "oldest" head and visit
// children cyclically, fast-forwarding any child that lags behind it,
// until a full cycle confirms agreement.
type intersectionCursor struct {
	children []Cursor
	current  *store.Topic
}

// Intersection combines cursors so the result holds only topics present
// in every one of them.
func Intersection(children ...Cursor) Cursor {
	x := &intersectionCursor{children: children}
	x.refresh()
	return x
}

func (x *intersectionCursor) refresh() {
	n := len(x.children)
	if n == 0 {
		x.current = nil
		return
	}
	for _, c := range x.children {
		if c.Peek() == nil {
			x.current = nil
			return
		}
	}

	oldest := x.children[0].Peek()
	oldestIdx := 0
	idx := 1
	for {
		if idx >= n {
			idx = 0
		}
		head := x.children[idx].Peek()
		if head == nil {
			x.current = nil
			return
		}
		if oldestIdx == idx {
			// Cycled back to the candidate without a fast-forward: it's
			// present in every child.
			x.current = oldest
			return
		}

		switch {
		case order.Less(oldest.Key(), head.Key()):
			// head is older than the candidate (further along the
			// descending order); it becomes the new candidate and we
			// keep scanning forward.
			oldest = head
			oldestIdx = idx
			idx++
		case order.Less(head.Key(), oldest.Key()):
			// head lags the candidate; fast-forward it and retry the
			// same index.
			x.children[idx].FastForward(oldest.Key())
		default:
			// Same topic in both; move on.
			idx++
		}
	}
}

func (x *intersectionCursor) Peek() *store.Topic { return x.current }

func (x *intersectionCursor) Advance() {
	if x.current == nil {
		panic("tagd/cursor: advance past end of intersection cursor")
	}
	for _, c := range x.children {
		c.Advance()
	}
	x.refresh()
}

func (x *intersectionCursor) FastForward(ref order.Key) {
	for _, c := range x.children {
		if head := c.Peek(); head != nil && order.Less(head.Key(), ref) {
			c.FastForward(ref)
		}
	}
	x.refresh()
}

func (x *intersectionCursor) Max() int {
	min := -1
	for _, c := range x.children {
		if m := c.Max(); min == -1 || m < min {
			min = m
		}
	}
	if min == -1 {
		return 0
	}
	return min
}
