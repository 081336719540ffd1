package cursor

import (
	"tagd/internal/order"
	"tagd/internal/store"
)

// unionCursor returns topics present in any child, in canonical order.
type unionCursor struct {
	children []Cursor
	current  *store.Topic
}

// Union combines cursors so the result holds any topic present in at
// least one of them.
func Union(children ...Cursor) Cursor {
	u := &unionCursor{children: children}
	u.refresh()
	return u
}

func (u *unionCursor) refresh() {
	var current *store.Topic
	for _, c := range u.children {
		head := c.Peek()
		if head == nil {
			continue
		}
		if current == nil || order.Less(head.Key(), current.Key()) {
			current = head
		}
	}
	u.current = current
}

func (u *unionCursor) Peek() *store.Topic { return u.current }

func (u *unionCursor) Advance() {
	if u.current == nil {
		panic("tagd/cursor: advance past end of union cursor")
	}
	for _, c := range u.children {
		if head := c.Peek(); head != nil && head.Key() == u.current.Key() {
			c.Advance()
		}
	}
	u.refresh()
}

func (u *unionCursor) FastForward(ref order.Key) {
	for _, c := range u.children {
		if head := c.Peek(); head != nil && order.Less(head.Key(), ref) {
			c.FastForward(ref)
		}
	}
	u.refresh()
}

func (u *unionCursor) Max() int {
	max := 0
	for _, c := range u.children {
		if m := c.Max(); m > max {
			max = m
		}
	}
	return max
}
