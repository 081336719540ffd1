package cursor

import (
	"github.com/huandu/skiplist"

	"tagd/internal/order"
	"tagd/internal/store"
)

// basicCursor wraps an ordered topic set, delegating directly to the
// underlying skip list's element chain.
type basicCursor struct {
	set  *skiplist.SkipList
	elem *skiplist.Element
}

// Basic wraps an ordered topic set (a tag's or a word's Topics) as a
// cursor.
func Basic(set *skiplist.SkipList) Cursor {
	return &basicCursor{set: set, elem: set.Front()}
}

func (c *basicCursor) Peek() *store.Topic {
	if c.elem == nil {
		return nil
	}
	return c.elem.Value.(*store.Topic)
}

func (c *basicCursor) Advance() {
	if c.elem == nil {
		panic("tagd/cursor: advance past end of basic cursor")
	}
	c.elem = c.elem.Next()
}

func (c *basicCursor) FastForward(ref order.Key) {
	if c.elem == nil {
		panic("tagd/cursor: fast-forward past end of basic cursor")
	}
	c.elem = c.set.FindNext(c.elem, ref)
}

func (c *basicCursor) Max() int {
	return c.set.Len()
}
