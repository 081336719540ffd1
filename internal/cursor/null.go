package cursor

import (
	"tagd/internal/order"
	"tagd/internal/store"
)

type nullCursor struct{}

// Null returns the empty cursor. Advancing or fast-forwarding it is a
// programmer error — it indicates a bug in the compiler, not caller
// misuse — so both panic rather than returning a zero value.
func Null() Cursor {
	return nullCursor{}
}

func (nullCursor) Peek() *store.Topic { return nil }

func (nullCursor) Advance() {
	panic("tagd/cursor: advance on null cursor")
}

func (nullCursor) FastForward(order.Key) {
	panic("tagd/cursor: fast-forward on null cursor")
}

func (nullCursor) Max() int { return 0 }
