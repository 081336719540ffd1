package cursor

import (
	"tagd/internal/order"
	"tagd/internal/store"
)

// differenceCursor returns topics present in left but not right.
type differenceCursor struct {
	left, right Cursor
	current     *store.Topic
}

// Difference returns topics present in left but absent from right.
func Difference(left, right Cursor) Cursor {
	d := &differenceCursor{left: left, right: right}
	d.resync()
	return d
}

func (d *differenceCursor) resync() {
	for {
		l := d.left.Peek()
		if l == nil {
			d.current = nil
			return
		}
		r := d.right.Peek()
		switch {
		case r == nil || order.Less(l.Key(), r.Key()):
			// right is older (or exhausted): l doesn't appear in right.
			d.current = l
			return
		case order.Less(r.Key(), l.Key()):
			// inconclusive: fast-forward right up to l and recheck.
			d.right.FastForward(l.Key())
		default:
			// equal: an intersection occurred, skip this entry in left.
			d.left.Advance()
			d.right.Advance()
		}
	}
}

func (d *differenceCursor) Peek() *store.Topic { return d.current }

// Advance moves past the current head. Only the left child is
// unconditionally advanced here; resync re-synchronises right via
// fast-forward as needed, converging to the same result as advancing
// both at a higher cost.
func (d *differenceCursor) Advance() {
	if d.current == nil {
		panic("tagd/cursor: advance past end of difference cursor")
	}
	d.left.Advance()
	d.resync()
}

func (d *differenceCursor) FastForward(ref order.Key) {
	d.left.FastForward(ref)
	if head := d.right.Peek(); head != nil && order.Less(head.Key(), ref) {
		d.right.FastForward(ref)
	}
	d.resync()
}

func (d *differenceCursor) Max() int {
	return d.left.Max()
}
