package cursor

import (
	"testing"

	"github.com/huandu/skiplist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagd/internal/order"
	"tagd/internal/store"
)

func newSet(topics ...*store.Topic) *skiplist.SkipList {
	s := store.NewTopicSet()
	for _, topic := range topics {
		s.Set(topic.Key(), topic)
	}
	return s
}

func topic(id uint64, ts uint32) *store.Topic {
	tp, _ := store.NewTopicStore(4).GetOrCreate(id, ts)
	return tp
}

func ids(t *testing.T, c Cursor) []uint64 {
	t.Helper()
	var out []uint64
	for {
		head := c.Peek()
		if head == nil {
			break
		}
		out = append(out, head.ID)
		c.Advance()
	}
	return out
}

func TestNullCursor(t *testing.T) {
	c := Null()
	assert.Nil(t, c.Peek())
	assert.Equal(t, 0, c.Max())
	assert.Panics(t, func() { c.Advance() })
	assert.Panics(t, func() { c.FastForward(order.Probe(1)) })
}

func TestBasicCursorOrderAndFastForward(t *testing.T) {
	a, b, c := topic(10, 100), topic(20, 200), topic(30, 150)
	set := newSet(a, b, c)

	cur := Basic(set)
	assert.Equal(t, []uint64{20, 30, 10}, ids(t, cur))
	assert.Equal(t, 3, Basic(set).Max())

	cur = Basic(set)
	cur.FastForward(order.Probe(160))
	require.NotNil(t, cur.Peek())
	assert.Equal(t, uint64(30), cur.Peek().ID, "first element at or after ts=160 in descending order is ts=150")
}

func TestUnionDedupesAndOrders(t *testing.T) {
	shared := topic(1, 100)
	onlyA := topic(2, 300)
	onlyB := topic(3, 200)

	u := Union(Basic(newSet(shared, onlyA)), Basic(newSet(shared, onlyB)))
	assert.Equal(t, []uint64{2, 3, 1}, ids(t, u))
}

func TestUnionOfSelfIsIdentity(t *testing.T) {
	a, b := topic(1, 300), topic(2, 100)
	set := newSet(a, b)
	u := Union(Basic(set), Basic(set))
	assert.Equal(t, []uint64{1, 2}, ids(t, u))
}

func TestIntersection(t *testing.T) {
	common := topic(1, 100)
	left := topic(2, 300)
	right := topic(3, 200)

	setA := newSet(common, left)
	setB := newSet(common, right)

	x := Intersection(Basic(setA), Basic(setB))
	assert.Equal(t, []uint64{1}, ids(t, x))
}

func TestIntersectionOfSelfIsIdentity(t *testing.T) {
	a, b := topic(1, 300), topic(2, 100)
	set := newSet(a, b)
	x := Intersection(Basic(set), Basic(set))
	assert.Equal(t, []uint64{1, 2}, ids(t, x))
}

func TestIntersectionWithEmptyIsEmpty(t *testing.T) {
	set := newSet(topic(1, 100))
	x := Intersection(Basic(set), Null())
	assert.Nil(t, x.Peek())
}

func TestDifference(t *testing.T) {
	a := topic(1, 300)
	b := topic(2, 200)
	c := topic(3, 100)

	left := newSet(a, b, c)
	right := newSet(b)

	d := Difference(Basic(left), Basic(right))
	assert.Equal(t, []uint64{1, 3}, ids(t, d))
}

func TestDifferenceOfSelfIsEmpty(t *testing.T) {
	set := newSet(topic(1, 100), topic(2, 200))
	d := Difference(Basic(set), Basic(set))
	assert.Nil(t, d.Peek())
}

func TestDifferenceMax(t *testing.T) {
	left := newSet(topic(1, 100), topic(2, 200))
	right := newSet(topic(3, 300))
	d := Difference(Basic(left), Basic(right))
	assert.Equal(t, 2, d.Max())
}

func TestIntersectionMaxIsMinOfChildren(t *testing.T) {
	small := newSet(topic(1, 100))
	big := newSet(topic(1, 100), topic(2, 200), topic(3, 300))
	x := Intersection(Basic(small), Basic(big))
	assert.Equal(t, 1, x.Max())
}

func TestUnionMaxIsMaxOfChildren(t *testing.T) {
	small := newSet(topic(1, 100))
	big := newSet(topic(1, 100), topic(2, 200), topic(3, 300))
	u := Union(Basic(small), Basic(big))
	assert.Equal(t, 3, u.Max())
}
