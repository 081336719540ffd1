package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicStoreGetOrCreate(t *testing.T) {
	ts := NewTopicStore(16)

	topic, created := ts.GetOrCreate(42, 100)
	require.True(t, created)
	assert.Equal(t, uint64(42), topic.ID)
	assert.Equal(t, uint32(100), topic.TS)
	assert.Equal(t, uint32(100), topic.Created)

	again, created := ts.GetOrCreate(42, 999)
	assert.False(t, created)
	assert.Same(t, topic, again)
	assert.Equal(t, uint32(100), again.TS, "GetOrCreate must not bump an existing topic")
}

func TestTagInsertRemoveSymmetricMembership(t *testing.T) {
	tag := newTag(7)
	topic := newTopic(1, 100)

	assert.False(t, tag.Has(topic))
	tag.Insert(topic)
	assert.True(t, tag.Has(topic))
	_, onTopic := topic.Tags[7]
	assert.True(t, onTopic)
	assert.Equal(t, 1, tag.Size())

	tag.Remove(topic)
	assert.False(t, tag.Has(topic))
	_, onTopic = topic.Tags[7]
	assert.False(t, onTopic)
	assert.Equal(t, 0, tag.Size())
}

func TestTagOrderingWithinSet(t *testing.T) {
	tag := newTag(1)
	a := newTopic(10, 100)
	b := newTopic(20, 200)
	c := newTopic(30, 150)
	tag.Insert(a)
	tag.Insert(b)
	tag.Insert(c)

	var ids []uint64
	for e := tag.Topics.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(*Topic).ID)
	}
	assert.Equal(t, []uint64{20, 30, 10}, ids, "newest ts first")
}

func TestMaybeCreateInverseThreshold(t *testing.T) {
	s := NewTagStore(20000, 10000)

	var topics []*Topic
	for i := uint64(0); i < 10001; i++ {
		topic := newTopic(i, uint32(i))
		s.Global.Insert(topic)
		topics = append(topics, topic)
	}

	principal := s.GetOrCreate(5)
	for i := 0; i < 6001; i++ {
		principal.Insert(topics[i])
	}

	// principal.size*2 (12002) > global (10001), and global (10001) >
	// InverseThreshold (10000): both hold, so this call must create it.
	inv := s.MaybeCreateInverse(principal)
	require.NotNil(t, inv)
	assert.Same(t, inv, principal.Inverse)
	assert.Equal(t, principal.ID|inverseIDBit, inv.ID)

	assert.Equal(t, len(topics)-6001, inv.Size())
	for i := 6001; i < len(topics); i++ {
		assert.True(t, inv.Has(topics[i]))
	}
	for i := 0; i < 6001; i++ {
		assert.False(t, inv.Has(topics[i]))
	}

	again := s.MaybeCreateInverse(principal)
	assert.Same(t, inv, again, "already materialised: no-op")

	inverses := s.Inverses()
	require.Len(t, inverses, 1)
	assert.Same(t, inv, inverses[0])
}

func TestMaybeCreateInverseBelowThreshold(t *testing.T) {
	s := NewTagStore(100, 10000)
	for i := uint64(0); i < 50; i++ {
		s.Global.Insert(newTopic(i, uint32(i)))
	}
	principal := s.GetOrCreate(9)
	assert.Nil(t, s.MaybeCreateInverse(principal), "global population under InverseThreshold")
}

func TestWordStorePrefixRange(t *testing.T) {
	ws := NewWordStore()
	for _, text := range []string{"cat", "car", "cart", "dog", "catalog"} {
		ws.GetOrCreate(text)
	}

	var matched []string
	ws.PrefixRange("cat", func(w *Word) bool {
		matched = append(matched, w.Text)
		return true
	})
	assert.ElementsMatch(t, []string{"cat", "catalog"}, matched)

	var none []string
	ws.PrefixRange("zzz", func(w *Word) bool {
		none = append(none, w.Text)
		return true
	})
	assert.Empty(t, none)
}

func TestResolveBuiltins(t *testing.T) {
	s := NewTagStore(100, 10)

	tag, ok := s.Resolve(GlobalTagID)
	require.True(t, ok)
	assert.Same(t, s.Global, tag)

	tag, ok = s.Resolve(ActiveTagID)
	require.True(t, ok)
	assert.Same(t, s.Active, tag)

	_, ok = s.Resolve(12345)
	assert.False(t, ok, "unknown regular tag id resolves to nothing")
}

func TestResolveInverse(t *testing.T) {
	s := NewTagStore(20000, 10000)

	var topics []*Topic
	for i := uint64(0); i < 10001; i++ {
		topic := newTopic(i, uint32(i))
		s.Global.Insert(topic)
		topics = append(topics, topic)
	}
	principal := s.GetOrCreate(3)
	for i := 0; i < 6001; i++ {
		principal.Insert(topics[i])
	}
	inv := s.MaybeCreateInverse(principal)
	require.NotNil(t, inv)

	resolved, ok := s.Resolve(principal.ID | inverseIDBit)
	require.True(t, ok)
	assert.Same(t, inv, resolved)
}
