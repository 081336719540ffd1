package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagd/internal/expr"
)

func newTestIndex() *IndexStore {
	cfg := DefaultConfig()
	cfg.TopicEstimate = 256
	return New(cfg)
}

func slice(t *testing.T, ix *IndexStore, e expr.Value, count int) []uint64 {
	t.Helper()
	res, err := ix.Slice(e, count, 0, false)
	require.NoError(t, err)
	return res.Results
}

func TestScenarioOrdering(t *testing.T) {
	ix := newTestIndex()
	ix.AddTags(10, 100, []uint32{1})
	ix.AddTags(20, 200, []uint32{1})
	ix.AddTags(30, 150, []uint32{1})

	assert.Equal(t, []uint64{20, 30, 10}, slice(t, ix, expr.Int(1), 10))
}

func TestScenarioIntersection(t *testing.T) {
	ix := newTestIndex()
	ix.AddTags(1, 100, []uint32{7, 8})
	ix.AddTags(2, 200, []uint32{7})
	ix.AddTags(3, 300, []uint32{8})

	e := expr.Arr(expr.Str("intersection"), expr.Int(7), expr.Int(8))
	assert.Equal(t, []uint64{1}, slice(t, ix, e, 10))
}

func TestScenarioDifferenceViaInverse(t *testing.T) {
	ix := newTestIndex()

	for i := uint64(0); i < 10001; i++ {
		ts := uint32(20000 - i)
		ix.AddTags(i, ts, []uint32{5})
	}
	for i := uint64(0); i < 6001; i++ {
		ix.AddTags(i, 0, []uint32{9})
	}

	tag9, ok := ix.tags.Get(9)
	require.True(t, ok)
	require.NotNil(t, tag9.Inverse, "the 5001st add into tag 9 (more than half of global) should have triggered inverse creation")

	viaDifference := slice(t, ix, expr.Arr(expr.Str("difference"), expr.Int(5), expr.Int(9)), 20000)
	viaIntersection := slice(t, ix, expr.Arr(expr.Str("intersection"), expr.Int(5),
		expr.Arr(expr.Str("difference"), expr.Int(0), expr.Int(9))), 20000)

	assert.Equal(t, viaIntersection, viaDifference)
	assert.NotEmpty(t, viaDifference)
}

func TestScenarioBumpReorders(t *testing.T) {
	ix := newTestIndex()
	ix.AddTags(10, 100, []uint32{1})
	ix.AddTags(20, 200, []uint32{1})
	ix.AddTags(30, 150, []uint32{1})

	ix.BumpTopic(10, 250, 1)

	assert.Equal(t, []uint64{10, 20, 30}, slice(t, ix, expr.Int(1), 10))
}

func TestScenarioWildcardCap(t *testing.T) {
	ix := newTestIndex()
	for i := uint64(0); i < 100; i++ {
		ix.FullText(i, uint32(i), []string{"cat"})
	}

	_, err := ix.Slice(expr.Str("c*"), 10, 0, false)
	assert.Error(t, err, "cat owns 100% of global topics, well over the quarter cap")

	ix2 := newTestIndex()
	for i := uint64(0); i < 10; i++ {
		ix2.FullText(i, uint32(i), []string{"cat"})
	}
	for i := uint64(10); i < 100; i++ {
		ix2.CreateTopic(i, uint32(i))
	}
	withWildcard, err := ix2.Slice(expr.Str("c*"), 100, 0, false)
	require.NoError(t, err)
	withWord, err := ix2.Slice(expr.Str("cat"), 100, 0, false)
	require.NoError(t, err)
	assert.Equal(t, withWord.Results, withWildcard.Results)
}

func TestScenarioEstimate(t *testing.T) {
	ix := newTestIndex()
	for i := uint64(0); i < 10000; i++ {
		ts := uint32(i % 100)
		ix.AddTags(i, ts, []uint32{1})
	}

	res, err := ix.Slice(expr.Int(1), 10, 0, true)
	require.NoError(t, err)
	assert.Len(t, res.Results, 10)
	assert.True(t, res.Estimated)

	ratio := float64(res.Count) / 10000
	assert.True(t, ratio >= 0.5 && ratio <= 2, "estimate %d should be within one binary order of magnitude of 10000", res.Count)
}

func TestBumpMonotonicity(t *testing.T) {
	ix := newTestIndex()
	ix.CreateTopic(1, 100)
	ix.BumpTopic(1, 200, 1)
	ix.BumpTopic(1, 150, 1)

	topic, ok := ix.topics.Get(1)
	require.True(t, ok)
	assert.Equal(t, uint32(200), topic.TS, "bump with an older ts must be a no-op")
}

func TestAddTagsDoesNotPopulateMessages(t *testing.T) {
	ix := newTestIndex()
	ix.AddTags(1, 100, []uint32{1})

	topic, ok := ix.topics.Get(1)
	require.True(t, ok)
	assert.Empty(t, topic.Messages, "add-tags raising ts must not create a post")
	assert.False(t, ix.tags.Active.Has(topic))
}

func TestBumpCreatesPostAndActiveMembership(t *testing.T) {
	ix := newTestIndex()
	ix.SetClock(func() uint32 { return 1000 })
	ix.CreateTopic(1, 100)
	ix.BumpTopic(1, 150, 42)

	topic, ok := ix.topics.Get(1)
	require.True(t, ok)
	require.Len(t, topic.Messages, 1)
	assert.Equal(t, uint32(42), topic.Messages[0].User)
	assert.True(t, ix.tags.Active.Has(topic))
}

func TestFlushCountsExpiresOldPosts(t *testing.T) {
	ix := newTestIndex()
	ix.SetClock(func() uint32 { return 1000 })
	ix.CreateTopic(1, 0)
	ix.BumpTopic(1, 0, 7)

	topic, ok := ix.topics.Get(1)
	require.True(t, ok)
	require.True(t, ix.tags.Active.Has(topic))

	ix.SetClock(func() uint32 { return 1000 + ix.cfg.MessageCutoff + 1 })
	ix.flushCountsLocked()

	assert.Empty(t, topic.Messages)
	assert.False(t, ix.tags.Active.Has(topic))
}

func TestRemoveTagRestoresInverseMembership(t *testing.T) {
	ix := newTestIndex()

	for i := uint64(0); i < 10001; i++ {
		ix.AddTags(i, uint32(i), []uint32{5})
	}
	for i := uint64(0); i < 6001; i++ {
		ix.AddTags(i, 0, []uint32{9})
	}
	tag9, ok := ix.tags.Get(9)
	require.True(t, ok)
	require.NotNil(t, tag9.Inverse)

	topic, ok := ix.topics.Get(0)
	require.True(t, ok)
	require.True(t, tag9.Has(topic))

	ix.RemoveTag(0, 9)
	assert.False(t, tag9.Has(topic))
	assert.True(t, tag9.Inverse.Has(topic), "removing a principal membership restores inverse membership")
}

func TestClearTagEmptiesSetAndRestoresInverse(t *testing.T) {
	ix := newTestIndex()
	for i := uint64(0); i < 10001; i++ {
		ix.AddTags(i, uint32(i), []uint32{5})
	}
	for i := uint64(0); i < 6001; i++ {
		ix.AddTags(i, 0, []uint32{9})
	}
	tag9, ok := ix.tags.Get(9)
	require.True(t, ok)
	require.NotNil(t, tag9.Inverse)

	ix.ClearTag(9)
	assert.Equal(t, 0, tag9.Size())
	assert.Equal(t, 10001, tag9.Inverse.Size())
}

func TestFullTextSortedMergeDiff(t *testing.T) {
	ix := newTestIndex()
	ix.FullText(1, 100, []string{"alpha", "beta", "beta"})

	topic, ok := ix.topics.Get(1)
	require.True(t, ok)
	assert.Len(t, topic.Words, 2)

	ix.FullText(1, 100, []string{"beta", "gamma"})
	_, hasAlpha := topic.Words["alpha"]
	_, hasBeta := topic.Words["beta"]
	_, hasGamma := topic.Words["gamma"]
	assert.False(t, hasAlpha)
	assert.True(t, hasBeta)
	assert.True(t, hasGamma)
}

func TestSync(t *testing.T) {
	ix := newTestIndex()
	assert.True(t, ix.Sync())
}

func TestHotOrdersByScore(t *testing.T) {
	ix := newTestIndex()
	ix.SetClock(func() uint32 { return 1000 })

	ix.CreateTopic(1, 1000)
	ix.BumpTopic(1, 1000, 1)
	ix.BumpTopic(1, 1000, 2)
	ix.BumpTopic(1, 1000, 3)

	ix.CreateTopic(2, 1000)
	ix.BumpTopic(2, 1000, 1)

	ids, err := ix.Hot(expr.Int(0), 10)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, uint64(1), ids[0], "topic 1 has more distinct posters and should score higher")
}
