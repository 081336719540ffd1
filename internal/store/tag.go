package store

import (
	"sync"

	"github.com/huandu/skiplist"

	"tagd/internal/shardmap"
)

// GlobalTagID and ActiveTagID are reserved bookkeeping ids for the two
// built-in virtual tags. They never collide with an externally supplied
// tag id because the two built-ins are never stored in TagStore's
// externally-addressable shard map — only in the dedicated Global/Active
// fields.
const (
	GlobalTagID uint32 = 0
	ActiveTagID uint32 = ^uint32(0)

	// inverseIDBit marks an inverse tag's bookkeeping id so it never
	// collides with its principal's id in a topic's Tags set. Tag ids in
	// this system are expected to stay below 1<<31.
	inverseIDBit uint32 = 1 << 31
)

// Tag is a (possibly virtual) bucket of topics, ordered by the canonical
// order.
type Tag struct {
	ID      uint32
	Topics  *skiplist.SkipList
	Inverse *Tag
}

func newTag(id uint32) *Tag {
	return &Tag{ID: id, Topics: NewTopicSet()}
}

// Has reports whether topic currently carries this tag.
func (t *Tag) Has(topic *Topic) bool {
	_, ok := topic.Tags[t.ID]
	return ok
}

// Insert adds topic to the tag's ordered set and records the reverse
// edge, maintaining invariant 4 (symmetric membership). No-op if the
// topic already carries the tag.
func (t *Tag) Insert(topic *Topic) {
	if t.Has(topic) {
		return
	}
	t.Topics.Set(topic.Key(), topic)
	topic.Tags[t.ID] = struct{}{}
}

// Remove drops topic from the tag's ordered set and the reverse edge.
// No-op if the topic doesn't carry the tag.
func (t *Tag) Remove(topic *Topic) {
	if !t.Has(topic) {
		return
	}
	t.Topics.Remove(topic.Key())
	delete(topic.Tags, t.ID)
}

// Reindex re-homes topic within this tag's ordered set after its
// ordering key has changed: it must already have been removed by the
// caller and is reinserted here with its new key. Used by the
// remove-then-reinsert discipline required whenever topic.TS changes.
func (t *Tag) Reindex(topic *Topic) {
	t.Topics.Set(topic.Key(), topic)
}

// Size returns the number of topics currently carrying the tag.
func (t *Tag) Size() int {
	return t.Topics.Len()
}

// TagStore is the tag registry plus the two built-in virtual tags and
// the inverse-tag maintenance machinery.
type TagStore struct {
	tags             *shardmap.ShardMap[uint32, *Tag]
	Global           *Tag
	Active           *Tag
	InverseThreshold int

	mu       sync.Mutex
	inverses []*Tag
}

// NewTagStore builds an empty tag registry.
func NewTagStore(estimate, inverseThreshold int) *TagStore {
	return &TagStore{
		tags:             shardmap.New[uint32, *Tag](shardCount(estimate), estimate, shardmap.HashUint32),
		Global:           newTag(GlobalTagID),
		Active:           newTag(ActiveTagID),
		InverseThreshold: inverseThreshold,
	}
}

// Get returns the tag with the given id, if it has been created. id 0
// always resolves to the global tag.
func (s *TagStore) Get(id uint32) (*Tag, bool) {
	if id == GlobalTagID {
		return s.Global, true
	}
	if t, ok := s.tags.Get(id); ok {
		return t, true
	}
	return nil, false
}

// GetOrCreate allocates the tag with the given id if it doesn't exist yet
// (tags are allocated lazily on first reference).
func (s *TagStore) GetOrCreate(id uint32) *Tag {
	if id == GlobalTagID {
		return s.Global
	}
	if t, ok := s.tags.Get(id); ok {
		return t
	}
	t := newTag(id)
	s.tags.Set(id, t)
	return t
}

// Range visits every non-built-in tag. fn must not mutate the store.
func (s *TagStore) Range(fn func(*Tag) bool) {
	s.tags.Range(func(_ uint32, t *Tag) bool { return fn(t) })
}

// Resolve looks up a tag by any id a topic's Tags set can carry: the
// built-in global/active ids, a regular tag id, or an inverse tag's
// bookkeeping id. Unlike Get, this also resolves inverse and built-in
// ids, which a query expression never references directly but a
// topic's own membership bookkeeping does (used by the reindex path).
func (s *TagStore) Resolve(id uint32) (*Tag, bool) {
	switch id {
	case GlobalTagID:
		return s.Global, true
	case ActiveTagID:
		return s.Active, true
	}
	if id&inverseIDBit != 0 {
		principal, ok := s.tags.Get(id &^ inverseIDBit)
		if !ok || principal.Inverse == nil {
			return nil, false
		}
		return principal.Inverse, true
	}
	return s.tags.Get(id)
}

// Inverses returns every inverse tag materialised so far, in creation
// order. create-topic uses this to add a brand new topic — by
// definition absent from every principal — to each existing inverse,
// satisfying invariant 3 immediately.
func (s *TagStore) Inverses() []*Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Tag, len(s.inverses))
	copy(out, s.inverses)
	return out
}

// MaybeCreateInverse allocates and back-fills an inverse for principal
// once principal.Topics.size*2 exceeds global.Topics.size and
// global.Topics.size exceeds InverseThreshold. A no-op if principal
// already has an inverse or the threshold isn't met yet. Returns the
// (possibly freshly created) inverse, or nil.
func (s *TagStore) MaybeCreateInverse(principal *Tag) *Tag {
	if principal.Inverse != nil {
		return principal.Inverse
	}
	globalSize := s.Global.Size()
	if principal.Size()*2 <= globalSize || globalSize <= s.InverseThreshold {
		return nil
	}

	inverse := newTag(principal.ID | inverseIDBit)
	principal.Inverse = inverse
	inverse.Inverse = principal

	for e := s.Global.Topics.Front(); e != nil; e = e.Next() {
		topic := e.Value.(*Topic)
		if !principal.Has(topic) {
			inverse.Insert(topic)
		}
	}

	s.mu.Lock()
	s.inverses = append(s.inverses, inverse)
	s.mu.Unlock()
	return inverse
}
