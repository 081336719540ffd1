package store

import "tagd/internal/shardmap"

// TopicStore is the single owning registry for every topic that has ever
// been mentioned, backed by a generic sharded map.
type TopicStore struct {
	byID *shardmap.ShardMap[uint64, *Topic]
}

// NewTopicStore builds an empty store sized for an estimated topic count.
func NewTopicStore(estimate int) *TopicStore {
	if estimate <= 0 {
		estimate = 1024
	}
	return &TopicStore{
		byID: shardmap.New[uint64, *Topic](shardCount(estimate), estimate, shardmap.HashUint64),
	}
}

// Get returns the topic with the given id, if it has been created.
func (s *TopicStore) Get(id uint64) (*Topic, bool) {
	return s.byID.Get(id)
}

// GetOrCreate returns the existing topic for id, or allocates one at ts
// and reports it as newly created.
func (s *TopicStore) GetOrCreate(id uint64, ts uint32) (topic *Topic, created bool) {
	if t, ok := s.byID.Get(id); ok {
		return t, false
	}
	t := newTopic(id, ts)
	s.byID.Set(id, t)
	return t, true
}

// Len returns the number of live topics.
func (s *TopicStore) Len() int {
	return s.byID.Len()
}

// Range visits every topic. fn must not mutate the store.
func (s *TopicStore) Range(fn func(*Topic) bool) {
	s.byID.Range(func(_ uint64, t *Topic) bool {
		return fn(t)
	})
}

func shardCount(estimate int) int {
	switch {
	case estimate >= 1<<16:
		return 64
	case estimate >= 1<<12:
		return 16
	default:
		return 4
	}
}
