// Package store holds the three canonical entity registries — topics,
// tags, words — and the ordered sets that index them. It owns the core
// invariants: ordering, symmetric membership, and the
// remove-before-retimestamp discipline required whenever a topic's
// ordering key changes.
package store

import (
	"github.com/huandu/skiplist"

	"tagd/internal/order"
)

// Post is a single (timestamp, user) contribution inside a topic's active
// message window.
type Post struct {
	TS   uint32
	User uint32
}

// Topic is the central, owned entity. Every other structure (tag sets,
// word sets) holds a non-owning reference to a *Topic via its ordered
// position; the canonical owner is TopicStore.
type Topic struct {
	ID      uint64
	TS      uint32
	Created uint32

	Tags  map[uint32]struct{}
	Words map[string]struct{}

	Messages      []Post
	MessageCounts map[uint32]uint32
}

func newTopic(id uint64, ts uint32) *Topic {
	return &Topic{
		ID:            id,
		TS:            ts,
		Created:       ts,
		Tags:          make(map[uint32]struct{}),
		Words:         make(map[string]struct{}),
		MessageCounts: make(map[uint32]uint32),
	}
}

// Key returns the topic's current ordering key.
func (t *Topic) Key() order.Key {
	return order.Key{TS: t.TS, ID: t.ID}
}

// NewTopicSet allocates the ordered topic set backing a tag or a word,
// keyed on the shared canonical order.
func NewTopicSet() *skiplist.SkipList {
	return skiplist.New(order.Comparable)
}
