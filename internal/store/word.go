package store

import (
	"strings"

	"github.com/huandu/skiplist"
)

// Word is a canonical full-text token, also indexing topics by the
// canonical order.
type Word struct {
	Text   string
	Topics *skiplist.SkipList
}

func newWord(text string) *Word {
	return &Word{Text: text, Topics: NewTopicSet()}
}

// Has reports whether topic currently carries this word.
func (w *Word) Has(topic *Topic) bool {
	_, ok := topic.Words[w.Text]
	return ok
}

// Insert adds topic to the word's ordered set and records the reverse
// edge.
func (w *Word) Insert(topic *Topic) {
	if w.Has(topic) {
		return
	}
	w.Topics.Set(topic.Key(), topic)
	topic.Words[w.Text] = struct{}{}
}

// Remove drops topic from the word's ordered set and the reverse edge.
func (w *Word) Remove(topic *Topic) {
	if !w.Has(topic) {
		return
	}
	w.Topics.Remove(topic.Key())
	delete(topic.Words, w.Text)
}

// Reindex re-homes topic within this word's ordered set after its
// ordering key has changed: it must already have been removed by the
// caller and is reinserted here under its new key.
func (w *Word) Reindex(topic *Topic) {
	w.Topics.Set(topic.Key(), topic)
}

// WordStore is the word dictionary: a lexically ordered map from
// canonical text to *Word, ordered by the string's natural comparison so
// the wildcard compiler can scan a contiguous prefix range directly off
// the skip list via FindNext.
type WordStore struct {
	dict *skiplist.SkipList
}

// NewWordStore builds an empty word dictionary.
func NewWordStore() *WordStore {
	return &WordStore{dict: skiplist.New(skiplist.String)}
}

// Get returns the word with the given canonical text, if known.
func (s *WordStore) Get(text string) (*Word, bool) {
	if e := s.dict.Get(text); e != nil {
		return e.Value.(*Word), true
	}
	return nil, false
}

// GetOrCreate allocates the word on first occurrence.
func (s *WordStore) GetOrCreate(text string) *Word {
	if w, ok := s.Get(text); ok {
		return w
	}
	w := newWord(text)
	s.dict.Set(text, w)
	return w
}

// Len returns the number of distinct words known to the dictionary.
func (s *WordStore) Len() int {
	return s.dict.Len()
}

// PrefixRange visits, in lexical order, every word whose text starts
// with prefix, stopping as soon as the prefix no longer matches or fn
// returns false.
func (s *WordStore) PrefixRange(prefix string, fn func(*Word) bool) {
	front := s.dict.Front()
	if front == nil {
		return
	}
	elem := s.dict.FindNext(front, prefix)
	for elem != nil {
		word := elem.Value.(*Word)
		if !strings.HasPrefix(word.Text, prefix) {
			return
		}
		if !fn(word) {
			return
		}
		elem = elem.Next()
	}
}
