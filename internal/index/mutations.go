package index

import (
	"sort"

	"tagd/internal/store"
)

// CreateTopic implements create-topic: allocating a topic on first
// mention, carrying only the global tag and every materialised inverse
// tag, and no words.
func (ix *IndexStore) CreateTopic(id uint64, ts uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.createTopicLocked(id, ts)
}

// createTopicLocked allocates the topic on first mention, recording it
// in global_tag and in every inverse tag materialised so far — a
// brand-new topic is by definition absent from every principal, so
// invariant 3 (inverse completeness) requires its presence in each
// inverse immediately.
func (ix *IndexStore) createTopicLocked(id uint64, ts uint32) *store.Topic {
	topic, created := ix.topics.GetOrCreate(id, ts)
	if !created {
		return topic
	}
	ix.tags.Global.Insert(topic)
	for _, inv := range ix.tags.Inverses() {
		inv.Insert(topic)
	}
	return topic
}

// reindex performs the remove-then-reinsert dance required whenever a
// topic's ordering key changes: extract the topic from every set it's
// indexed in, apply the new ts, then reinsert. ts <= topic.TS is a
// no-op, preserving bump monotonicity.
func (ix *IndexStore) reindex(topic *store.Topic, ts uint32) {
	if ts <= topic.TS {
		return
	}
	for tagID := range topic.Tags {
		if tag, ok := ix.tags.Resolve(tagID); ok {
			tag.Topics.Remove(topic.Key())
		}
	}
	for word := range topic.Words {
		if w, ok := ix.words.Get(word); ok {
			w.Topics.Remove(topic.Key())
		}
	}

	topic.TS = ts

	for tagID := range topic.Tags {
		if tag, ok := ix.tags.Resolve(tagID); ok {
			tag.Reindex(topic)
		}
	}
	for word := range topic.Words {
		if w, ok := ix.words.Get(word); ok {
			w.Reindex(topic)
		}
	}
}

// BumpTopic implements bump: re-timestamping a topic and, if it's
// within the active window, recording a new post against it.
func (ix *IndexStore) BumpTopic(id uint64, ts uint32, user uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	topic, ok := ix.topics.Get(id)
	if !ok {
		return
	}
	ix.reindex(topic, ts)

	if ix.withinTopicCutoff(topic) {
		topic.Messages = append(topic.Messages, store.Post{TS: ts, User: user})
		topic.MessageCounts[user]++
		ix.tags.Active.Insert(topic)
	}
}

// AddTags implements add-tags, including the inverse-creation
// threshold check triggered by each newly inserted membership.
func (ix *IndexStore) AddTags(id uint64, ts uint32, tagIDs []uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	topic := ix.createTopicLocked(id, ts)
	// add-tags may itself raise topic.ts, but never populates messages —
	// only an explicit bump does that.
	ix.reindex(topic, ts)

	for _, tagID := range tagIDs {
		ix.addTagLocked(topic, tagID)
	}
}

func (ix *IndexStore) addTagLocked(topic *store.Topic, tagID uint32) {
	tag := ix.tags.GetOrCreate(tagID)

	hadInverse := tag.Inverse != nil
	onPrincipal := tag.Has(topic)

	switch {
	case hadInverse && tag.Inverse.Has(topic):
		tag.Inverse.Remove(topic)
		tag.Insert(topic)
	case !onPrincipal:
		tag.Insert(topic)
	}

	if !onPrincipal && !hadInverse {
		ix.tags.MaybeCreateInverse(tag)
	}
}

// RemoveTag implements remove-tag, restoring membership in the tag's
// inverse (if materialised) so inverse completeness is preserved.
func (ix *IndexStore) RemoveTag(id uint64, tagID uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	topic, ok := ix.topics.Get(id)
	if !ok {
		return
	}
	tag, ok := ix.tags.Get(tagID)
	if !ok || !tag.Has(topic) {
		return
	}
	tag.Remove(topic)
	if tag.Inverse != nil {
		tag.Inverse.Insert(topic)
	}
}

// ClearTag implements clear-tag, removing every member and restoring
// each one's membership in the tag's inverse (if materialised).
func (ix *IndexStore) ClearTag(tagID uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tag, ok := ix.tags.Get(tagID)
	if !ok {
		return
	}

	members := make([]*store.Topic, 0, tag.Size())
	for e := tag.Topics.Front(); e != nil; e = e.Next() {
		members = append(members, e.Value.(*store.Topic))
	}
	for _, topic := range members {
		tag.Remove(topic)
		if tag.Inverse != nil {
			tag.Inverse.Insert(topic)
		}
	}
}

// FullText implements full-text, via a sorted-merge diff against the
// topic's previous word set. Both word lists are sorted first; the
// merge itself is O(|old|+|new|).
func (ix *IndexStore) FullText(id uint64, ts uint32, tokens []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	topic := ix.createTopicLocked(id, ts)
	ix.reindex(topic, ts)

	next := dedupeSorted(tokens)

	old := make([]string, 0, len(topic.Words))
	for w := range topic.Words {
		old = append(old, w)
	}
	sort.Strings(old)

	i, j := 0, 0
	for i < len(old) || j < len(next) {
		switch {
		case j >= len(next) || (i < len(old) && old[i] < next[j]):
			if w, ok := ix.words.Get(old[i]); ok {
				w.Remove(topic)
			}
			i++
		case i >= len(old) || next[j] < old[i]:
			ix.words.GetOrCreate(next[j]).Insert(topic)
			j++
		default:
			i++
			j++
		}
	}
}

func dedupeSorted(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FlushCounts implements flush-counts. Throttled by a rate limiter so
// a burst of externally triggered flushes can't monopolise the write
// lease; Run drives the same call on a steady background tick.
func (ix *IndexStore) FlushCounts() {
	if !ix.flushLimiter.Allow() {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.flushCountsLocked()
}

func (ix *IndexStore) flushCountsLocked() {
	now := ix.now()

	members := make([]*store.Topic, 0, ix.tags.Active.Size())
	for e := ix.tags.Active.Topics.Front(); e != nil; e = e.Next() {
		members = append(members, e.Value.(*store.Topic))
	}
	for _, topic := range members {
		ix.expirePosts(topic, now)
	}
}

func (ix *IndexStore) expirePosts(topic *store.Topic, now uint32) {
	threshold := int64(now) - int64(ix.cfg.MessageCutoff)

	kept := topic.Messages[:0]
	for _, p := range topic.Messages {
		if int64(p.TS) < threshold {
			if n := topic.MessageCounts[p.User]; n <= 1 {
				delete(topic.MessageCounts, p.User)
			} else {
				topic.MessageCounts[p.User] = n - 1
			}
			continue
		}
		kept = append(kept, p)
	}
	topic.Messages = kept

	if len(topic.Messages) == 0 {
		ix.tags.Active.Remove(topic)
	}
}
