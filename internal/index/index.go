// Package index implements the query engine's orchestrator: IndexStore
// ties the topic/tag/word stores, the cursor combinators, and the
// expression compiler together behind a single process-wide
// reader-writer lease, and implements the mutation operations plus
// slice/hot/sync.
package index

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tagd/internal/store"
)

// Config holds the process-wide tuning constants.
type Config struct {
	MessageCutoff    uint32
	TopicCutoff      uint32
	InverseThreshold int
	TopicEstimate    int
	FlushInterval    time.Duration
}

// DefaultConfig returns the published default constants.
func DefaultConfig() Config {
	return Config{
		MessageCutoff:    43200,
		TopicCutoff:      5 * 86400,
		InverseThreshold: 10000,
		TopicEstimate:    1024,
		FlushInterval:    time.Minute,
	}
}

// IndexStore is the single process-wide value guarded by one
// reader-writer lease: every mutation holds the exclusive side for its
// full duration; every read holds the shared side including cursor
// construction, traversal, and response marshalling.
type IndexStore struct {
	mu sync.RWMutex

	cfg Config

	topics *store.TopicStore
	tags   *store.TagStore
	words  *store.WordStore

	now func() uint32

	flushLimiter *rate.Limiter
}

// New builds an empty index ready to replay an event log at startup.
func New(cfg Config) *IndexStore {
	return &IndexStore{
		cfg:          cfg,
		topics:       store.NewTopicStore(cfg.TopicEstimate),
		tags:         store.NewTagStore(cfg.TopicEstimate, cfg.InverseThreshold),
		words:        store.NewWordStore(),
		now:          func() uint32 { return uint32(time.Now().Unix()) },
		flushLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// SetClock overrides the wall clock used by bump, flush-counts and
// hot, for deterministic tests.
func (ix *IndexStore) SetClock(now func() uint32) {
	ix.now = now
}

// Run drives flush-counts on a steady tick until ctx is cancelled —
// the background half of flush-counts throttling; callers may also
// invoke FlushCounts directly at any time, e.g. from a transport
// handler reacting to an explicit flushCounts message.
func (ix *IndexStore) Run(ctx context.Context) {
	ticker := time.NewTicker(ix.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ix.FlushCounts()
		}
	}
}

func (ix *IndexStore) withinTopicCutoff(topic *store.Topic) bool {
	return ix.now()-topic.Created <= ix.cfg.TopicCutoff
}
