// Package shardmap provides a generic, farmhash-sharded concurrent map
// (one RWMutex per shard) usable for the topic, tag and word registries
// alike.
package shardmap

import (
	"sync"

	farmhash "github.com/leemcloughlin/gofarmhash"
)

// HashFunc reduces a key to a 32-bit hash used to pick its shard.
type HashFunc[K comparable] func(K) uint32

// ShardMap is a fixed-shard-count concurrent map. Each shard carries its
// own RWMutex, so a given key only ever competes for its own shard's
// lock. Callers that already hold the index's single reader-writer
// lease do not need ShardMap's internal locking for correctness, but it
// is left in place since it is harmless under an already-serialized
// writer and keeps the structure usable standalone (e.g. by tests that
// poke a store directly).
type ShardMap[K comparable, V any] struct {
	shards []map[K]V
	locks  []sync.RWMutex
	hash   HashFunc[K]
	seg    int
}

// New builds a ShardMap with seg shards, a capacity hint split evenly
// across them, and hash used to route keys to shards.
func New[K comparable, V any](seg, capacity int, hash HashFunc[K]) *ShardMap[K, V] {
	if seg <= 0 {
		seg = 1
	}
	m := &ShardMap[K, V]{
		shards: make([]map[K]V, seg),
		locks:  make([]sync.RWMutex, seg),
		hash:   hash,
		seg:    seg,
	}
	for i := range m.shards {
		m.shards[i] = make(map[K]V, capacity/seg+1)
	}
	return m
}

func (m *ShardMap[K, V]) segIndex(key K) int {
	return int(m.hash(key) % uint32(m.seg))
}

// Set stores value under key.
func (m *ShardMap[K, V]) Set(key K, value V) {
	idx := m.segIndex(key)
	m.locks[idx].Lock()
	defer m.locks[idx].Unlock()
	m.shards[idx][key] = value
}

// Get returns the value stored under key, if any.
func (m *ShardMap[K, V]) Get(key K) (V, bool) {
	idx := m.segIndex(key)
	m.locks[idx].RLock()
	defer m.locks[idx].RUnlock()
	v, ok := m.shards[idx][key]
	return v, ok
}

// Delete removes key from the map.
func (m *ShardMap[K, V]) Delete(key K) {
	idx := m.segIndex(key)
	m.locks[idx].Lock()
	defer m.locks[idx].Unlock()
	delete(m.shards[idx], key)
}

// Len returns the total number of entries across all shards.
func (m *ShardMap[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		m.locks[i].RLock()
		n += len(m.shards[i])
		m.locks[i].RUnlock()
	}
	return n
}

// Range calls fn for every key/value pair. fn must not mutate the map.
func (m *ShardMap[K, V]) Range(fn func(K, V) bool) {
	for i := range m.shards {
		m.locks[i].RLock()
		for k, v := range m.shards[i] {
			if !fn(k, v) {
				m.locks[i].RUnlock()
				return
			}
		}
		m.locks[i].RUnlock()
	}
}

// HashUint64 is a HashFunc for uint64 keys (topic ids): farmhash over
// the key's little-endian bytes.
func HashUint64(key uint64) uint32 {
	b := [8]byte{
		byte(key), byte(key >> 8), byte(key >> 16), byte(key >> 24),
		byte(key >> 32), byte(key >> 40), byte(key >> 48), byte(key >> 56),
	}
	return farmhash.Hash32WithSeed(b[:], 0)
}

// HashUint32 is a HashFunc for uint32 keys (tag ids).
func HashUint32(key uint32) uint32 {
	b := [4]byte{byte(key), byte(key >> 8), byte(key >> 16), byte(key >> 24)}
	return farmhash.Hash32WithSeed(b[:], 0)
}

// HashString is a HashFunc for string keys (words).
func HashString(key string) uint32 {
	return farmhash.Hash32WithSeed([]byte(key), 0)
}
