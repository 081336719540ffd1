// Package eventlog supplies the external, append-only mutation log the
// index is rebuilt from at startup. It is backed by a Redis list rather
// than an arbitrary keyspace scan, since replay order is a correctness
// requirement: mutations must be applied in the order they were
// appended, so LRange-by-offset batches walk the list in the order it
// was written rather than via an unordered SCAN cursor.
package eventlog

import (
	"encoding/json"
	"errors"

	"github.com/go-redis/redis"
)

// Op names one of the mutation operations the index accepts — the only
// record kinds a log entry may carry.
type Op string

const (
	OpCreateTopic Op = "createTopic"
	OpBumpTopic   Op = "bumpTopic"
	OpAddTags     Op = "addTags"
	OpRemoveTag   Op = "removeTag"
	OpClearTag    Op = "clearTag"
	OpFullText    Op = "fullText"
	OpFlushCounts Op = "flushCounts"
)

// Record is one logged mutation: an operation name plus its raw
// argument list. Args stays undecoded here so this package never needs
// to know internal/index's types; internal/dispatch does the decoding.
type Record struct {
	Op   Op              `json:"op"`
	Args json.RawMessage `json:"args"`
}

// Dispatcher applies a Record to the index. internal/dispatch adapts
// *index.IndexStore to this interface, so eventlog itself stays free
// of any dependency on the query engine.
type Dispatcher interface {
	Dispatch(Record) error
}

// ErrEmpty is returned by Replay when the log holds no records yet.
var ErrEmpty = errors.New("tagd/eventlog: log is empty")

// Options configures the Redis connection backing a Log.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string // Redis list key holding the ordered log; defaults to "tagd:mutations"
}

// Log is an append-only mutation log backed by a Redis list.
type Log struct {
	client *redis.Client
	key    string
}

// Open connects to the Redis instance backing the log and verifies the
// connection with a ping.
func Open(opts Options) (*Log, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if _, err := client.Ping().Result(); err != nil {
		return nil, err
	}
	key := opts.Key
	if key == "" {
		key = "tagd:mutations"
	}
	return &Log{client: client, key: key}, nil
}

// Append records a mutation at the tail of the log, for replay by a
// future process start.
func (l *Log) Append(op Op, args interface{}) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	buf, err := json.Marshal(Record{Op: op, Args: raw})
	if err != nil {
		return err
	}
	return l.client.RPush(l.key, buf).Err()
}

// Replay scans every recorded mutation in order, feeding each to
// dispatch — the same entry point live traffic uses, so replay and live
// mutations decode identically. Walks the list in fixed-size batches of
// 1000 by index range rather than a server-side cursor token, since
// list order must be preserved.
func (l *Log) Replay(dispatch Dispatcher) (int64, error) {
	const batch = 1000

	var total int64
	for start := int64(0); ; start += batch {
		items, err := l.client.LRange(l.key, start, start+batch-1).Result()
		if err != nil {
			return total, err
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			var rec Record
			if err := json.Unmarshal([]byte(item), &rec); err != nil {
				return total, err
			}
			if err := dispatch.Dispatch(rec); err != nil {
				return total, err
			}
			total++
		}
		if int64(len(items)) < batch {
			break
		}
	}
	if total == 0 {
		return 0, ErrEmpty
	}
	return total, nil
}

// Close releases the underlying Redis connection.
func (l *Log) Close() error {
	return l.client.Close()
}
