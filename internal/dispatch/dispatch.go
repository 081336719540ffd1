// Package dispatch is the single decoding path shared by startup
// replay (internal/eventlog) and live mutation traffic
// (internal/transport): it turns an eventlog.Record into a call
// against internal/index, so both entry points apply exactly the same
// argument decoding.
package dispatch

import (
	"encoding/json"
	"fmt"

	"tagd/internal/eventlog"
	"tagd/internal/index"
)

// Table adapts an *index.IndexStore to eventlog.Dispatcher.
type Table struct {
	Index *index.IndexStore
}

type createTopicArgs struct {
	ID uint64 `json:"id"`
	TS uint32 `json:"ts"`
}

type bumpTopicArgs struct {
	ID   uint64 `json:"id"`
	TS   uint32 `json:"ts"`
	User uint32 `json:"user"`
}

type addTagsArgs struct {
	ID   uint64   `json:"id"`
	TS   uint32   `json:"ts"`
	Tags []uint32 `json:"tags"`
}

type removeTagArgs struct {
	ID  uint64 `json:"id"`
	Tag uint32 `json:"tag"`
}

type clearTagArgs struct {
	Tag uint32 `json:"tag"`
}

type fullTextArgs struct {
	ID     uint64   `json:"id"`
	TS     uint32   `json:"ts"`
	Tokens []string `json:"tokens"`
}

// Dispatch implements eventlog.Dispatcher.
func (t Table) Dispatch(rec eventlog.Record) error {
	switch rec.Op {
	case eventlog.OpCreateTopic:
		var a createTopicArgs
		if err := json.Unmarshal(rec.Args, &a); err != nil {
			return err
		}
		t.Index.CreateTopic(a.ID, a.TS)
	case eventlog.OpBumpTopic:
		var a bumpTopicArgs
		if err := json.Unmarshal(rec.Args, &a); err != nil {
			return err
		}
		t.Index.BumpTopic(a.ID, a.TS, a.User)
	case eventlog.OpAddTags:
		var a addTagsArgs
		if err := json.Unmarshal(rec.Args, &a); err != nil {
			return err
		}
		t.Index.AddTags(a.ID, a.TS, a.Tags)
	case eventlog.OpRemoveTag:
		var a removeTagArgs
		if err := json.Unmarshal(rec.Args, &a); err != nil {
			return err
		}
		t.Index.RemoveTag(a.ID, a.Tag)
	case eventlog.OpClearTag:
		var a clearTagArgs
		if err := json.Unmarshal(rec.Args, &a); err != nil {
			return err
		}
		t.Index.ClearTag(a.Tag)
	case eventlog.OpFullText:
		var a fullTextArgs
		if err := json.Unmarshal(rec.Args, &a); err != nil {
			return err
		}
		t.Index.FullText(a.ID, a.TS, a.Tokens)
	case eventlog.OpFlushCounts:
		t.Index.FlushCounts()
	default:
		return fmt.Errorf("tagd/dispatch: unknown operation %q", rec.Op)
	}
	return nil
}
