package index

import (
	"math"
	"sort"

	"tagd/internal/compile"
	"tagd/internal/cursor"
	"tagd/internal/expr"
	"tagd/internal/order"
)

// sliceWarmup is the number of elements the estimator skips through
// before it starts doubling its time-skip probes.
const sliceWarmup = 2500

// SliceResult is the response shape of the slice operation.
type SliceResult struct {
	Results   []uint64
	Count     uint64
	HasCount  bool
	Estimated bool
}

func (ix *IndexStore) stores() compile.Stores {
	return compile.Stores{Tags: ix.tags, Words: ix.words}
}

// Slice implements slice: compiling expr, optionally fast-forwarding
// to ffTS, collecting up to count results, and optionally estimating
// (or exactly reporting) the total result-set size.
func (ix *IndexStore) Slice(e expr.Value, count int, ffTS uint32, estimate bool) (SliceResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	cur, err := compile.Compile(ix.stores(), e)
	if err != nil {
		return SliceResult{}, err
	}

	if ffTS > 0 {
		probe := order.Probe(ffTS)
		if head := cur.Peek(); head != nil && order.Less(head.Key(), probe) {
			cur.FastForward(probe)
		}
	}

	results := make([]uint64, 0, count)
	var firstTS uint32
	exhausted := false
	for len(results) < count {
		head := cur.Peek()
		if head == nil {
			exhausted = true
			break
		}
		if len(results) == 0 {
			firstTS = head.TS
		}
		results = append(results, head.ID)
		cur.Advance()
	}

	res := SliceResult{Results: results}
	if !estimate {
		return res, nil
	}
	if exhausted {
		res.Count = uint64(len(results))
		res.HasCount = true
		return res, nil
	}

	count64, exact := ix.estimate(cur, firstTS, len(results))
	res.Count = count64
	res.HasCount = true
	res.Estimated = !exact
	return res, nil
}

// estimate implements the exponential time-skip count estimator: skip
// to the 2500th element (or report the exact count if the result
// exhausts first), then repeatedly fast-forward to a probe twice as far
// behind firstTS as the current head, adding one to the base-2
// magnitude (doubling the estimate) each step. probeTS
// deliberately relies on uint32 wraparound: once the doubled span
// would carry probe.ts below zero, the subtraction wraps past lastTS,
// which is exactly the overflow signal that ends the loop. already
// counts the elements Slice already consumed before calling in, so the
// warm-up exhaustion case reports the true total rather than just the
// steps taken after them.
func (ix *IndexStore) estimate(cur cursor.Cursor, firstTS uint32, already int) (uint64, bool) {
	steps := 0
	for steps < sliceWarmup && cur.Peek() != nil {
		cur.Advance()
		steps++
	}
	if cur.Peek() == nil {
		return uint64(already + steps), true
	}

	magnitude := math.Log2(float64(steps))
	lastTS := firstTS

	for {
		head := cur.Peek()
		if head == nil {
			break
		}
		span := firstTS - head.TS
		probeTS := firstTS - 2*span
		if probeTS > lastTS {
			magnitude++
			break
		}
		if probeTS == lastTS {
			probeTS--
		}
		cur.FastForward(order.Probe(probeTS))
		lastTS = probeTS
		magnitude++
	}

	return uint64(math.Round(math.Pow(2, magnitude))), false
}

// scoredTopic pairs a topic id with its hot-ranking score.
type scoredTopic struct {
	id    uint64
	score float64
}

// Hot implements hot: ranks topics within the active window by recency
// and distinct-poster count, descending.
func (ix *IndexStore) Hot(e expr.Value, count int) ([]uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	cur, err := compile.Compile(ix.stores(), e)
	if err != nil {
		return nil, err
	}
	cur = cursor.Intersection(cur, cursor.Basic(ix.tags.Active.Topics))

	now := ix.now()
	cutoff := float64(ix.cfg.TopicCutoff)

	var scored []scoredTopic
	for {
		head := cur.Peek()
		if head == nil {
			break
		}
		age := float64(now - head.Created)
		ratio := age / cutoff
		score := (1 - ratio*ratio) * float64(len(head.MessageCounts))
		scored = append(scored, scoredTopic{id: head.ID, score: score})
		cur.Advance()
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > count {
		scored = scored[:count]
	}

	ids := make([]uint64, len(scored))
	for i, s := range scored {
		ids[i] = s.id
	}
	return ids, nil
}

// Sync implements sync: acquire the exclusive lease, release it, and
// report true once every previously issued mutation has been applied.
func (ix *IndexStore) Sync() bool {
	ix.mu.Lock()
	ix.mu.Unlock()
	return true
}
