// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"math/bits"

	"github.com/gviegas/rendergraph/internal/bitvec"
)

// batchPasses partitions passes into batches, per spec.md §4.4: a
// batch is the largest set of not-yet-scheduled passes whose
// predecessors are all already scheduled in an earlier batch. Passes
// within the same batch are considered to execute concurrently (their
// histories proved them free of conflicting accesses); the count of
// batches is the critical path length through the frame's dependency
// graph.
//
// It assigns each pass's batch field and returns the batch count.
func batchPasses(passes []pass) int {
	n := len(passes)
	if n == 0 {
		return 0
	}

	var assigned bitvec.V[uint64]
	assigned.Grow((n + 63) / 64)

	var members []int
	remaining := n
	batch := 0
	for remaining > 0 {
		members = members[:0]
		for i := range passes {
			if assigned.IsSet(i) {
				continue
			}
			if !predsAssigned(passes[i].pred, &assigned) {
				continue
			}
			members = append(members, i)
		}
		if len(members) == 0 {
			// Predecessor edges only ever point at earlier-declared
			// passes, so the graph is acyclic by construction; this
			// is unreachable, but guards against an infinite loop if
			// that invariant is ever broken.
			panicContract("dependency graph is not acyclic")
		}
		for _, i := range members {
			passes[i].batch = batch
			assigned.Set(i)
		}
		remaining -= len(members)
		batch++
	}
	return batch
}

// predsAssigned reports whether every predecessor named in pred has
// already been assigned a batch.
func predsAssigned(pred []uint64, assigned *bitvec.V[uint64]) bool {
	for w, word := range pred {
		for word != 0 {
			j := w*64 + bits.TrailingZeros64(word)
			if !assigned.IsSet(j) {
				return false
			}
			word &= word - 1
		}
	}
	return true
}
