// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import "sort"

// IntraBatchPolicy selects how passes within a single batch are
// ordered before recording, per spec.md §4.7. Batching only
// guarantees a legal partition; any order within a batch is correct,
// so the policy is free to pick whichever reduces GPU queue-type
// context switches on the target device.
type IntraBatchPolicy int

const (
	// GroupByKind sorts every batch so that passes of one PassKind
	// precede the other, suiting devices that prefer grouping
	// same-kind work together.
	GroupByKind IntraBatchPolicy = iota
	// Alternate starts each batch with the kind opposite to
	// whichever kind the previous batch ended on, suiting devices
	// that prefer alternating between graphics and compute work.
	Alternate
)

// orderBatches groups pass indices by batch (in ascending batch
// order) and, within each batch, orders them per policy. computeFirst
// only matters for GroupByKind; Alternate tracks its own running flag
// across batches.
func orderBatches(passes []pass, batchCount int, policy IntraBatchPolicy, computeFirst bool) [][]int {
	batches := make([][]int, batchCount)
	for i := range passes {
		b := passes[i].batch
		batches[b] = append(batches[b], i)
	}

	switch policy {
	case GroupByKind:
		for _, b := range batches {
			sortByKind(passes, b, computeFirst)
		}
	case Alternate:
		// Start by favouring compute first; the choice is arbitrary
		// since there is no previous batch to alternate against.
		firstIsCompute := true
		for _, b := range batches {
			sortByKind(passes, b, firstIsCompute)
			if len(b) == 0 {
				continue
			}
			lastKind := passes[b[len(b)-1]].kind
			firstIsCompute = lastKind != Compute
		}
	}
	return batches
}

// sortByKind stably sorts the pass indices in b so that passes of the
// kind favoured by computeFirst come first, preserving declaration
// order within each kind.
func sortByKind(passes []pass, b []int, computeFirst bool) {
	rank := func(k PassKind) int {
		if computeFirst {
			if k == Compute {
				return 0
			}
			return 1
		}
		if k == Graphics {
			return 0
		}
		return 1
	}
	sort.SliceStable(b, func(i, j int) bool {
		return rank(passes[b[i]].kind) < rank(passes[b[j]].kind)
	})
}
