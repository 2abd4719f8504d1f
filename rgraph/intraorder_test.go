// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import "testing"

func TestOrderBatchesGroupByKind(t *testing.T) {
	passes := []pass{
		{name: "G0", batch: 0, kind: Graphics},
		{name: "C0", batch: 0, kind: Compute},
		{name: "G1", batch: 0, kind: Graphics},
		{name: "C1", batch: 1, kind: Compute},
	}

	batches := orderBatches(passes, 2, GroupByKind, false)
	if len(batches) != 2 {
		t.Fatalf("batch count:\nhave %d\nwant 2", len(batches))
	}
	want0 := []int{0, 2, 1} // graphics first (declaration order), then compute
	if !intSliceEqual(batches[0], want0) {
		t.Fatalf("batch 0 order:\nhave %v\nwant %v", batches[0], want0)
	}
	if !intSliceEqual(batches[1], []int{3}) {
		t.Fatalf("batch 1 order:\nhave %v\nwant %v", batches[1], []int{3})
	}
}

func TestOrderBatchesGroupByKindComputeFirst(t *testing.T) {
	passes := []pass{
		{name: "G0", batch: 0, kind: Graphics},
		{name: "C0", batch: 0, kind: Compute},
	}
	batches := orderBatches(passes, 1, GroupByKind, true)
	if !intSliceEqual(batches[0], []int{1, 0}) {
		t.Fatalf("computeFirst order:\nhave %v\nwant %v", batches[0], []int{1, 0})
	}
}

// TestOrderBatchesAlternate exercises the alternating policy: each
// batch should start with the kind opposite to whatever the previous
// batch ended on.
func TestOrderBatchesAlternate(t *testing.T) {
	passes := []pass{
		{name: "G0", batch: 0, kind: Graphics},
		{name: "C0", batch: 0, kind: Compute}, // ordered first in batch 0, so batch 0 ends on G0
		{name: "C1", batch: 1, kind: Compute},
		{name: "G1", batch: 1, kind: Graphics},
	}

	batches := orderBatches(passes, 2, Alternate, false)
	// Batch 0 favours compute first (arbitrary starting choice): {C0, G0}.
	if !intSliceEqual(batches[0], []int{1, 0}) {
		t.Fatalf("batch 0 order:\nhave %v\nwant %v", batches[0], []int{1, 0})
	}
	// Batch 0 ended on Graphics (index 0, kind Graphics) so batch 1 must
	// favour compute first: {C1, G1}.
	if !intSliceEqual(batches[1], []int{2, 3}) {
		t.Fatalf("batch 1 order:\nhave %v\nwant %v", batches[1], []int{2, 3})
	}
}

func TestOrderBatchesEmptyBatch(t *testing.T) {
	passes := []pass{{name: "A", batch: 1, kind: Graphics}}
	batches := orderBatches(passes, 2, GroupByKind, false)
	if len(batches[0]) != 0 {
		t.Fatalf("empty batch 0:\nhave %v\nwant []", batches[0])
	}
	if !intSliceEqual(batches[1], []int{0}) {
		t.Fatalf("batch 1 order:\nhave %v\nwant %v", batches[1], []int{0})
	}
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
