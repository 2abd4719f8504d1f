// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import "testing"

func TestScratchArenaRetainsCapacityAcrossReset(t *testing.T) {
	a := newScratchArena()
	b := a.builder()
	b.NewPass("A", Graphics)
	b.NewPass("B", Compute)
	a.commit(b)

	if len(a.passes) != 2 {
		t.Fatalf("arena pass count after commit:\nhave %d\nwant 2", len(a.passes))
	}
	capBefore := cap(a.passes)

	a.reset()
	if len(a.passes) != 0 {
		t.Fatalf("arena pass count after reset:\nhave %d\nwant 0", len(a.passes))
	}
	if cap(a.passes) != capBefore {
		t.Fatalf("reset reallocated the pass slice:\nhave cap %d\nwant cap %d", cap(a.passes), capBefore)
	}
}

func TestScratchArenaClearsTransientHashes(t *testing.T) {
	a := newScratchArena()
	b := a.builder()
	desc := RenderTargetDesc{Layers: 1, Levels: 1, Samples: 1}
	b.NewRenderTarget(desc)
	a.commit(b)

	if len(a.reg.transientHashes) != 1 {
		t.Fatalf("transient hash table size before reset:\nhave %d\nwant 1", len(a.reg.transientHashes))
	}
	a.reset()
	if len(a.reg.transientHashes) != 0 {
		t.Fatalf("transient hash table was not cleared by reset")
	}

	// The same descriptor must be acceptable again after reset: a
	// leftover entry would wrongly trigger the hash-collision panic.
	b2 := a.builder()
	b2.NewRenderTarget(desc)
}

func TestScratchArenaBuilderStartsEmpty(t *testing.T) {
	a := newScratchArena()
	b := a.builder()
	if len(b.passes) != 0 {
		t.Fatalf("fresh arena's builder pass slice:\nhave len %d\nwant 0", len(b.passes))
	}
}
