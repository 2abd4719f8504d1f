// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

// scratchArena holds every slice and map the compile pipeline needs
// for the duration of one frame. It is owned by the Graph and reused
// across frames: reset truncates every collection to length zero
// instead of reallocating, so steady-state frames with a stable pass
// count settle into zero per-frame allocation for the registry and
// pass list themselves (spec.md §2's "all intermediate data uses a
// scratch arena scoped to the frame").
type scratchArena struct {
	reg    registry
	passes []pass

	// schedule is rebuilt by scheduleBarriers every frame; its
	// backing arrays are reused the same way.
	sched schedule
}

func newScratchArena() *scratchArena {
	a := &scratchArena{}
	a.reset()
	return a
}

// reset truncates every collection in the arena to length zero,
// keeping the backing storage for reuse, and clears the transient
// hash-collision map (which cannot be truncated in place).
func (a *scratchArena) reset() {
	a.reg.targets = a.reg.targets[:0]
	a.reg.buffers = a.reg.buffers[:0]
	a.reg.accels = a.reg.accels[:0]
	if a.reg.transientHashes == nil {
		a.reg.transientHashes = make(map[uint64]int)
	} else {
		clear(a.reg.transientHashes)
	}
	a.passes = a.passes[:0]
	a.sched.tex = a.sched.tex[:0]
	a.sched.buf = a.sched.buf[:0]
	a.sched.as = a.sched.as[:0]
}

// builder returns a Builder backed by the arena's reset collections.
// Its pass slice starts from the arena's zero-length, capacity-
// retaining a.passes, so Compile must write the grown slice back with
// commit before the arena is reset for the next frame.
func (a *scratchArena) builder() *Builder {
	return &Builder{reg: &a.reg, passes: a.passes}
}

// commit stores b's grown pass slice back into the arena so its
// capacity is retained across the next reset.
func (a *scratchArena) commit(b *Builder) {
	a.passes = b.passes
}
