// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import "github.com/gviegas/rendergraph/internal/bitm"

// analyse computes, for every pass in passes, the bitset of passes it
// must follow, per spec.md §4.3: pass j is a predecessor of pass i
// (j < i) if they declare dependencies on the same render target
// surface, buffer range or acceleration structure, and the two
// accesses conflict (a read/write, write/read or write/write pair).
//
// The scan is O(n²) in the number of passes: for every resource, every
// pair of accesses in its history is checked once. Results are
// written into each pass's pred field as a row of a single growable
// bitmap, one row of ⌈n/64⌉ words per pass.
func analyse(passes []pass, reg *registry) {
	n := len(passes)
	if n == 0 {
		return
	}
	rows := newPredRows(n)

	for i := range reg.targets {
		scanTexHistory(reg.targets[i].history, reg.targets[i].layers, reg.targets[i].faces, rows)
	}
	for i := range reg.buffers {
		scanBufHistory(reg.buffers[i].history, rows)
	}
	for i := range reg.accels {
		scanASHistory(reg.accels[i].history, rows)
	}

	for i := range passes {
		passes[i].pred = rows.row(i)
	}
}

// predRows is a bank of n fixed-width predecessor bitsets, one per
// pass, backed by a single bitm.Bitm[uint64].
type predRows struct {
	bits  bitm.Bitm[uint64]
	words int
	n     int
}

func newPredRows(n int) *predRows {
	words := (n + 63) / 64
	if words == 0 {
		words = 1
	}
	r := &predRows{words: words, n: n}
	r.bits.Grow(words * n)
	return r
}

// set marks j as a predecessor of i (j must be < i; later in the
// frame's declared order).
func (r *predRows) set(i, j int) {
	if j >= i {
		return
	}
	r.bits.Set(i*r.words*64 + j)
}

// row extracts pass i's predecessor bitset as a slice of words.
func (r *predRows) row(i int) []uint64 {
	out := make([]uint64, r.words)
	base := i * r.words * 64
	for w := 0; w < r.words; w++ {
		var word uint64
		for b := 0; b < 64; b++ {
			if w*64+b >= r.n {
				break
			}
			if r.bits.IsSet(base + w*64 + b) {
				word |= 1 << b
			}
		}
		out[w] = word
	}
	return out
}

// scanTexHistory records a predecessor edge for every conflicting pair
// of accesses to overlapping sub-resources in history.
func scanTexHistory(history []texAccess, layers, faces int, rows *predRows) {
	for a := 0; a < len(history); a++ {
		for b := a + 1; b < len(history); b++ {
			x, y := history[a], history[b]
			if !x.sub.overlaps(y.sub) {
				continue
			}
			if conflicts(x.usage.IsRead(), x.usage.IsWrite(), y.usage.IsRead(), y.usage.IsWrite()) {
				rows.set(y.pass, x.pass)
			}
		}
	}
}

// scanBufHistory records a predecessor edge for every conflicting pair
// of accesses in a buffer range's history. Buffer ranges have no
// sub-resources: every pair of accesses to the same registered range
// is an overlap by construction.
func scanBufHistory(history []bufAccess, rows *predRows) {
	for a := 0; a < len(history); a++ {
		for b := a + 1; b < len(history); b++ {
			x, y := history[a], history[b]
			if conflicts(x.usage.IsRead(), x.usage.IsWrite(), y.usage.IsRead(), y.usage.IsWrite()) {
				rows.set(y.pass, x.pass)
			}
		}
	}
}

// scanASHistory records a predecessor edge for every conflicting pair
// of accesses in an acceleration structure's history.
func scanASHistory(history []asAccess, rows *predRows) {
	for a := 0; a < len(history); a++ {
		for b := a + 1; b < len(history); b++ {
			x, y := history[a], history[b]
			if conflicts(x.usage.IsRead(), x.usage.IsWrite(), y.usage.IsRead(), y.usage.IsWrite()) {
				rows.set(y.pass, x.pass)
			}
		}
	}
}

// predHasAny reports whether pred has any bit set.
func predHasAny(pred []uint64) bool {
	for _, w := range pred {
		if w != 0 {
			return true
		}
	}
	return false
}

// predIsSet reports whether j is set in pred.
func predIsSet(pred []uint64, j int) bool {
	i := j / 64
	if i >= len(pred) {
		return false
	}
	return pred[i]&(1<<(uint(j)%64)) != 0
}

// predSet sets bit j in pred.
func predSet(pred []uint64, j int) {
	i := j / 64
	if i < len(pred) {
		pred[i] |= 1 << (uint(j) % 64)
	}
}

// predOr ORs src's bits into dst in place.
func predOr(dst, src []uint64) {
	for i := range dst {
		if i < len(src) {
			dst[i] |= src[i]
		}
	}
}
