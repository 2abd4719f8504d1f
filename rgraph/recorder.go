// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gviegas/rendergraph/driver"
	"github.com/gviegas/rendergraph/internal/job"
)

// recordResult is what a single worker goroutine produces after
// recording its contiguous group of batches, per spec.md §4.9.
type recordResult struct {
	group           int
	cb              driver.CmdBuffer
	writesSwapchain bool
	scIndex         int
	pre, post       driver.TimestampQuery
	err             error
}

// recorder partitions the compiled batch sequence across the job
// manager's worker threads, records each partition into its own
// command buffer with embedded barriers and renderpass brackets, and
// submits with the swapchain acquire/present calls placed on whichever
// command buffer actually touches the swapchain, per spec.md §4.9.
type recorder struct {
	gpu   driver.GPU
	jobs  *job.Manager
	sc    driver.Swapchain
	graph *Graph
	stats bool
}

// commit submits cbs and returns a driver.Fence that signals once the
// GPU has finished executing them. driver.GPU.Commit reports
// completion over a channel rather than a caller-supplied fence
// object, so commit wraps that channel behind the fence interface the
// rest of the render graph (and its callers) expects.
func (r *recorder) commit(cbs []driver.CmdBuffer) (driver.Fence, error) {
	ch := make(chan error, 1)
	r.gpu.Commit(cbs, ch)
	return &chanFence{ch: ch}, nil
}

// recordAndSubmit runs the recorder over passes (already batched,
// ordered and barrier-scheduled) and commits the resulting command
// buffers. It returns a fence the caller can wait on for the frame's
// GPU work to complete.
func (r *recorder) recordAndSubmit(passes []pass, batches [][]int, sched *schedule, reg *registry) (driver.Fence, driver.TimestampQuery, driver.TimestampQuery, error) {
	batchCount := len(batches)
	if batchCount == 0 {
		return noopFence{}, nil, nil, nil
	}

	g := r.jobs.ThreadCount()
	if g > batchCount {
		g = batchCount
	}
	if g < 1 {
		g = 1
	}
	groups := partitionBatches(batchCount, g)

	results := make([]recordResult, len(groups))
	var firstSwapWriter atomic.Int64
	firstSwapWriter.Store(int64(len(groups))) // sentinel: "none"

	for gi, rng := range groups {
		gi, rng := gi, rng
		r.jobs.DispatchTask(func() {
			res := r.recordGroup(gi, rng, passes, batches, sched, reg, gi == 0, gi == len(groups)-1)
			results[gi] = res
			if res.writesSwapchain {
				for {
					cur := firstSwapWriter.Load()
					if int64(gi) >= cur || firstSwapWriter.CompareAndSwap(cur, int64(gi)) {
						break
					}
				}
			}
		})
	}
	r.jobs.WaitForAllTasksToFinish()

	for i := range results {
		if results[i].err != nil {
			return nil, nil, nil, results[i].err
		}
	}

	cbs := make([]driver.CmdBuffer, len(results))
	for i, res := range results {
		cbs[i] = res.cb
	}

	var pre, post driver.TimestampQuery
	for _, res := range results {
		if res.pre != nil {
			pre = res.pre
		}
	}
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].post != nil {
			post = results[i].post
			break
		}
	}

	splitAt := int(firstSwapWriter.Load())
	if splitAt <= 0 || splitAt >= len(cbs) {
		// No group wrote the swapchain, or the very first one did:
		// a single submission suffices.
		fence, err := r.commit(cbs)
		return fence, pre, post, err
	}
	if _, err := r.commit(cbs[:splitAt]); err != nil {
		return nil, nil, nil, err
	}
	fence, err := r.commit(cbs[splitAt:])
	return fence, pre, post, err
}

// partitionBatches splits [0, batchCount) into g contiguous,
// roughly-equal ranges, per spec.md §4.9.
func partitionBatches(batchCount, g int) [][2]int {
	ranges := make([][2]int, 0, g)
	base := batchCount / g
	rem := batchCount % g
	start := 0
	for i := 0; i < g; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		ranges = append(ranges, [2]int{start, start + size})
		start += size
	}
	return ranges
}

func (r *recorder) recordGroup(idx int, rng [2]int, passes []pass, batches [][]int, sched *schedule, reg *registry, isFirst, isLast bool) recordResult {
	cb, err := r.gpu.NewCmdBuffer(true)
	if err != nil {
		return recordResult{group: idx, err: deviceErr("NewCmdBuffer", err)}
	}
	if err := cb.Begin(); err != nil {
		return recordResult{group: idx, err: deviceErr("Begin", err)}
	}

	res := recordResult{group: idx, cb: cb}

	if isFirst && r.stats {
		if q, err := r.gpu.NewTimestampQuery(); err == nil {
			cb.WriteTimestamp(q)
			res.pre = q
		}
	}

	for b := rng[0]; b < rng[1]; b++ {
		emitBarriers(cb, sched, b)
		for _, pi := range batches[b] {
			p := &passes[pi]
			cb.PushMarker(p.name, [4]float32{0, 0, 0, 1})
			if p.swapchainWrite && r.sc != nil {
				res.writesSwapchain = true
				if idx, err := r.sc.Next(cb); err == nil {
					res.scIndex = idx
				}
			}
			if p.kind == Graphics && p.resolvedRP != nil {
				cb.BeginPass(p.resolvedRP.rp, p.resolvedRP.fb, p.resolvedRP.clear)
			}
			if p.work != nil {
				p.work(WorkContext{CmdBuffer: cb, Batch: b, Pass: pi, Graph: r.graph})
			}
			if p.kind == Graphics && p.resolvedRP != nil {
				cb.EndPass()
			}
			if p.swapchainWrite && r.sc != nil {
				r.sc.Present(res.scIndex, cb)
			}
			cb.PopMarker()
		}
	}

	if isLast && r.stats {
		if q, err := r.gpu.NewTimestampQuery(); err == nil {
			cb.WriteTimestamp(q)
			res.post = q
		}
	}

	if err := cb.End(); err != nil {
		res.err = deviceErr("End", err)
	}
	return res
}

// emitBarriers materializes every texture/buffer/AS barrier scheduled
// for batch b into a single SetBarrier call, sorting buffer barriers
// by identity to help the driver merge them, per spec.md §4.9.
func emitBarriers(cb driver.CmdBuffer, sched *schedule, b int) {
	var tex []driver.Transition
	var buf []driver.Barrier
	var as []driver.Barrier

	for _, t := range sched.tex {
		if t.batch != b {
			continue
		}
		tex = append(tex, driver.Transition{
			Barrier: driver.Barrier{
				SyncBefore:   t.before.sync,
				SyncAfter:    t.after.sync,
				AccessBefore: t.before.acc,
				AccessAfter:  t.after.acc,
			},
			LayoutBefore: t.before.lay,
			LayoutAfter:  t.after.lay,
		})
	}

	type keyed struct {
		key int
		bar driver.Barrier
	}
	var bufK []keyed
	for _, bb := range sched.buf {
		if bb.batch != b {
			continue
		}
		bufK = append(bufK, keyed{key: bb.target.index(), bar: driver.Barrier{
			SyncBefore:   bb.before.SyncBefore,
			SyncAfter:    bb.after.SyncAfter,
			AccessBefore: bb.before.AccessBefore,
			AccessAfter:  bb.after.AccessAfter,
		}})
	}
	sort.Slice(bufK, func(i, j int) bool { return bufK[i].key < bufK[j].key })
	for _, k := range bufK {
		buf = append(buf, k.bar)
	}

	for _, ab := range sched.as {
		if ab.batch != b {
			continue
		}
		as = append(as, driver.Barrier{
			SyncBefore:   ab.before.SyncBefore,
			SyncAfter:    ab.after.SyncAfter,
			AccessBefore: ab.before.AccessBefore,
			AccessAfter:  ab.after.AccessAfter,
		})
	}

	if len(tex) == 0 && len(buf) == 0 && len(as) == 0 {
		return
	}
	cb.SetBarrier(tex, buf, as)
}

// noopFence satisfies driver.Fence for frames with no batches to
// record, where there is no GPU work to wait on.
type noopFence struct{}

func (noopFence) Destroy()       {}
func (noopFence) Wait() error    { return nil }
func (noopFence) Signaled() bool { return true }

// chanFence adapts a GPU.Commit completion channel to driver.Fence.
type chanFence struct {
	ch   chan error
	mu   sync.Mutex
	done bool
	err  error
}

func (f *chanFence) Destroy() {}

func (f *chanFence) Wait() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.done {
		f.err = <-f.ch
		f.done = true
	}
	return f.err
}

func (f *chanFence) Signaled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return true
	}
	select {
	case f.err = <-f.ch:
		f.done = true
		return true
	default:
		return false
	}
}
