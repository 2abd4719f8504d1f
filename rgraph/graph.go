// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"time"

	"github.com/google/uuid"

	"github.com/gviegas/rendergraph/driver"
	"github.com/gviegas/rendergraph/internal/job"
)

// Config configures a Graph's optional policies. The zero Config is
// valid and selects the defaults described in spec.md §4.7/§4.8.
type Config struct {
	// IntraBatchPolicy selects how passes within a batch are ordered.
	IntraBatchPolicy IntraBatchPolicy
	// ComputeFirst biases GroupByKind towards compute passes.
	ComputeFirst bool
	// CleanupEveryNResets overrides the Transient Resource Pool's
	// cleanup cadence. Zero keeps defaultCleanupEveryResets.
	CleanupEveryNResets int
}

// Statistics reports the cost of the most recently submitted frame,
// per spec.md §6. GPUTime is zero until the frame's timestamp queries
// resolve (they are only written when statistics gathering was
// requested for that frame via Builder.GatherStatistics).
type Statistics struct {
	GPUTime               time.Duration
	CPUStartTime          time.Time
	GPUMemoryUsed         int64
	GPUMemoryPoolCapacity int64
}

// Graph owns the state that persists across frames: the Transient
// Resource Pool, the scratch arena backing the current frame's
// registry and pass list, and the cross-frame table of imported
// textures' last-known usage (spec.md §4.10).
//
// A Graph is not safe for concurrent use; its methods are meant to be
// called from a single frame-building thread, per spec.md §5.
type Graph struct {
	gpu  driver.GPU
	sc   driver.Swapchain
	jobs *job.Manager

	pool  *pool
	arena *scratchArena

	policy       IntraBatchPolicy
	computeFirst bool

	// uuidUsage is the cross-frame table consulted by
	// importRenderTargetUndefined (spec.md §4.10).
	uuidUsage map[uuid.UUID]TexUsage

	batches     [][]int
	gatherStats bool

	lastFence driver.Fence

	statsPre, statsPost driver.TimestampQuery
	statsCPUStart       time.Time

	frameVersion uint64
}

// NewGraph creates a Graph that compiles and records frames against
// gpu, presenting to sc (which may be nil for offscreen-only graphs)
// and parallelizing command-buffer recording across jobs.
func NewGraph(gpu driver.GPU, sc driver.Swapchain, jobs *job.Manager, cfg Config) *Graph {
	p := newPool(gpu)
	if cfg.CleanupEveryNResets > 0 {
		p.cleanupEveryResets = cfg.CleanupEveryNResets
	}
	return &Graph{
		gpu:          gpu,
		sc:           sc,
		jobs:         jobs,
		pool:         p,
		arena:        newScratchArena(),
		policy:       cfg.IntraBatchPolicy,
		computeFirst: cfg.ComputeFirst,
		uuidUsage:    make(map[uuid.UUID]TexUsage),
	}
}

// NewBuilder returns a Builder backed by the Graph's scratch arena,
// ready to register this frame's resources and passes.
func (g *Graph) NewBuilder() *Builder {
	return g.arena.builder()
}

// Compile runs the Dependency Analyser, Batcher, attachment
// resolution and Barrier Scheduler over b, per the order spec.md §2
// lays out. It must be called exactly once per frame, before
// RecordAndSubmit.
// Contract violations found here (a transient with no dependencies)
// panic with a *ContractError rather than returning one, as do the
// ones the Builder calls already caught at registration (overlapping
// imports, hash collisions), per errors.go/spec.md §4.11: they are
// programming errors on the builder surface, not recoverable frame
// errors.
func (g *Graph) Compile(b *Builder) error {
	reg := b.reg
	resolveUndefinedImports(g, reg)

	if err := materializeTransients(g.pool, reg); err != nil {
		return err
	}

	passes := b.passes
	analyse(passes, reg)
	batchCount := batchPasses(passes)

	if err := resolveAttachments(g.gpu, passes, reg); err != nil {
		return err
	}

	sched := scheduleBarriers(passes, reg)
	batches := orderBatches(passes, batchCount, g.policy, g.computeFirst)

	g.arena.sched.tex = append(g.arena.sched.tex[:0], sched.tex...)
	g.arena.sched.buf = append(g.arena.sched.buf[:0], sched.buf...)
	g.arena.sched.as = append(g.arena.sched.as[:0], sched.as...)
	g.batches = batches
	g.gatherStats = b.gatherStats
	g.arena.commit(b)

	return nil
}

// resolveUndefinedImports fills in the prior usage of every
// importRenderTargetUndefined target from the cross-frame table,
// defaulting to TexUsage(0) for a texture never seen before.
func resolveUndefinedImports(g *Graph, reg *registry) {
	for i := range reg.targets {
		rt := &reg.targets[i]
		if rt.imported && rt.importUndefined {
			rt.priorUsage = g.uuidUsage[rt.tex.UUID()]
			rt.importUndefined = false
		}
	}
}

// materializeTransients acquires a pool texture for every transient
// render target, keyed by its descriptor and the usage its passes
// derived this frame. A transient with no declared dependencies is a
// graph shape anomaly (spec.md §4.11).
func materializeTransients(p *pool, reg *registry) error {
	for i := range reg.targets {
		rt := &reg.targets[i]
		if rt.imported {
			continue
		}
		if rt.derivedUsage == 0 {
			panicContract("transient render target %d has no dependencies", i)
		}
		tex, err := p.acquire(rt.desc, rt.derivedUsage, texUsageToDriverUsage(rt.derivedUsage))
		if err != nil {
			return err
		}
		rt.resolved = tex
	}
	return nil
}

// texUsageToDriverUsage derives the driver.Usage flags a transient
// texture's creation call needs from the usages its passes declared.
func texUsageToDriverUsage(u TexUsage) driver.Usage {
	var d driver.Usage
	if u&(TexSampled|TexUAVRead|TexMipGen|TexShadingRate) != 0 {
		d |= driver.UShaderSample | driver.UShaderRead
	}
	if u&TexUAVWrite != 0 {
		d |= driver.UShaderWrite
	}
	if u&(TexFramebufRead|TexFramebufWrite|TexMipGen) != 0 {
		d |= driver.URenderTarget
	}
	if u&(TexTransferSrc|TexTransferDst) != 0 {
		d |= driver.UGeneric
	}
	return d
}

// RecordAndSubmit runs the Recorder over the batches and barriers
// Compile produced and submits the resulting command buffers. If
// fenceOut is non-nil, it receives a fence signaled once the GPU has
// finished the frame's work.
func (g *Graph) RecordAndSubmit(fenceOut *driver.Fence) error {
	start := time.Now()
	rec := &recorder{gpu: g.gpu, jobs: g.jobs, sc: g.sc, graph: g, stats: g.gatherStats}
	fence, pre, post, err := rec.recordAndSubmit(g.arena.passes, g.batches, &g.arena.sched, &g.arena.reg)
	if err != nil {
		return err
	}

	if g.statsPre != nil {
		g.statsPre.Destroy()
	}
	if g.statsPost != nil {
		g.statsPost.Destroy()
	}
	g.statsPre, g.statsPost = pre, post
	g.statsCPUStart = start
	g.lastFence = fence

	if fenceOut != nil {
		*fenceOut = fence
	}
	return nil
}

// Reset writes back every imported texture's final usage to the
// cross-frame table, destroys the frame's resolved renderpasses,
// rewinds the Transient Resource Pool and clears the scratch arena
// for the next frame, per spec.md §4.10.
func (g *Graph) Reset() {
	for i := range g.arena.reg.targets {
		rt := &g.arena.reg.targets[i]
		if !rt.imported {
			continue
		}
		// The final usage is the combined usage of the last batch
		// in the target's history (grouped as the barrier scheduler
		// groups it), or the prior usage if no pass touched it.
		final, last := rt.priorUsage, -1
		for _, a := range rt.history {
			if a.pass >= len(g.arena.passes) {
				continue
			}
			if b := g.arena.passes[a.pass].batch; b != last {
				final, last = 0, b
			}
			final |= a.usage
		}
		g.uuidUsage[rt.tex.UUID()] = final
	}

	destroyResolvedRenderpasses(g.arena.passes)
	g.pool.reset(g.lastFence)
	g.arena.reset()
	g.batches = nil
	g.frameVersion++
}

// destroyResolvedRenderpasses releases every driver object attachment
// resolution created for the frame's graphics passes.
func destroyResolvedRenderpasses(passes []pass) {
	for i := range passes {
		rrp := passes[i].resolvedRP
		if rrp == nil {
			continue
		}
		for _, c := range rrp.color {
			c.view.Destroy()
		}
		if rrp.ds != nil {
			rrp.ds.view.Destroy()
		}
		rrp.fb.Destroy()
		rrp.rp.Destroy()
		passes[i].resolvedRP = nil
	}
}

// GetTexture returns the concrete texture a render target handle
// resolved to. Valid between Compile and Reset.
func (g *Graph) GetTexture(h RenderTargetHandle) driver.Image {
	return g.arena.reg.targets[h.index()].resolved
}

// GetBuffer returns the concrete buffer and byte range a buffer
// handle names. Valid between Compile and Reset.
func (g *Graph) GetBuffer(h BufferHandle) (buf driver.Buffer, offset, size int64) {
	br := &g.arena.reg.buffers[h.index()]
	return br.buf, br.offset, br.size
}

// GetAccelerationStructure returns the concrete acceleration
// structure an AS handle names. Valid between Compile and Reset.
func (g *Graph) GetAccelerationStructure(h AccelerationStructureHandle) driver.AccelerationStructure {
	return g.arena.reg.accels[h.index()].as
}

// GetStatistics reports the cost of the most recently submitted
// frame. GPUTime is zero if the frame did not request statistics
// gathering or if its timestamp queries have not resolved yet.
func (g *Graph) GetStatistics() Statistics {
	st := Statistics{CPUStartTime: g.statsCPUStart}
	if g.statsPre != nil && g.statsPost != nil {
		if pre, ok := g.statsPre.Result(); ok {
			if post, ok := g.statsPost.Result(); ok {
				st.GPUTime = time.Duration(post-pre) * time.Nanosecond
			}
		}
	}
	st.GPUMemoryUsed, st.GPUMemoryPoolCapacity = g.pool.memoryStats()
	return st
}
