// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import "github.com/gviegas/rendergraph/driver"

// texState is the synchronization state a texture surface carries
// across batch boundaries.
type texState struct {
	usage TexUsage
	sync  driver.Sync
	acc   driver.Access
	lay   driver.Layout
}

// texTransitionPlan is a single surface's required layout change,
// scheduled to happen immediately before the named batch runs.
type texTransitionPlan struct {
	target RenderTargetHandle
	sub    SubResource
	before texState
	after  texState
	batch  int
}

// bufBarrierPlan is a required execution/memory barrier for a buffer
// range, scheduled immediately before the named batch runs.
type bufBarrierPlan struct {
	target BufferHandle
	before driver.Barrier
	after  driver.Barrier // only AccessAfter/SyncAfter are meaningful
	batch  int
}

// asBarrierPlan is a required execution/memory barrier for an
// acceleration structure, scheduled immediately before the named
// batch runs.
type asBarrierPlan struct {
	target AccelerationStructureHandle
	before driver.Barrier
	after  driver.Barrier
	batch  int
}

// schedule is the Barrier Scheduler's output: every barrier the frame
// needs, grouped by the batch it must precede (spec.md §4.6).
type schedule struct {
	tex []texTransitionPlan
	buf []bufBarrierPlan
	as  []asBarrierPlan
}

// syncAndAccessForTex maps a TexUsage bit combination to the
// synchronization scope and access mask a barrier needs, and to the
// image layout that usage requires.
func syncAndAccessForTex(u TexUsage, aspect Aspect) (sync driver.Sync, acc driver.Access, lay driver.Layout) {
	switch {
	case u&TexPresent != 0:
		return driver.SAll, driver.ANone, driver.LPresent
	case u&(TexFramebufWrite) != 0:
		if aspect != 0 {
			return driver.SDSOutput, driver.ADSWrite, driver.LDSTarget
		}
		return driver.SColorOutput, driver.AColorWrite, driver.LColorTarget
	case u&(TexFramebufRead) != 0:
		if aspect != 0 {
			return driver.SDSOutput, driver.ADSRead, driver.LDSRead
		}
		return driver.SColorOutput, driver.AColorRead, driver.LColorTarget
	case u&(TexUAVWrite|TexUAVRead) != 0:
		var acc driver.Access
		if u&TexUAVRead != 0 {
			acc |= driver.AShaderRead
		}
		if u&TexUAVWrite != 0 {
			acc |= driver.AShaderWrite
		}
		return driver.SComputeShading, acc, driver.LCommon
	case u&TexSampled != 0:
		return driver.SFragmentShading | driver.SComputeShading, driver.AShaderRead, driver.LShaderRead
	case u&TexTransferSrc != 0:
		return driver.SCopy, driver.ACopyRead, driver.LCopySrc
	case u&TexTransferDst != 0:
		return driver.SCopy, driver.ACopyWrite, driver.LCopyDst
	case u&TexMipGen != 0:
		return driver.SResolve, driver.AResolveWrite, driver.LResolveDst
	case u&TexShadingRate != 0:
		return driver.SDraw, driver.AAnyRead, driver.LShaderRead
	default:
		return driver.SNone, driver.ANone, driver.LUndefined
	}
}

func syncAndAccessForBuf(u BufUsage) (driver.Sync, driver.Access) {
	switch {
	case u&BufShaderWrite != 0:
		return driver.SComputeShading, driver.AShaderWrite
	case u&BufShaderRead != 0:
		return driver.SVertexShading | driver.SFragmentShading | driver.SComputeShading, driver.AShaderRead
	case u&BufConstantRead != 0:
		return driver.SVertexShading | driver.SFragmentShading | driver.SComputeShading, driver.AShaderRead
	case u&BufVertexRead != 0:
		return driver.SVertexInput, driver.AVertexBufRead
	case u&BufIndexRead != 0:
		return driver.SVertexInput, driver.AIndexBufRead
	case u&BufTransferSrc != 0:
		return driver.SCopy, driver.ACopyRead
	case u&BufTransferDst != 0:
		return driver.SCopy, driver.ACopyWrite
	case u&BufIndirectRead != 0:
		return driver.SDraw, driver.AAnyRead
	default:
		return driver.SNone, driver.ANone
	}
}

func syncAndAccessForAS(u ASUsage) (driver.Sync, driver.Access) {
	switch {
	case u&ASBuildWrite != 0:
		return driver.SComputeShading, driver.AShaderWrite
	case u&ASBuildRead != 0:
		return driver.SComputeShading, driver.AShaderRead
	case u&ASTraceRead != 0:
		return driver.SComputeShading, driver.AShaderRead
	default:
		return driver.SNone, driver.ANone
	}
}

// scheduleBarriers walks each resource's history, grouped by batch,
// and emits the minimal set of transitions/barriers needed at every
// batch boundary, per spec.md §4.6: within a batch every access is
// mutually non-conflicting (the analyser guarantees this), so all
// accesses to a surface within one batch share a single before/after
// state; a barrier is only emitted when that state differs from the
// state the surface carried out of its previous batch.
func scheduleBarriers(passes []pass, reg *registry) *schedule {
	s := &schedule{}
	for h := range reg.targets {
		scheduleTexTarget(renderTargetHandle(h), &reg.targets[h], passes, s)
	}
	for h := range reg.buffers {
		scheduleBufTarget(bufferHandle(h), &reg.buffers[h], passes, s)
	}
	for h := range reg.accels {
		scheduleASTarget(asHandle(h), &reg.accels[h], passes, s)
	}
	return s
}

func scheduleTexTarget(h RenderTargetHandle, rt *renderTarget, passes []pass, s *schedule) {
	if len(rt.history) == 0 {
		return
	}
	// Group contiguous history entries that share a batch. For
	// simplicity and correctness under the analyser's coarse overlap
	// rule, a render target's barrier state is tracked as a whole: a
	// group names its entries' SubResource when they all agree and
	// all surfaces otherwise, matching the coarse-grained conflict
	// detection already performed in analyse: a single surface with
	// mixed resource-wide and specific-surface dependencies is
	// serialized by the analyser into separate batches whenever they
	// would otherwise race.
	type group struct {
		batch int
		usage TexUsage
		sub   SubResource
	}
	var groups []group
	for _, a := range rt.history {
		b := passes[a.pass].batch
		if n := len(groups); n > 0 && groups[n-1].batch == b {
			groups[n-1].usage |= a.usage
			if a.sub.All || a.sub != groups[n-1].sub {
				groups[n-1].sub = SubResource{All: true, Aspect: groups[n-1].sub.Aspect | a.sub.Aspect}
			}
			continue
		}
		groups = append(groups, group{batch: b, usage: a.usage, sub: a.sub})
	}

	var aspect Aspect
	if rt.depthStencil {
		aspect = AspectDepth | AspectStencil
	}
	priorSync, priorAcc, priorLay := syncAndAccessForTex(rt.priorUsage, aspect)
	if !rt.imported {
		priorLay = driver.LUndefined
	}
	prev := texState{usage: rt.priorUsage, sync: priorSync, acc: priorAcc, lay: priorLay}

	for _, g := range groups {
		sync, acc, lay := syncAndAccessForTex(g.usage, aspect)
		cur := texState{usage: g.usage, sync: sync, acc: acc, lay: lay}
		if cur.lay != prev.lay || cur.acc != prev.acc {
			s.tex = append(s.tex, texTransitionPlan{
				target: h,
				sub:    g.sub,
				before: prev,
				after:  cur,
				batch:  g.batch,
			})
		}
		prev = cur
	}
}

func scheduleBufTarget(h BufferHandle, br *bufferRange, passes []pass, s *schedule) {
	if len(br.history) == 0 {
		return
	}
	type group struct {
		batch int
		usage BufUsage
	}
	var groups []group
	for _, a := range br.history {
		b := passes[a.pass].batch
		if n := len(groups); n > 0 && groups[n-1].batch == b {
			groups[n-1].usage |= a.usage
			continue
		}
		groups = append(groups, group{batch: b, usage: a.usage})
	}

	prevSync, prevAcc := syncAndAccessForBuf(br.usage)
	prev := driver.Barrier{SyncAfter: prevSync, AccessAfter: prevAcc}
	for _, g := range groups {
		sync, acc := syncAndAccessForBuf(g.usage)
		cur := driver.Barrier{SyncAfter: sync, AccessAfter: acc}
		if cur.AccessAfter != prev.AccessAfter || cur.SyncAfter != prev.SyncAfter {
			s.buf = append(s.buf, bufBarrierPlan{
				target: h,
				before: driver.Barrier{SyncBefore: prev.SyncAfter, AccessBefore: prev.AccessAfter},
				after:  cur,
				batch:  g.batch,
			})
		}
		prev = cur
	}
}

func scheduleASTarget(h AccelerationStructureHandle, as *accelStruct, passes []pass, s *schedule) {
	if len(as.history) == 0 {
		return
	}
	type group struct {
		batch int
		usage ASUsage
	}
	var groups []group
	for _, a := range as.history {
		b := passes[a.pass].batch
		if n := len(groups); n > 0 && groups[n-1].batch == b {
			groups[n-1].usage |= a.usage
			continue
		}
		groups = append(groups, group{batch: b, usage: a.usage})
	}

	var prev driver.Barrier
	for _, g := range groups {
		sync, acc := syncAndAccessForAS(g.usage)
		cur := driver.Barrier{SyncAfter: sync, AccessAfter: acc}
		if cur.AccessAfter != prev.AccessAfter || cur.SyncAfter != prev.SyncAfter {
			s.as = append(s.as, asBarrierPlan{
				target: h,
				before: driver.Barrier{SyncBefore: prev.SyncAfter, AccessBefore: prev.AccessAfter},
				after:  cur,
				batch:  g.batch,
			})
		}
		prev = cur
	}
}
