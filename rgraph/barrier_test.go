// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"testing"

	"github.com/gviegas/rendergraph/driver"
)

// TestScheduleBarriersDiamond exercises S1's barrier expectations: a
// transient's first use needs an undefined->write transition, then a
// write->read transition before the batch that first samples it, and
// no further transition while every subsequent batch only samples it
// with the same usage.
func TestScheduleBarriersDiamond(t *testing.T) {
	reg := newRegistry()
	rt := reg.newRenderTarget(RenderTargetDesc{Layers: 1, Levels: 1, Samples: 1}, false)
	rtp := &reg.targets[rt.index()]
	rtp.history = []texAccess{
		{pass: 0, usage: TexFramebufWrite, sub: AllSurfaces()}, // A, batch 0
		{pass: 1, usage: TexSampled, sub: AllSurfaces()},       // B, batch 1
		{pass: 2, usage: TexSampled, sub: AllSurfaces()},       // C, batch 1
		{pass: 3, usage: TexSampled, sub: AllSurfaces()},       // D, batch 2
	}
	passes := []pass{{batch: 0}, {batch: 1}, {batch: 1}, {batch: 2}}

	sched := scheduleBarriers(passes, reg)

	if len(sched.tex) != 2 {
		t.Fatalf("transition count:\nhave %d\nwant 2 (undefined->write, write->read)", len(sched.tex))
	}
	if sched.tex[0].batch != 0 || sched.tex[0].after.usage != TexFramebufWrite {
		t.Fatalf("first transition:\nhave batch=%d after=%v\nwant batch=0 after=%v",
			sched.tex[0].batch, sched.tex[0].after.usage, TexFramebufWrite)
	}
	if sched.tex[1].batch != 1 || sched.tex[1].after.usage != TexSampled {
		t.Fatalf("second transition:\nhave batch=%d after=%v\nwant batch=1 after=%v",
			sched.tex[1].batch, sched.tex[1].after.usage, TexSampled)
	}
	for _, tr := range sched.tex {
		if tr.batch == 2 {
			t.Fatalf("no transition should be emitted before batch 2: R's usage did not change")
		}
	}
}

// TestScheduleBarriersReadReadElision exercises S4: an imported
// texture already in "sampled" usage gains no barrier when every pass
// in the frame also only samples it.
func TestScheduleBarriersReadReadElision(t *testing.T) {
	gpu := newTestGPU(t)
	reg := newRegistry()
	img := newTestImage(t, gpu, driver.RGBA8un, 64, 64)
	h := reg.importRenderTarget(img, TexSampled, false)
	rtp := &reg.targets[h.index()]
	rtp.history = []texAccess{
		{pass: 0, usage: TexSampled, sub: AllSurfaces()},
		{pass: 1, usage: TexSampled, sub: AllSurfaces()},
	}
	passes := []pass{{batch: 0}, {batch: 0}}

	sched := scheduleBarriers(passes, reg)
	if len(sched.tex) != 0 {
		t.Fatalf("transition count:\nhave %d\nwant 0", len(sched.tex))
	}
}

func TestSyncAndAccessForTexLayouts(t *testing.T) {
	for _, x := range []struct {
		usage TexUsage
		lay   driver.Layout
	}{
		{TexPresent, driver.LPresent},
		{TexFramebufWrite, driver.LColorTarget},
		{TexSampled, driver.LShaderRead},
		{TexTransferSrc, driver.LCopySrc},
		{TexTransferDst, driver.LCopyDst},
	} {
		_, _, lay := syncAndAccessForTex(x.usage, 0)
		if lay != x.lay {
			t.Fatalf("syncAndAccessForTex(%v) layout:\nhave %v\nwant %v", x.usage, lay, x.lay)
		}
	}
}

func TestScheduleBufTargetMerge(t *testing.T) {
	reg := newRegistry()
	h := reg.importBuffer(nil, 0, 256, BufShaderRead)
	br := &reg.buffers[h.index()]
	br.history = []bufAccess{
		{pass: 0, usage: BufShaderWrite},
		{pass: 1, usage: BufShaderRead},
	}
	passes := []pass{{batch: 0}, {batch: 1}}

	sched := scheduleBarriers(passes, reg)
	if len(sched.buf) != 2 {
		t.Fatalf("buffer barrier count:\nhave %d\nwant 2", len(sched.buf))
	}
	if sched.buf[1].before.AccessBefore != sched.buf[0].after.AccessAfter {
		t.Fatalf("second barrier's before-state does not chain from the first's after-state")
	}
}
