// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"testing"

	"github.com/gviegas/rendergraph/driver"
	"github.com/gviegas/rendergraph/driver/noop"
	"github.com/gviegas/rendergraph/internal/job"
	"github.com/gviegas/rendergraph/wsi"
)

func newTestSwapchain(t *testing.T, gpu driver.GPU, imageCount int) *noop.Swapchain {
	t.Helper()
	win, err := wsi.NewWindow(640, 480, "rgraph-test")
	if err != nil {
		t.Fatalf("wsi.NewWindow: %v", err)
	}
	sc, err := gpu.(driver.Presenter).NewSwapchain(win, imageCount)
	if err != nil {
		t.Fatalf("NewSwapchain: %v", err)
	}
	return sc.(*noop.Swapchain)
}

// TestGraphOffscreenFanOut exercises the fan-out half of S1 end-to-end:
// a compile/record/reset cycle with no swapchain writes in which A
// writes R and B and C both sample it (B also writing S), asserting
// that each of the three passes is recorded once and that A, alone in
// the first batch, is recorded first. A single worker records every
// batch in order, so the order of the work closures is deterministic.
func TestGraphOffscreenFanOut(t *testing.T) {
	gpu := newTestGPU(t)
	jobs := job.New(1)
	g := NewGraph(gpu, nil, jobs, Config{})

	var recorded []string
	b := g.NewBuilder()
	r := b.NewRenderTarget(RenderTargetDesc{
		PixelFmt: driver.RGBA8un,
		Size:     driver.Dim3D{Width: 64, Height: 64, Depth: 1},
		Layers:   1, Levels: 1, Samples: 1,
	})
	s := b.NewRenderTarget(RenderTargetDesc{
		PixelFmt: driver.RGBA8un,
		Size:     driver.Dim3D{Width: 32, Height: 32, Depth: 1},
		Layers:   1, Levels: 1, Samples: 1,
	})

	mkPass := func(name string, reads, writes []RenderTargetHandle) {
		pb := b.NewPass(name, Graphics)
		var color []ColorAttachment
		for _, h := range writes {
			pb.NewTextureDependency(h, TexFramebufWrite, AllSurfaces())
			color = append(color, ColorAttachment{Target: h, Sub: AllSurfaces(), Load: driver.LClear, Store: driver.SStore})
		}
		for _, h := range reads {
			pb.NewTextureDependency(h, TexSampled, AllSurfaces())
		}
		pb.SetRenderpassInfo(RenderpassInfo{Color: color})
		pb.SetWork(func(WorkContext) { recorded = append(recorded, name) })
	}

	mkPass("A", nil, []RenderTargetHandle{r})
	mkPass("B", []RenderTargetHandle{r}, []RenderTargetHandle{s})
	mkPass("C", []RenderTargetHandle{r}, nil)

	if err := g.Compile(b); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var fence driver.Fence
	if err := g.RecordAndSubmit(&fence); err != nil {
		t.Fatalf("RecordAndSubmit: %v", err)
	}
	if fence != nil {
		fence.Wait()
	}
	if len(recorded) != 3 {
		t.Fatalf("passes recorded:\nhave %v\nwant 3 entries", recorded)
	}
	if recorded[0] != "A" {
		t.Fatalf("recording order:\nhave %v\nwant A first", recorded)
	}
	g.Reset()
}

// TestGraphSwapchainSplit exercises S5: a pass that writes the
// swapchain in a later group splits the frame into two submissions
// (four command buffers here, one per group), with the acquire/present
// calls landing on the command buffer that contains the
// swapchain-writing pass.
func TestGraphSwapchainSplit(t *testing.T) {
	gpu := newTestGPU(t)
	sc := newTestSwapchain(t, gpu, 2)
	jobs := job.New(4)
	g := NewGraph(gpu, sc, jobs, Config{})

	b := g.NewBuilder()
	img := newTestImage(t, gpu, driver.RGBA8un, 64, 64)
	off := b.ImportRenderTarget(img, TexUsage(0))

	var order []string
	mkPass := func(name string, writesSwap bool) {
		pb := b.NewPass(name, Graphics)
		pb.NewTextureDependency(off, TexFramebufWrite, AllSurfaces())
		pb.SetRenderpassInfo(RenderpassInfo{Color: []ColorAttachment{
			{Target: off, Sub: AllSurfaces(), Load: driver.LClear, Store: driver.SStore},
		}})
		pb.SetSwapchainWrite(writesSwap)
		pb.SetWork(func(WorkContext) { order = append(order, name) })
	}
	// Four independent passes on the same target serialize into four
	// batches (each writes the whole resource); the third one presents.
	mkPass("P0", false)
	mkPass("P1", false)
	mkPass("P2", true)
	mkPass("P3", false)

	if err := g.Compile(b); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := g.RecordAndSubmit(nil); err != nil {
		t.Fatalf("RecordAndSubmit: %v", err)
	}
	if len(order) != 4 {
		t.Fatalf("passes recorded:\nhave %v\nwant 4 entries", order)
	}
	if len(sc.Acquired) != 1 || len(sc.Presented) != 1 {
		t.Fatalf("swapchain calls:\nhave acquired=%d presented=%d\nwant 1, 1", len(sc.Acquired), len(sc.Presented))
	}
	if sc.Acquired[0].CB != sc.Presented[0].CB {
		t.Fatalf("acquire and present landed on different command buffers")
	}
	g.Reset()
}

// TestGraphTransientReuseAcrossFrames exercises S6: a transient
// render target with a stable descriptor resolves to the same
// underlying image on the next frame, after Reset rewinds the pool.
func TestGraphTransientReuseAcrossFrames(t *testing.T) {
	gpu := newTestGPU(t)
	jobs := job.New(1)
	g := NewGraph(gpu, nil, jobs, Config{})

	desc := RenderTargetDesc{
		PixelFmt: driver.RGBA8un,
		Size:     driver.Dim3D{Width: 128, Height: 128, Depth: 1},
		Layers:   1, Levels: 1, Samples: 1,
	}

	runFrame := func() driver.Image {
		b := g.NewBuilder()
		rt := b.NewRenderTarget(desc)
		pb := b.NewPass("Fill", Graphics)
		pb.NewTextureDependency(rt, TexFramebufWrite, AllSurfaces())
		pb.SetRenderpassInfo(RenderpassInfo{Color: []ColorAttachment{
			{Target: rt, Sub: AllSurfaces(), Load: driver.LClear, Store: driver.SStore},
		}})
		pb.SetWork(func(WorkContext) {})
		if err := g.Compile(b); err != nil {
			t.Fatalf("Compile: %v", err)
		}
		tex := g.GetTexture(rt)
		if err := g.RecordAndSubmit(nil); err != nil {
			t.Fatalf("RecordAndSubmit: %v", err)
		}
		g.Reset()
		return tex
	}

	tex1 := runFrame()
	tex2 := runFrame()
	if tex1 != tex2 {
		t.Fatalf("transient did not recycle across frames: got two distinct images")
	}
}

// TestGraphGetStatisticsReportsMemory exercises GetStatistics' memory
// accounting: once a transient has been acquired, capacity must be
// positive and used must not exceed it.
func TestGraphGetStatisticsReportsMemory(t *testing.T) {
	gpu := newTestGPU(t)
	jobs := job.New(1)
	g := NewGraph(gpu, nil, jobs, Config{})

	b := g.NewBuilder()
	rt := b.NewRenderTarget(RenderTargetDesc{
		PixelFmt: driver.RGBA8un,
		Size:     driver.Dim3D{Width: 64, Height: 64, Depth: 1},
		Layers:   1, Levels: 1, Samples: 1,
	})
	pb := b.NewPass("Fill", Graphics)
	pb.NewTextureDependency(rt, TexFramebufWrite, AllSurfaces())
	pb.SetRenderpassInfo(RenderpassInfo{Color: []ColorAttachment{
		{Target: rt, Sub: AllSurfaces(), Load: driver.LClear, Store: driver.SStore},
	}})
	pb.SetWork(func(WorkContext) {})

	if err := g.Compile(b); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := g.RecordAndSubmit(nil); err != nil {
		t.Fatalf("RecordAndSubmit: %v", err)
	}
	st := g.GetStatistics()
	if st.GPUMemoryPoolCapacity <= 0 {
		t.Fatalf("GetStatistics capacity:\nhave %d\nwant > 0", st.GPUMemoryPoolCapacity)
	}
	if st.GPUMemoryUsed > st.GPUMemoryPoolCapacity {
		t.Fatalf("GetStatistics used (%d) exceeds capacity (%d)", st.GPUMemoryUsed, st.GPUMemoryPoolCapacity)
	}
	g.Reset()
}

// TestGraphWritebackRoundTrip exercises invariant 4 (Usage round-trip,
// spec.md §8): an imported texture's final usage this frame (the usage
// of the last batch that touched it) becomes its prior usage next
// frame, recovered via ImportRenderTargetUndefined.
func TestGraphWritebackRoundTrip(t *testing.T) {
	gpu := newTestGPU(t)
	jobs := job.New(1)
	g := NewGraph(gpu, nil, jobs, Config{})
	img := newTestImage(t, gpu, driver.RGBA8un, 64, 64)

	b := g.NewBuilder()
	h := b.ImportRenderTarget(img, TexUsage(0))
	pb := b.NewPass("Fill", Graphics)
	pb.NewTextureDependency(h, TexFramebufWrite, AllSurfaces())
	pb.SetRenderpassInfo(RenderpassInfo{Color: []ColorAttachment{
		{Target: h, Sub: AllSurfaces(), Load: driver.LClear, Store: driver.SStore},
	}})
	pb.SetWork(func(WorkContext) {})
	if err := g.Compile(b); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := g.RecordAndSubmit(nil); err != nil {
		t.Fatalf("RecordAndSubmit: %v", err)
	}
	g.Reset()

	b2 := g.NewBuilder()
	h2 := b2.ImportRenderTargetUndefined(img)
	rt2 := &g.arena.reg.targets[h2.index()]
	_ = rt2
	pb2 := b2.NewPass("Sample", Graphics)
	pb2.NewTextureDependency(h2, TexSampled, AllSurfaces())
	pb2.SetWork(func(WorkContext) {})
	if err := g.Compile(b2); err != nil {
		t.Fatalf("Compile (second frame): %v", err)
	}
	rt := &g.arena.reg.targets[h2.index()]
	if rt.priorUsage != TexFramebufWrite {
		t.Fatalf("recovered prior usage:\nhave %v\nwant %v", rt.priorUsage, TexFramebufWrite)
	}
	g.Reset()
}
