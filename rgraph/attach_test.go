// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"testing"

	"github.com/gviegas/rendergraph/driver"
)

func TestResolveAttachmentsColorOnly(t *testing.T) {
	gpu := newTestGPU(t)
	reg := newRegistry()
	img := newTestImage(t, gpu, driver.RGBA8un, 320, 180)
	h := reg.importRenderTarget(img, TexFramebufWrite, false)
	rt := &reg.targets[h.index()]
	rt.history = append(rt.history, texAccess{pass: 0, usage: TexFramebufWrite, sub: AllSurfaces()})

	passes := []pass{{
		name: "Opaque",
		kind: Graphics,
		rp: &RenderpassInfo{
			Color: []ColorAttachment{{
				Target: h,
				Sub:    AllSurfaces(),
				Load:   driver.LClear,
				Store:  driver.SStore,
			}},
		},
	}}

	if err := resolveAttachments(gpu, passes, reg); err != nil {
		t.Fatalf("resolveAttachments: %v", err)
	}
	rrp := passes[0].resolvedRP
	if rrp == nil {
		t.Fatalf("resolvedRP was not filled in")
	}
	if rrp.rp == nil || rrp.fb == nil {
		t.Fatalf("resolvedRenderpass is missing its RenderPass/Framebuf")
	}
	if len(rrp.color) != 1 || rrp.color[0].target != h {
		t.Fatalf("resolved color attachments:\nhave %v\nwant one entry targeting %v", rrp.color, h)
	}
	if rrp.color[0].usage != TexFramebufWrite {
		t.Fatalf("resolved color usage:\nhave %v\nwant %v", rrp.color[0].usage, TexFramebufWrite)
	}
	if rrp.ds != nil {
		t.Fatalf("unexpected depth/stencil attachment on a color-only pass")
	}
}

func TestResolveAttachmentsDepthStencil(t *testing.T) {
	gpu := newTestGPU(t)
	reg := newRegistry()
	img := newTestImage(t, gpu, driver.D32f, 320, 180)
	h := reg.importRenderTarget(img, TexFramebufWrite, true)
	rt := &reg.targets[h.index()]
	rt.history = append(rt.history, texAccess{pass: 0, usage: TexFramebufWrite, sub: AllSurfaces()})

	passes := []pass{{
		name: "Depth",
		kind: Graphics,
		rp: &RenderpassInfo{
			DepthStencil: &DepthStencilAttachment{
				Target:     h,
				Sub:        AllSurfaces(),
				LoadDepth:  driver.LClear,
				StoreDepth: driver.SStore,
			},
		},
	}}

	if err := resolveAttachments(gpu, passes, reg); err != nil {
		t.Fatalf("resolveAttachments: %v", err)
	}
	rrp := passes[0].resolvedRP
	if rrp.ds == nil || rrp.ds.target != h {
		t.Fatalf("resolved depth/stencil attachment:\nhave %v\nwant target %v", rrp.ds, h)
	}
	if len(rrp.color) != 0 {
		t.Fatalf("unexpected color attachments on a depth-only pass")
	}
}

func TestResolveAttachmentsSkipsNonGraphicsPasses(t *testing.T) {
	passes := []pass{{name: "Compute", kind: Compute}}
	if err := resolveAttachments(nil, passes, newRegistry()); err != nil {
		t.Fatalf("resolveAttachments: %v", err)
	}
	if passes[0].resolvedRP != nil {
		t.Fatalf("a compute pass should never gain a resolvedRP")
	}
}

func TestInBatchUsageUnionsOverlappingHistory(t *testing.T) {
	rt := &renderTarget{
		history: []texAccess{
			{pass: 0, usage: TexFramebufWrite, sub: AllSurfaces()},
			{pass: 1, usage: TexSampled, sub: AllSurfaces()},
			{pass: 2, usage: TexUAVWrite, sub: AllSurfaces()},
		},
	}
	passes := []pass{{batch: 0}, {batch: 0}, {batch: 1}}

	u := inBatchUsage(rt, passes, 0, AllSurfaces())
	if u != TexFramebufWrite|TexSampled {
		t.Fatalf("in-batch usage:\nhave %v\nwant %v", u, TexFramebufWrite|TexSampled)
	}
	u = inBatchUsage(rt, passes, 1, AllSurfaces())
	if u != TexUAVWrite {
		t.Fatalf("in-batch usage:\nhave %v\nwant %v", u, TexUAVWrite)
	}
}

func TestFormatAndSamplesOfImported(t *testing.T) {
	gpu := newTestGPU(t)
	reg := newRegistry()
	img := newTestImage(t, gpu, driver.RGBA8un, 64, 64)
	h := reg.importRenderTarget(img, TexSampled, false)
	rt := &reg.targets[h.index()]

	if formatOf(rt) != driver.RGBA8un {
		t.Fatalf("formatOf imported target:\nhave %v\nwant %v", formatOf(rt), driver.RGBA8un)
	}
	if samplesOf(rt) != 1 {
		t.Fatalf("samplesOf imported target:\nhave %v\nwant 1", samplesOf(rt))
	}
}

func TestDimsOfTransient(t *testing.T) {
	reg := newRegistry()
	h := reg.newRenderTarget(RenderTargetDesc{
		Size:    driver.Dim3D{Width: 800, Height: 600, Depth: 1},
		Layers:  2,
		Levels:  1,
		Samples: 1,
	}, false)
	rt := &reg.targets[h.index()]
	w, hh, layers := dimsOf(rt)
	if w != 800 || hh != 600 || layers != 2 {
		t.Fatalf("dimsOf transient target:\nhave w=%d h=%d layers=%d\nwant w=800 h=600 layers=2", w, hh, layers)
	}
}
