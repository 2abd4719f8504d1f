// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import "github.com/gviegas/rendergraph/driver"

// resolvedAttachment is a graphics pass's attachment after the
// registry handle has been resolved to a concrete texture and its
// in-batch usage has been derived, per spec.md §4.5.
type resolvedAttachment struct {
	target RenderTargetHandle
	view   driver.ImageView
	usage  TexUsage
}

// resolvedRenderpass is the materialized form of a graphics pass's
// RenderpassInfo: an actual driver.RenderPass/Framebuf pair plus the
// clear values the recorder passes to BeginPass.
type resolvedRenderpass struct {
	rp    driver.RenderPass
	fb    driver.Framebuf
	clear []driver.ClearValue

	color []resolvedAttachment
	ds    *resolvedAttachment
}

// resolveAttachments runs the Graphics-Pass Attachment Resolution step
// (spec.md §4.5) over every graphics pass, filling in rp.resolvedRP.
// It must run after batchPasses (it needs each pass's batch index)
// and after the Transient Resource Pool has materialized every
// transient render target's resolved image.
func resolveAttachments(gpu driver.GPU, passes []pass, reg *registry) error {
	for i := range passes {
		p := &passes[i]
		if p.kind != Graphics || p.rp == nil {
			continue
		}
		rrp, err := resolvePass(gpu, p, passes, reg)
		if err != nil {
			return err
		}
		p.resolvedRP = rrp
	}
	return nil
}

func resolvePass(gpu driver.GPU, p *pass, passes []pass, reg *registry) (*resolvedRenderpass, error) {
	var (
		atts  []driver.Attachment
		clear []driver.ClearValue
		color []resolvedAttachment
		views []driver.ImageView
		ds    *resolvedAttachment
		dsIdx = -1
	)

	for _, ca := range p.rp.Color {
		rt := &reg.targets[ca.Target.index()]
		usage := inBatchUsage(rt, passes, p.batch, ca.Sub)
		view, err := viewFor(rt, ca.Sub)
		if err != nil {
			return nil, err
		}
		atts = append(atts, driver.Attachment{
			Format:  formatOf(rt),
			Samples: samplesOf(rt),
			Load:    [2]driver.LoadOp{ca.Load},
			Store:   [2]driver.StoreOp{ca.Store},
		})
		clear = append(clear, ca.Clear)
		color = append(color, resolvedAttachment{target: ca.Target, view: view, usage: usage})
		views = append(views, view)
	}

	if p.rp.DepthStencil != nil {
		da := p.rp.DepthStencil
		rt := &reg.targets[da.Target.index()]
		usage := inBatchUsage(rt, passes, p.batch, da.Sub)
		view, err := viewFor(rt, da.Sub)
		if err != nil {
			return nil, err
		}
		dsIdx = len(atts)
		atts = append(atts, driver.Attachment{
			Format:  formatOf(rt),
			Samples: samplesOf(rt),
			Load:    [2]driver.LoadOp{da.LoadDepth, da.LoadStencil},
			Store:   [2]driver.StoreOp{da.StoreDepth, da.StoreStencil},
		})
		clear = append(clear, da.Clear)
		ds = &resolvedAttachment{target: da.Target, view: view, usage: usage}
		views = append(views, view)
	}

	colorIdx := make([]int, len(color))
	for i := range colorIdx {
		colorIdx[i] = i
	}
	rp, err := gpu.NewRenderPass(atts, []driver.Subpass{{Color: colorIdx, DS: dsIdx}})
	if err != nil {
		return nil, deviceErr("NewRenderPass", err)
	}

	w, h, layers := fbDims(p, reg)
	fb, err := rp.NewFB(views, w, h, layers)
	if err != nil {
		rp.Destroy()
		return nil, deviceErr("NewFB", err)
	}

	return &resolvedRenderpass{rp: rp, fb: fb, clear: clear, color: color, ds: ds}, nil
}

// inBatchUsage OR-s the usage of every history entry whose owning
// pass falls in batch and whose sub-resource overlaps sub, per
// spec.md §4.5.
func inBatchUsage(rt *renderTarget, passes []pass, batch int, sub SubResource) TexUsage {
	var u TexUsage
	for _, a := range rt.history {
		if passes[a.pass].batch != batch {
			continue
		}
		if !a.sub.overlaps(sub) {
			continue
		}
		u |= a.usage
	}
	return u
}

func viewFor(rt *renderTarget, sub SubResource) (driver.ImageView, error) {
	tex := rt.resolved
	if tex == nil {
		panicContract("render target has no resolved texture at attachment-resolution time")
	}
	typ := driver.IView2D
	layer, layers, level, levels := 0, tex.Layers(), 0, tex.Levels()
	if !sub.All {
		layer, layers, level, levels = sub.Layer, 1, sub.Mip, 1
	}
	return tex.NewView(typ, layer, layers, level, levels)
}

func formatOf(rt *renderTarget) driver.PixelFmt {
	if rt.imported {
		return rt.tex.PixelFmt()
	}
	return rt.desc.PixelFmt
}

func samplesOf(rt *renderTarget) int {
	if rt.imported {
		return rt.tex.Samples()
	}
	return rt.desc.Samples
}

// fbDims derives the framebuffer dimensions from the pass's color (or
// depth/stencil, if there are no color attachments) target.
func fbDims(p *pass, reg *registry) (w, h, layers int) {
	if len(p.rp.Color) > 0 {
		rt := &reg.targets[p.rp.Color[0].Target.index()]
		return dimsOf(rt)
	}
	if p.rp.DepthStencil != nil {
		rt := &reg.targets[p.rp.DepthStencil.Target.index()]
		return dimsOf(rt)
	}
	return 0, 0, 0
}

func dimsOf(rt *renderTarget) (w, h, layers int) {
	if rt.imported {
		d := rt.tex.Dim()
		return d.Width, d.Height, rt.tex.Layers()
	}
	return rt.desc.Size.Width, rt.desc.Size.Height, rt.desc.Layers
}
