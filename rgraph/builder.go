// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import "github.com/gviegas/rendergraph/driver"

// Builder accumulates a single frame's resource registrations and
// pass declarations. It is obtained from Graph.NewBuilder and
// consumed by Graph.Compile, per spec.md §3/§6.
type Builder struct {
	reg         *registry
	passes      []pass
	gatherStats bool
}

func newBuilder() *Builder {
	return &Builder{reg: newRegistry()}
}

// ImportRenderTarget registers an externally-owned texture, currently
// in usage current, as a render target for this frame.
func (b *Builder) ImportRenderTarget(tex driver.Image, current TexUsage) RenderTargetHandle {
	return b.reg.importRenderTarget(tex, current, isDepthStencil(tex.PixelFmt()))
}

// ImportRenderTargetUndefined registers an externally-owned texture
// whose prior usage this frame does not know; Compile recovers it
// from the cross-frame usage table, falling back to TexUsage(0) if
// the texture was never seen before, per spec.md §4.10.
func (b *Builder) ImportRenderTargetUndefined(tex driver.Image) RenderTargetHandle {
	return b.reg.importRenderTargetUndefined(tex, isDepthStencil(tex.PixelFmt()))
}

// NewRenderTarget registers a transient texture to be materialized by
// the Transient Resource Pool during Compile. It panics with a
// *ContractError if desc collides with another transient registered
// this frame.
func (b *Builder) NewRenderTarget(desc RenderTargetDesc) RenderTargetHandle {
	return b.reg.newRenderTarget(desc, isDepthStencil(desc.PixelFmt))
}

// ImportBuffer registers a byte range of an externally-owned buffer.
// It panics with a *ContractError if the range overlaps one already
// registered this frame.
func (b *Builder) ImportBuffer(buf driver.Buffer, off, size int64, current BufUsage) BufferHandle {
	return b.reg.importBuffer(buf, off, size, current)
}

// ImportAccelerationStructure registers an externally-owned
// acceleration structure.
func (b *Builder) ImportAccelerationStructure(as driver.AccelerationStructure) AccelerationStructureHandle {
	return b.reg.importAccelerationStructure(as)
}

// NewPass declares a new pass of the given kind and returns a
// PassBuilder used to configure it.
func (b *Builder) NewPass(name string, kind PassKind) PassBuilder {
	idx := len(b.passes)
	b.passes = append(b.passes, pass{name: name, kind: kind, batch: -1})
	return PassBuilder{b: b, idx: idx}
}

// GatherStatistics requests that RecordAndSubmit write the timestamp
// queries from which Graph.GetStatistics derives this frame's GPU
// time. Left disabled by default since the extra
// bookkeeping is not free, per spec.md §6.
func (b *Builder) GatherStatistics(v bool) {
	b.gatherStats = v
}

// isDepthStencil reports whether pf carries a depth and/or stencil
// aspect, used to auto-fill SubResource.Aspect on dependency
// declarations (spec.md §4.2).
func isDepthStencil(pf driver.PixelFmt) bool {
	switch pf {
	case driver.D16un, driver.D32f, driver.D24unS8ui, driver.D32fS8ui, driver.S8ui:
		return true
	default:
		return false
	}
}
