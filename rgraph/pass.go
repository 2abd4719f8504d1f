// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import "github.com/gviegas/rendergraph/driver"

// PassKind distinguishes graphics passes (which carry a renderpass
// descriptor and execute inside a BeginPass/EndPass bracket) from
// non-graphics passes (compute/copy work, recorded directly).
type PassKind int

// Pass kinds.
const (
	Graphics PassKind = iota
	Compute
)

// ColorAttachment describes one color render target of a graphics
// pass's renderpass.
type ColorAttachment struct {
	Target RenderTargetHandle
	Sub    SubResource
	Load   driver.LoadOp
	Store  driver.StoreOp
	Clear  driver.ClearValue
}

// DepthStencilAttachment describes the depth/stencil render target
// of a graphics pass's renderpass.
type DepthStencilAttachment struct {
	Target       RenderTargetHandle
	Sub          SubResource
	LoadDepth    driver.LoadOp
	StoreDepth   driver.StoreOp
	LoadStencil  driver.LoadOp
	StoreStencil driver.StoreOp
	Clear        driver.ClearValue
}

// VRSAttachment describes the variable-rate shading image of a
// graphics pass's renderpass.
type VRSAttachment struct {
	Target   RenderTargetHandle
	TileW    int
	TileH    int
}

// RenderpassInfo is a graphics pass's attachment configuration.
// Load/store operations and clear values are preserved verbatim for
// the recorder, per spec.md §4.2.
type RenderpassInfo struct {
	Color        []ColorAttachment
	DepthStencil *DepthStencilAttachment
	VRS          *VRSAttachment
}

// WorkContext is passed to a pass's work closure at record time
// (spec.md §4.9).
type WorkContext struct {
	CmdBuffer driver.CmdBuffer
	Batch     int
	Pass      int
	Graph     *Graph
}

type texDep struct {
	target RenderTargetHandle
	usage  TexUsage
	sub    SubResource
}

type bufDep struct {
	target BufferHandle
	usage  BufUsage
}

type asDep struct {
	target AccelerationStructureHandle
	usage  ASUsage
}

// pass is a Pass entry in the per-frame compile context (spec.md §3).
type pass struct {
	name           string
	kind           PassKind
	work           func(WorkContext)
	rp             *RenderpassInfo
	swapchainWrite bool

	texDeps []texDep
	bufDeps []bufDep
	asDeps  []asDep

	// Filled by the Dependency Analyser/Batcher.
	pred  []uint64 // predecessor bitset words (see newPredRows)
	batch int

	// resolvedRP is filled by resolveAttachments for graphics passes.
	resolvedRP *resolvedRenderpass
}

// PassBuilder is the handle returned by Builder.NewPass, used to
// declare a pass's dependencies, renderpass info and work closure.
type PassBuilder struct {
	b   *Builder
	idx int
}

func (pb PassBuilder) p() *pass { return &pb.b.passes[pb.idx] }

// NewTextureDependency declares that this pass uses the texture
// named by h with the given usage at the given sub-resource.
// If sub's Aspect is zero and h names a depth/stencil resource, the
// aspect is auto-filled to cover both depth and stencil, per
// spec.md §4.2.
func (pb PassBuilder) NewTextureDependency(h RenderTargetHandle, usage TexUsage, sub SubResource) {
	rt := &pb.b.reg.targets[h.index()]
	if sub.Aspect == 0 && rt.depthStencil {
		sub.Aspect = AspectDepth | AspectStencil
	}
	rt.derivedUsage |= usage
	rt.history = append(rt.history, texAccess{pass: pb.idx, usage: usage, sub: sub})
	pb.p().texDeps = append(pb.p().texDeps, texDep{h, usage, sub})
}

// NewBufferDependency declares that this pass uses the buffer range
// named by h with the given usage.
func (pb PassBuilder) NewBufferDependency(h BufferHandle, usage BufUsage) {
	br := &pb.b.reg.buffers[h.index()]
	br.history = append(br.history, bufAccess{pass: pb.idx, usage: usage})
	pb.p().bufDeps = append(pb.p().bufDeps, bufDep{h, usage})
}

// NewAccelerationStructureDependency declares that this pass uses
// the acceleration structure named by h with the given usage.
func (pb PassBuilder) NewAccelerationStructureDependency(h AccelerationStructureHandle, usage ASUsage) {
	as := &pb.b.reg.accels[h.index()]
	as.history = append(as.history, asAccess{pass: pb.idx, usage: usage})
	pb.p().asDeps = append(pb.p().asDeps, asDep{h, usage})
}

// SetRenderpassInfo sets the graphics renderpass descriptor for this
// pass. It panics with a *ContractError if the pass was not created
// with kind Graphics.
func (pb PassBuilder) SetRenderpassInfo(info RenderpassInfo) {
	if pb.p().kind != Graphics {
		panicContract("SetRenderpassInfo called on non-graphics pass %q", pb.p().name)
	}
	pb.p().rp = &info
}

// SetWork sets the closure invoked to record this pass's commands.
func (pb PassBuilder) SetWork(work func(WorkContext)) {
	pb.p().work = work
}

// SetSwapchainWrite marks this pass as writing to the presentation
// swapchain, which the recorder uses to decide where to split
// submissions around the acquire/present semaphores (spec.md §4.9).
func (pb PassBuilder) SetSwapchainWrite(v bool) {
	pb.p().swapchainWrite = v
}

// Name returns the pass's name.
func (pb PassBuilder) Name() string { return pb.p().name }
