// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/gviegas/rendergraph/driver"
)

// RenderTargetDesc describes a transient texture to be materialized
// by the Transient Resource Pool. Its content hash (combined with the
// derived usage mask once known) keys pool recycling.
type RenderTargetDesc struct {
	PixelFmt driver.PixelFmt
	Size     driver.Dim3D
	Layers   int
	Levels   int
	Samples  int
	Cube     bool
}

func (d *RenderTargetDesc) faces() int {
	if d.Cube {
		return 6
	}
	return 1
}

// hash returns the content hash of the descriptor alone (usage is
// folded in separately once the derived usage mask is known; see
// pool.go's poolHash).
func (d RenderTargetDesc) hash() uint64 {
	var b [33]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(int64(d.PixelFmt)))
	binary.LittleEndian.PutUint32(b[8:12], uint32(d.Size.Width))
	binary.LittleEndian.PutUint32(b[12:16], uint32(d.Size.Height))
	binary.LittleEndian.PutUint32(b[16:20], uint32(d.Size.Depth))
	binary.LittleEndian.PutUint32(b[20:24], uint32(d.Layers))
	binary.LittleEndian.PutUint32(b[24:28], uint32(d.Levels))
	binary.LittleEndian.PutUint32(b[28:32], uint32(d.Samples))
	if d.Cube {
		b[32] = 1
	}
	return xxhash.Sum64(b[:])
}

// texAccess is one record of resourceHistory for a texture.
type texAccess struct {
	pass  int
	usage TexUsage
	sub   SubResource
}

// renderTarget is an entry in the Resource Registry (spec.md §3).
type renderTarget struct {
	imported bool

	// Imported fields.
	tex             driver.Image
	importUndefined bool

	// Transient fields.
	desc RenderTargetDesc
	hash uint64

	// Resolved texture, valid once the pool has materialized a
	// transient or always valid for imported entries.
	resolved driver.Image

	depthStencil bool // aspect auto-fill applies to this resource

	// priorUsage is the usage this surface carried into the frame:
	// the caller-given current usage for imports, or left at zero
	// (meaning undefined) for transients and not-yet-resolved
	// importUndefined targets until Graph.Compile consults the
	// cross-frame usage table (spec.md §4.10).
	priorUsage TexUsage

	// derivedUsage is the union of every usage this frame's passes
	// declared against the resource; it is what the Transient
	// Resource Pool uses to pick/create an image supporting every
	// requested usage (spec.md §4.8).
	derivedUsage TexUsage
	history      []texAccess

	// surfaces caches mips*layers*faces once known (imports know it
	// immediately; transients know it from the descriptor).
	mips, layers, faces int
}

func (rt *renderTarget) surfaceCount() int { return rt.mips * rt.layers * rt.faces }

// bufAccess is one record of resourceHistory for a buffer range.
type bufAccess struct {
	pass  int
	usage BufUsage
}

// bufferRange is an entry in the Resource Registry.
type bufferRange struct {
	buf     driver.Buffer
	offset  int64
	size    int64
	usage   BufUsage // usage given at import; dependency declarations do not change it
	history []bufAccess
}

func (b *bufferRange) overlaps(off, size int64) bool {
	return off < b.offset+b.size && b.offset < off+size
}

// asAccess is one record of resourceHistory for an acceleration
// structure.
type asAccess struct {
	pass  int
	usage ASUsage
}

// accelStruct is an entry in the Resource Registry.
type accelStruct struct {
	as      driver.AccelerationStructure
	history []asAccess
}

// Registry interns the resources a frame's passes depend on and
// accumulates their dependency histories (spec.md §3, §4.1).
// It is the Builder's resource-registration half.
type registry struct {
	targets []renderTarget
	buffers []bufferRange
	accels  []accelStruct

	// transientHashes detects same-frame hash collisions (spec.md §4.1).
	transientHashes map[uint64]int
}

func newRegistry() *registry {
	return &registry{transientHashes: make(map[uint64]int)}
}

// importRenderTarget registers tex as currently in usage `current`.
func (r *registry) importRenderTarget(tex driver.Image, current TexUsage, depthStencil bool) RenderTargetHandle {
	idx := len(r.targets)
	r.targets = append(r.targets, renderTarget{
		imported:     true,
		tex:          tex,
		resolved:     tex,
		depthStencil: depthStencil,
		priorUsage:   current,
		mips:         tex.Levels(),
		layers:       tex.Layers(),
		faces:        cubeFaces(tex),
	})
	return renderTargetHandle(idx)
}

// importRenderTargetUndefined registers tex with unknown prior usage;
// the graph recovers it from the cross-frame table at Compile time.
func (r *registry) importRenderTargetUndefined(tex driver.Image, depthStencil bool) RenderTargetHandle {
	idx := len(r.targets)
	r.targets = append(r.targets, renderTarget{
		imported:        true,
		tex:             tex,
		resolved:        tex,
		importUndefined: true,
		depthStencil:    depthStencil,
		mips:            tex.Levels(),
		layers:          tex.Layers(),
		faces:           cubeFaces(tex),
	})
	return renderTargetHandle(idx)
}

func cubeFaces(tex driver.Image) int {
	if tex.Cube() {
		return 6
	}
	return 1
}

// newRenderTarget registers a transient texture. It panics with a
// *ContractError if desc's hash collides with one already registered
// this frame, per spec.md §4.1/§4.11.
func (r *registry) newRenderTarget(desc RenderTargetDesc, depthStencil bool) RenderTargetHandle {
	h := desc.hash()
	if prev, ok := r.transientHashes[h]; ok {
		panicContract("transient hash collision with resource %d", prev)
	}
	idx := len(r.targets)
	r.transientHashes[h] = idx
	r.targets = append(r.targets, renderTarget{
		desc:         desc,
		hash:         h,
		depthStencil: depthStencil,
		mips:         desc.Levels,
		layers:       desc.Layers,
		faces:        desc.faces(),
	})
	return renderTargetHandle(idx)
}

// importBuffer registers a buffer range. It panics with a
// *ContractError if the range overlaps one already registered this
// frame, per spec.md §4.1/§4.11.
func (r *registry) importBuffer(buf driver.Buffer, off, size int64, usage BufUsage) BufferHandle {
	for i := range r.buffers {
		if r.buffers[i].overlaps(off, size) {
			panicContract("buffer range overlaps resource %d", i)
		}
	}
	idx := len(r.buffers)
	r.buffers = append(r.buffers, bufferRange{buf: buf, offset: off, size: size, usage: usage})
	return bufferHandle(idx)
}

// importAccelerationStructure registers an acceleration structure.
func (r *registry) importAccelerationStructure(as driver.AccelerationStructure) AccelerationStructureHandle {
	idx := len(r.accels)
	r.accels = append(r.accels, accelStruct{as: as})
	return asHandle(idx)
}
