// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

// Handles are 1-based indices into the frame's registry arrays (0
// is reserved to make the zero value of each handle type invalid),
// offset by -1 when used to index a slice.

// RenderTargetHandle identifies a texture registered with a Builder.
// It is an opaque index into the frame's registry and is valid only
// for the frame in which it was created.
type RenderTargetHandle struct{ n int }

// Valid reports whether h was returned by a registration call, as
// opposed to being the zero value.
func (h RenderTargetHandle) Valid() bool { return h.n != 0 }

func (h RenderTargetHandle) index() int { return h.n - 1 }

func renderTargetHandle(idx int) RenderTargetHandle { return RenderTargetHandle{idx + 1} }

// BufferHandle identifies a buffer range registered with a Builder.
type BufferHandle struct{ n int }

func (h BufferHandle) Valid() bool { return h.n != 0 }
func (h BufferHandle) index() int  { return h.n - 1 }
func bufferHandle(idx int) BufferHandle { return BufferHandle{idx + 1} }

// AccelerationStructureHandle identifies an acceleration structure
// registered with a Builder.
type AccelerationStructureHandle struct{ n int }

func (h AccelerationStructureHandle) Valid() bool { return h.n != 0 }
func (h AccelerationStructureHandle) index() int  { return h.n - 1 }
func asHandle(idx int) AccelerationStructureHandle {
	return AccelerationStructureHandle{idx + 1}
}
