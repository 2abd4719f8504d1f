// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/gviegas/rendergraph/driver"
)

// Size classes for the segregated-list allocator backing the
// Transient Resource Pool, per spec.md §4.8.
var poolSizeClasses = [...]int64{
	256 << 10,
	1 << 20,
	4 << 20,
	8 << 20,
	16 << 20,
	32 << 20,
	128 << 20,
	256 << 20,
}

// sizeClassFor returns the smallest size class that can hold n bytes,
// or the largest class if n exceeds every class (acquire then
// allocates n bytes exactly instead of the class size).
func sizeClassFor(n int64) int64 {
	for _, c := range poolSizeClasses {
		if n <= c {
			return c
		}
	}
	return poolSizeClasses[len(poolSizeClasses)-1]
}

// poolSlot holds every texture ever allocated for one (descriptor,
// usage) hash, recycled round-robin across frames via a cursor that
// rewinds to zero on reset, mirroring engine/storage.go's span
// allocator "search, grow on miss, rewind on reset" shape.
type poolSlot struct {
	textures []driver.Image
	mems     []driver.Memory
	cursor   int
	// highWater is the largest cursor value reached since the last
	// cleanup; periodic cleanup shrinks live textures down to it.
	highWater int
}

// pool is the Transient Resource Pool (spec.md §4.8): a segregated
// list of poolSlots keyed by a descriptor's content hash combined
// with its derived usage mask, so that identical descriptors
// requested under different usages never alias.
type pool struct {
	gpu   driver.GPU
	slots map[uint64]*poolSlot

	resets             int
	cleanupEveryResets int
}

// defaultCleanupEveryResets is how many Graph.Reset calls elapse
// between pool cleanup passes (spec.md §9).
const defaultCleanupEveryResets = 60

func newPool(gpu driver.GPU) *pool {
	return &pool{
		gpu:                gpu,
		slots:              make(map[uint64]*poolSlot),
		cleanupEveryResets: defaultCleanupEveryResets,
	}
}

// poolHash combines a RenderTargetDesc's content hash with its
// derived usage mask, per spec.md §4.8.
func poolHash(descHash uint64, usage TexUsage) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(usage))
	return descHash ^ xxhash.Sum64(b[:])
}

// acquire returns a texture satisfying desc/usage, reusing one from
// the slot's cursor if available or allocating a new one otherwise.
func (p *pool) acquire(desc RenderTargetDesc, usage TexUsage, usageFlags driver.Usage) (driver.Image, error) {
	h := poolHash(desc.hash(), usage)
	slot, ok := p.slots[h]
	if !ok {
		slot = &poolSlot{}
		p.slots[h] = slot
	}
	if slot.cursor < len(slot.textures) {
		tex := slot.textures[slot.cursor]
		slot.cursor++
		if slot.cursor > slot.highWater {
			slot.highWater = slot.cursor
		}
		return tex, nil
	}

	req, err := p.gpu.ImageMemoryRequirement(desc.PixelFmt, desc.Size, desc.Layers, desc.Levels, desc.Samples, usageFlags)
	if err != nil {
		return nil, deviceErr("ImageMemoryRequirement", err)
	}
	size := sizeClassFor(req.Size)
	if size < req.Size {
		size = req.Size
	}
	mem, err := p.gpu.NewMemory(size)
	if err != nil {
		return nil, deviceErr("NewMemory", err)
	}
	tex, err := p.gpu.NewImage(desc.PixelFmt, desc.Size, desc.Layers, desc.Levels, desc.Samples, usageFlags, mem, 0)
	if err != nil {
		mem.Destroy()
		return nil, deviceErr("NewImage", err)
	}

	slot.textures = append(slot.textures, tex)
	slot.mems = append(slot.mems, mem)
	slot.cursor = len(slot.textures)
	slot.highWater = slot.cursor
	return tex, nil
}

// memoryStats returns the memory currently checked out to the frame
// (used) and the total memory backing every allocation the pool has
// ever made (capacity), for Graph.GetStatistics.
func (p *pool) memoryStats() (used, capacity int64) {
	for _, s := range p.slots {
		for i, m := range s.mems {
			capacity += m.Size()
			if i < s.cursor {
				used += m.Size()
			}
		}
	}
	return
}

// reset rewinds every slot's cursor, making every allocation eligible
// for reuse next frame, per spec.md §4.10. It is told the fence that
// guards the frame just submitted so cleanup (if due) can be deferred
// correctly; the noop backend has no asynchronous GPU timeline, so
// fence is only retained for callers that pass a real driver.Fence.
func (p *pool) reset(fence driver.Fence) {
	for _, s := range p.slots {
		s.cursor = 0
	}
	p.resets++
	if p.cleanupEveryResets > 0 && p.resets%p.cleanupEveryResets == 0 {
		p.cleanup(fence)
	}
}

// cleanup shrinks every slot down to its high-water mark, freeing
// allocations that were not reused during the elapsed period, per
// spec.md §4.8/§4.9's deferred-free rationale: with a real backend
// this would wait on fence before destroying; the noop backend's
// Fence.Wait is immediate, so destruction here is synchronous.
func (p *pool) cleanup(fence driver.Fence) {
	if fence != nil {
		fence.Wait()
	}
	for _, s := range p.slots {
		if s.highWater >= len(s.textures) {
			s.highWater = 0
			continue
		}
		for i := s.highWater; i < len(s.textures); i++ {
			s.textures[i].Destroy()
			s.mems[i].Destroy()
		}
		s.textures = s.textures[:s.highWater]
		s.mems = s.mems[:s.highWater]
		s.highWater = 0
	}
}
