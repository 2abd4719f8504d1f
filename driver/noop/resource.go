package noop

import (
	"github.com/google/uuid"

	"github.com/gviegas/rendergraph/driver"
)

// res is embedded by every noop resource type to provide a
// trivial Destroy.
type res struct{}

func (res) Destroy() {}

// Memory is a noop driver.Memory.
type Memory struct {
	res
	size int64
}

func (m *Memory) Size() int64 { return m.size }

// Buffer is a noop driver.Buffer.
type Buffer struct {
	res
	cap     int64
	visible bool
	data    []byte
}

func (b *Buffer) Visible() bool { return b.visible }

func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Cap() int64 { return b.cap }

// Image is a noop driver.Image.
type Image struct {
	res
	id      uuid.UUID
	pf      driver.PixelFmt
	dim     driver.Dim3D
	layers  int
	levels  int
	samples int
	cube    bool
}

func (i *Image) UUID() uuid.UUID     { return i.id }
func (i *Image) PixelFmt() driver.PixelFmt { return i.pf }
func (i *Image) Dim() driver.Dim3D   { return i.dim }
func (i *Image) Layers() int         { return i.layers }
func (i *Image) Levels() int         { return i.levels }
func (i *Image) Samples() int        { return i.samples }
func (i *Image) Cube() bool          { return i.cube }

func (i *Image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	return &ImageView{img: i, typ: typ, layer: layer, layers: layers, level: level, levels: levels}, nil
}

// ImageView is a noop driver.ImageView.
type ImageView struct {
	res
	img    *Image
	typ    driver.ViewType
	layer  int
	layers int
	level  int
	levels int
}

// Sampler is a noop driver.Sampler.
type Sampler struct{ res }

// AccelerationStructure is a noop driver.AccelerationStructure.
type AccelerationStructure struct {
	res
	size int64
}

// ShaderCode is a noop driver.ShaderCode.
type ShaderCode struct{ res }

// DescHeap is a noop driver.DescHeap.
type DescHeap struct {
	res
	n int
}

func (h *DescHeap) New(n int) error {
	h.n = n
	return nil
}

func (h *DescHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64)  {}
func (h *DescHeap) SetImage(cpy, nr, start int, iv []driver.ImageView)                    {}
func (h *DescHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler)                  {}
func (h *DescHeap) Count() int { return h.n }

// DescTable is a noop driver.DescTable.
type DescTable struct{ res }

// Pipeline is a noop driver.Pipeline.
type Pipeline struct{ res }

// RenderPass is a noop driver.RenderPass.
type RenderPass struct {
	res
	att []driver.Attachment
	sub []driver.Subpass
}

func (p *RenderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	return &Framebuf{iv: iv, width: width, height: height, layers: layers}, nil
}

// Framebuf is a noop driver.Framebuf.
type Framebuf struct {
	res
	iv            []driver.ImageView
	width, height int
	layers        int
}

// TimestampQuery is a noop driver.TimestampQuery.
type TimestampQuery struct {
	res
	ns int64
	ok bool
}

func (q *TimestampQuery) Result() (int64, bool) { return q.ns, q.ok }
