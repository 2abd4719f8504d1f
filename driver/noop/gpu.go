package noop

import (
	"github.com/google/uuid"

	"github.com/gviegas/rendergraph/driver"
)

// GPU is a noop driver.GPU. Every command buffer it produces records
// the calls made on it but performs no actual work; GPU.Commit marks
// command buffers idle again and signals completion immediately.
type GPU struct {
	drv *Drv
}

func (g *GPU) Driver() driver.Driver { return g.drv }

// Commit executes cb's recorded markers/draws/dispatches (there is
// nothing to execute) and reports success on ch.
func (g *GPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	for _, c := range cb {
		if nc, ok := c.(*CmdBuffer); ok {
			nc.ended = false
		}
	}
	if ch != nil {
		ch <- nil
	}
}

func (g *GPU) NewCmdBuffer(general bool) (driver.CmdBuffer, error) {
	return &CmdBuffer{general: general}, nil
}

func (g *GPU) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	return &RenderPass{att: att, sub: sub}, nil
}

func (g *GPU) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	return &ShaderCode{}, nil
}

func (g *GPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	return &DescHeap{}, nil
}

func (g *GPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	return &DescTable{}, nil
}

func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) {
	return &Pipeline{}, nil
}

func (g *GPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	b := &Buffer{cap: size, visible: visible}
	if visible {
		b.data = make([]byte, size)
	}
	return b, nil
}

func (g *GPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage, mem driver.Memory, off int64) (driver.Image, error) {
	return &Image{
		id:      uuid.New(),
		pf:      pf,
		dim:     size,
		layers:  layers,
		levels:  levels,
		samples: samples,
		cube:    layers > 0 && layers%6 == 0,
	}, nil
}

func (g *GPU) ImageMemoryRequirement(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.MemoryRequirement, error) {
	n := int64(size.Width) * int64(size.Height) * int64(max(size.Depth, 1)) * int64(max(layers, 1)) * int64(max(levels, 1)) * int64(max(samples, 1)) * 4
	return driver.MemoryRequirement{Size: n, Align: 256}, nil
}

func (g *GPU) NewMemory(size int64) (driver.Memory, error) {
	return &Memory{size: size}, nil
}

func (g *GPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) {
	return &Sampler{}, nil
}

func (g *GPU) NewAccelerationStructure(size int64) (driver.AccelerationStructure, error) {
	return &AccelerationStructure{size: size}, nil
}

func (g *GPU) NewFence() (driver.Fence, error) {
	return &Fence{}, nil
}

func (g *GPU) NewTimestampQuery() (driver.TimestampQuery, error) {
	return &TimestampQuery{}, nil
}

func (g *GPU) Limits() driver.Limits {
	return driver.Limits{
		MaxImage1D:        16384,
		MaxImage2D:        16384,
		MaxImageCube:      16384,
		MaxImage3D:        2048,
		MaxLayers:         2048,
		MaxDescHeaps:      8,
		MaxDBuffer:        64,
		MaxDImage:         64,
		MaxDConstant:      16,
		MaxDTexture:       128,
		MaxDSampler:       32,
		MaxDBufferRange:   1 << 28,
		MaxDConstantRange: 1 << 16,
		MaxColorTargets:   8,
		MaxFBSize:         [2]int{16384, 16384},
		MaxFBLayers:       2048,
		MaxPointSize:      256,
		MaxViewports:      16,
		MaxVertexIn:       32,
		MaxFragmentIn:     32,
		MaxDispatch:       [3]int{65535, 65535, 65535},
	}
}
