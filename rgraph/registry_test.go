// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"testing"

	"github.com/gviegas/rendergraph/driver"
)

func mustPanicContract(t *testing.T, f func()) {
	defer func() {
		p := recover()
		if p == nil {
			t.Fatalf("expected a panic, got none")
		}
		if _, ok := p.(*ContractError); !ok {
			t.Fatalf("panic value:\nhave %T (%v)\nwant *ContractError", p, p)
		}
	}()
	f()
}

func TestImportBufferOverlap(t *testing.T) {
	r := newRegistry()
	r.importBuffer(nil, 0, 64, BufShaderRead)
	mustPanicContract(t, func() {
		r.importBuffer(nil, 32, 64, BufShaderWrite)
	})
}

func TestImportBufferNoOverlap(t *testing.T) {
	r := newRegistry()
	r.importBuffer(nil, 0, 64, BufShaderRead)
	h := r.importBuffer(nil, 64, 64, BufShaderWrite)
	if !h.Valid() {
		t.Fatalf("non-overlapping import was rejected")
	}
}

func TestNewRenderTargetHashCollision(t *testing.T) {
	r := newRegistry()
	desc := RenderTargetDesc{PixelFmt: driver.RGBA8un, Size: driver.Dim3D{Width: 64, Height: 64, Depth: 1}, Layers: 1, Levels: 1, Samples: 1}
	r.newRenderTarget(desc, false)
	mustPanicContract(t, func() {
		r.newRenderTarget(desc, false)
	})
}

func TestNewRenderTargetDistinctDescs(t *testing.T) {
	r := newRegistry()
	d1 := RenderTargetDesc{PixelFmt: driver.RGBA8un, Size: driver.Dim3D{Width: 64, Height: 64, Depth: 1}, Layers: 1, Levels: 1, Samples: 1}
	d2 := d1
	d2.Size.Width = 128
	h1 := r.newRenderTarget(d1, false)
	h2 := r.newRenderTarget(d2, false)
	if h1.index() == h2.index() {
		t.Fatalf("distinct descriptors aliased to the same index")
	}
}

func TestImportRenderTargetPriorUsage(t *testing.T) {
	r := newRegistry()
	gpu := newTestGPU(t)
	img := newTestImage(t, gpu, driver.RGBA8un, 64, 64)
	h := r.importRenderTarget(img, TexSampled, false)
	rt := &r.targets[h.index()]
	if rt.priorUsage != TexSampled {
		t.Fatalf("priorUsage:\nhave %v\nwant %v", rt.priorUsage, TexSampled)
	}
	if rt.derivedUsage != 0 {
		t.Fatalf("derivedUsage:\nhave %v\nwant 0 (not yet derived from any pass)", rt.derivedUsage)
	}
}
