// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"testing"

	"github.com/gviegas/rendergraph/driver"
	"github.com/gviegas/rendergraph/driver/noop"
)

// newTestGPU returns a fresh noop.GPU, isolated from other tests'
// driver state (each Drv owns its own *GPU instance).
func newTestGPU(t *testing.T) driver.GPU {
	t.Helper()
	d := &noop.Drv{}
	gpu, err := d.Open()
	if err != nil {
		t.Fatalf("noop driver Open: %v", err)
	}
	return gpu
}

// newTestImage creates a 2D color image of the given size through gpu,
// the same path every non-test caller uses to obtain a driver.Image.
func newTestImage(t *testing.T, gpu driver.GPU, pf driver.PixelFmt, w, h int) driver.Image {
	t.Helper()
	img, err := gpu.NewImage(pf, driver.Dim3D{Width: w, Height: h, Depth: 1}, 1, 1, 1, driver.UGeneric, nil, 0)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	return img
}
