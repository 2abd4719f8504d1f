package noop

import (
	"github.com/gviegas/rendergraph/driver"
	"github.com/gviegas/rendergraph/wsi"
)

// NewSwapchain implements driver.Presenter.
func (g *GPU) NewSwapchain(win wsi.Window, imageCount int) (driver.Swapchain, error) {
	if imageCount < 1 {
		imageCount = 1
	}
	sc := &Swapchain{win: win, views: make([]driver.ImageView, imageCount)}
	for i := range sc.views {
		img := &Image{dim: driver.Dim3D{Width: win.Width(), Height: win.Height(), Depth: 1}, layers: 1, levels: 1, samples: 1}
		v, _ := img.NewView(driver.IView2D, 0, 1, 0, 1)
		sc.views[i] = v
	}
	return sc, nil
}

// Swapchain is a noop driver.Swapchain.
type Swapchain struct {
	res

	win   wsi.Window
	views []driver.ImageView
	next  int

	// Acquired and Presented record the call sequence for test
	// introspection: which command buffer acquired/presented
	// which image index.
	Acquired []AcquirePresent
	Presented []AcquirePresent
}

// AcquirePresent records a single Next or Present call.
type AcquirePresent struct {
	Index int
	CB    driver.CmdBuffer
}

func (s *Swapchain) Views() []driver.ImageView { return s.views }

func (s *Swapchain) Next(cb driver.CmdBuffer) (int, error) {
	idx := s.next
	s.next = (s.next + 1) % len(s.views)
	s.Acquired = append(s.Acquired, AcquirePresent{idx, cb})
	return idx, nil
}

func (s *Swapchain) Present(index int, cb driver.CmdBuffer) error {
	s.Presented = append(s.Presented, AcquirePresent{index, cb})
	return nil
}

func (s *Swapchain) Recreate() error { return nil }

func (s *Swapchain) Format() driver.PixelFmt { return driver.RGBA8un }
