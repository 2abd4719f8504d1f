// Package noop provides a driver.Driver implementation that performs no
// actual GPU work. It is useful for testing the render graph's compile,
// barrier-scheduling and recording logic without a native backend, and
// as a reference for what a minimal driver.GPU implementation looks like.
package noop

import (
	"github.com/gviegas/rendergraph/driver"
)

func init() {
	driver.Register(&Drv{})
}

// Drv is the noop driver.Driver.
type Drv struct {
	gpu *GPU
}

// Open implements driver.Driver.
func (d *Drv) Open() (driver.GPU, error) {
	if d.gpu == nil {
		d.gpu = &GPU{drv: d}
	}
	return d.gpu, nil
}

// Name implements driver.Driver.
func (d *Drv) Name() string { return "noop" }

// Close implements driver.Driver.
func (d *Drv) Close() { d.gpu = nil }
