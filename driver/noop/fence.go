package noop

import "sync/atomic"

// Fence is a noop driver.Fence. Wait returns immediately, since the
// noop backend executes submissions inline. GPU.Commit does not signal
// it, so Signaled reports false unless the package calls signal.
type Fence struct {
	res
	signaled atomic.Bool
}

func (f *Fence) Wait() error { return nil }

func (f *Fence) Signaled() bool { return f.signaled.Load() }

func (f *Fence) signal() { f.signaled.Store(true) }
