// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import "sync"

// headlessWindow is an in-memory Window implementation used when no
// native windowing system is wired in. It keeps real state (size,
// title, mapped flag) so that swapchain and presentation code can be
// exercised without a platform backend.
type headlessWindow struct {
	mu      sync.Mutex
	width   int
	height  int
	title   string
	mapped  bool
	closed  bool
}

func init() {
	newWindow = newWindowHeadless
	dispatch = dispatchHeadless
	setAppName = setAppNameHeadless
	platform = None
}

func newWindowHeadless(width, height int, title string) (Window, error) {
	return &headlessWindow{width: width, height: height, title: title}, nil
}

func dispatchHeadless() {}

func setAppNameHeadless(string) {}

func (w *headlessWindow) Map() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mapped = true
	return nil
}

func (w *headlessWindow) Unmap() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mapped = false
	return nil
}

func (w *headlessWindow) Resize(width, height int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
	if windowHandler != nil {
		windowHandler.WindowResize(w, width, height)
	}
	return nil
}

func (w *headlessWindow) SetTitle(title string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title = title
	return nil
}

func (w *headlessWindow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	closeWindow(w)
	if windowHandler != nil {
		windowHandler.WindowClose(w)
	}
}

func (w *headlessWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *headlessWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *headlessWindow) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}
