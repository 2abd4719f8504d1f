// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package rgraph implements a per-frame render graph: a compiler that
// turns a declarative description of rendering passes and the
// resources they read and write into batches of GPU work, the
// barriers required between those batches, and a set of command
// buffers recorded in parallel and submitted with correct
// synchronization against the presentation swapchain.
//
// The typical lifetime of a frame is:
//
//	b := g.NewBuilder()
//	// ... register resources and passes on b ...
//	if err := g.Compile(b); err != nil {
//		...
//	}
//	if err := g.RecordAndSubmit(nil); err != nil {
//		...
//	}
//	g.Reset()
//
// Builder-side pass declarations live only until Compile; handles and
// compiled entities (batches, barriers) live until Reset;
// the transient texture pool and the cross-frame imported-resource
// usage table live for the lifetime of the Graph.
package rgraph
