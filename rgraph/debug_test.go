// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"strings"
	"testing"
)

// TestWriteDOTDiamond exercises S1 via the debug dump: A must gain a
// NONE-rooted edge (no predecessors), and D must gain edges from both
// B and C.
func TestWriteDOTDiamond(t *testing.T) {
	passes := []pass{
		{name: "A"},
		{name: "B", pred: setPred(4, 0)},
		{name: "C", pred: setPred(4, 0)},
		{name: "D", pred: setPred(4, 1, 2)},
	}
	batches := [][]int{{0}, {1, 2}, {3}}
	sched := &schedule{}

	var sb strings.Builder
	if err := writeDOT(&sb, passes, batches, sched); err != nil {
		t.Fatalf("writeDOT: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		`NONE->"A"`,
		`"A"->"B"`,
		`"A"->"C"`,
		`"B"->"D"`,
		`"C"->"D"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("dot output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteDOTIncludesBarrierNodes(t *testing.T) {
	passes := []pass{{name: "A"}, {name: "B", pred: setPred(2, 0)}}
	batches := [][]int{{0}, {1}}
	sched := &schedule{
		tex: []texTransitionPlan{{
			target: renderTargetHandle(0),
			sub:    AllSurfaces(),
			before: texState{usage: TexFramebufWrite},
			after:  texState{usage: TexSampled},
			batch:  1,
		}},
	}

	var sb strings.Builder
	if err := writeDOT(&sb, passes, batches, sched); err != nil {
		t.Fatalf("writeDOT: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "fb-write to sampled") {
		t.Fatalf("dot output missing the barrier transition label:\n%s", out)
	}
}

func TestTexUsageStringUndefinedAndCombined(t *testing.T) {
	if s := texUsageString(0); s != "undefined" {
		t.Fatalf("texUsageString(0):\nhave %q\nwant %q", s, "undefined")
	}
	s := texUsageString(TexSampled | TexUAVRead)
	if s != "sampled|uav-read" {
		t.Fatalf("texUsageString(combined):\nhave %q\nwant %q", s, "sampled|uav-read")
	}
}
