// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import (
	"fmt"
	"io"
)

// dotColors cycles across batches so adjacent batches are visually
// distinguishable in the rendered graph.
var dotColors = [...]string{"red", "green", "blue", "magenta", "cyan", "orange"}

// WriteDOT renders the most recently compiled frame as a Graphviz
// directed graph: one node per pass, colour-coded by batch, plus a
// separate chain of barrier nodes that starts at a START node and runs
// in batch order; barrier nodes have no edges to pass nodes. A barrier
// node's
// label names the resource, its sub-resource (for textures) and the
// usage transition the scheduler computed for it, per spec.md §6.
//
// WriteDOT must be called between Compile and Reset; it is a
// debugging aid and performs no allocation bookkeeping of its own.
func (g *Graph) WriteDOT(w io.Writer) error {
	return writeDOT(w, g.arena.passes, g.batches, &g.arena.sched)
}

func writeDOT(w io.Writer, passes []pass, batches [][]int, sched *schedule) error {
	fmt.Fprintln(w, "digraph {")
	fmt.Fprintln(w, "\tconcentrate = true;")

	for b, indices := range batches {
		color := dotColors[b%len(dotColors)]
		fmt.Fprint(w, "\t{rank=\"same\";")
		for _, pi := range indices {
			fmt.Fprintf(w, "%q;", passes[pi].name)
		}
		fmt.Fprintln(w, "}")

		for _, pi := range indices {
			p := &passes[pi]
			style := "dashed"
			if p.kind == Graphics {
				style = "bold"
			}
			fmt.Fprintf(w, "\t%q[color=%s,style=%s,shape=box];\n", p.name, color, style)

			if !predHasAny(p.pred) {
				fmt.Fprintf(w, "\tNONE->%q;\n", p.name)
				continue
			}
			for j := range passes[:pi] {
				if predIsSet(p.pred, j) {
					fmt.Fprintf(w, "\t%q->%q;\n", passes[j].name, p.name)
				}
			}
		}
	}

	prev := "START"
	for b := range batches {
		color := dotColors[b%len(dotColors)]
		n := 0
		for _, t := range sched.tex {
			if t.batch != b {
				continue
			}
			node := fmt.Sprintf("batch%d tex barrier%d", b, n)
			n++
			fmt.Fprintf(w, "\t%q[color=%s,style=bold,shape=box,label=%q];\n", node, color, texBarrierLabel(t))
			fmt.Fprintf(w, "\t%q->%q;\n", prev, node)
			prev = node
		}
		n = 0
		for _, bb := range sched.buf {
			if bb.batch != b {
				continue
			}
			node := fmt.Sprintf("batch%d buf barrier%d", b, n)
			n++
			fmt.Fprintf(w, "\t%q[color=%s,style=bold,shape=box,label=%q];\n", node, color, bufBarrierLabel(bb))
			fmt.Fprintf(w, "\t%q->%q;\n", prev, node)
			prev = node
		}
		n = 0
		for _, ab := range sched.as {
			if ab.batch != b {
				continue
			}
			node := fmt.Sprintf("batch%d AS barrier%d", b, n)
			n++
			fmt.Fprintf(w, "\t%q[color=%s,style=bold,shape=box,label=%q];\n", node, color, asBarrierLabel(ab))
			fmt.Fprintf(w, "\t%q->%q;\n", prev, node)
			prev = node
		}
	}

	fmt.Fprintln(w, "}")
	return nil
}

func texBarrierLabel(t texTransitionPlan) string {
	name := fmt.Sprintf("target%d", t.target.index())
	sub := "all"
	if !t.sub.All {
		sub = fmt.Sprintf("(mip=%d,face=%d,layer=%d)", t.sub.Mip, t.sub.Face, t.sub.Layer)
	}
	return fmt.Sprintf("%s %s\n%s to %s", name, sub, texUsageString(t.before.usage), texUsageString(t.after.usage))
}

func bufBarrierLabel(b bufBarrierPlan) string {
	name := fmt.Sprintf("buffer%d", b.target.index())
	return fmt.Sprintf("%s\n%#x to %#x", name, b.before.AccessAfter, b.after.AccessAfter)
}

func asBarrierLabel(a asBarrierPlan) string {
	name := fmt.Sprintf("as%d", a.target.index())
	return fmt.Sprintf("%s\n%#x to %#x", name, a.before.AccessAfter, a.after.AccessAfter)
}

func texUsageString(u TexUsage) string {
	if u == 0 {
		return "undefined"
	}
	names := []struct {
		bit  TexUsage
		name string
	}{
		{TexSampled, "sampled"},
		{TexUAVRead, "uav-read"},
		{TexUAVWrite, "uav-write"},
		{TexFramebufRead, "fb-read"},
		{TexFramebufWrite, "fb-write"},
		{TexTransferSrc, "xfer-src"},
		{TexTransferDst, "xfer-dst"},
		{TexMipGen, "mipgen"},
		{TexPresent, "present"},
		{TexShadingRate, "shading-rate"},
	}
	s := ""
	for _, n := range names {
		if u&n.bit == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n.name
	}
	return s
}
