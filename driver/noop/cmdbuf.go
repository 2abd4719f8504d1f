package noop

import (
	"errors"

	"github.com/gviegas/rendergraph/driver"
)

// recState is the kind of block currently being recorded, if any.
type recState int

const (
	recNone recState = iota
	recPass
	recWork
	recBlit
)

// Marker records a single PushMarker/PopMarker event, in the order
// they occur, for test introspection.
type Marker struct {
	Name  string
	Color [4]float32
	Pop   bool
}

// CmdBuffer is a noop driver.CmdBuffer. It performs no GPU work but
// records every call made to it, in order, so that tests can assert
// on the shape of the command stream a recorder produced.
type CmdBuffer struct {
	res

	general bool
	state   recState
	ended   bool

	Passes      []PassRecord
	Transitions [][]driver.Transition
	Barriers    [][]driver.Barrier
	Markers     []Marker
	Timestamps  []*TimestampQuery
	Dispatches  int
	Draws       int
}

// PassRecord records one BeginPass/EndPass bracket.
type PassRecord struct {
	Pass  driver.RenderPass
	FB    driver.Framebuf
	Clear []driver.ClearValue
}

func (c *CmdBuffer) Begin() error {
	*c = CmdBuffer{general: c.general}
	return nil
}

func (c *CmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
	c.state = recPass
	c.Passes = append(c.Passes, PassRecord{pass, fb, clear})
}

func (c *CmdBuffer) NextSubpass() {}

func (c *CmdBuffer) EndPass() { c.state = recNone }

func (c *CmdBuffer) BeginWork(wait bool) { c.state = recWork }

func (c *CmdBuffer) EndWork() { c.state = recNone }

func (c *CmdBuffer) BeginBlit(wait bool) { c.state = recBlit }

func (c *CmdBuffer) EndBlit() { c.state = recNone }

func (c *CmdBuffer) SetPipeline(pl driver.Pipeline) {}

func (c *CmdBuffer) SetViewport(vp []driver.Viewport) {}

func (c *CmdBuffer) SetScissor(sciss []driver.Scissor) {}

func (c *CmdBuffer) SetBlendColor(r, g, b, a float32) {}

func (c *CmdBuffer) SetStencilRef(value uint32) {}

func (c *CmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {}

func (c *CmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {}

func (c *CmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {}

func (c *CmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {}

func (c *CmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) { c.Draws++ }

func (c *CmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) { c.Draws++ }

func (c *CmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) { c.Dispatches++ }

func (c *CmdBuffer) CopyBuffer(param *driver.BufferCopy) {}

func (c *CmdBuffer) CopyImage(param *driver.ImageCopy) {}

func (c *CmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {}

func (c *CmdBuffer) CopyImgToBuf(param *driver.BufImgCopy) {}

func (c *CmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {}

func (c *CmdBuffer) Barrier(b []driver.Barrier) {
	if len(b) == 0 {
		return
	}
	c.Barriers = append(c.Barriers, b)
}

func (c *CmdBuffer) Transition(t []driver.Transition) {
	if len(t) == 0 {
		return
	}
	c.Transitions = append(c.Transitions, t)
}

func (c *CmdBuffer) SetBarrier(tex []driver.Transition, buf, as []driver.Barrier) {
	c.Transition(tex)
	c.Barrier(buf)
	c.Barrier(as)
}

func (c *CmdBuffer) PushMarker(name string, color [4]float32) {
	c.Markers = append(c.Markers, Marker{Name: name, Color: color})
}

func (c *CmdBuffer) PopMarker() {
	c.Markers = append(c.Markers, Marker{Pop: true})
}

func (c *CmdBuffer) WriteTimestamp(q driver.TimestampQuery) {
	if tq, ok := q.(*TimestampQuery); ok {
		c.Timestamps = append(c.Timestamps, tq)
	}
}

var errAlreadyEnded = errors.New("noop: command buffer already ended")

func (c *CmdBuffer) End() error {
	if c.ended {
		return errAlreadyEnded
	}
	c.ended = true
	return nil
}

func (c *CmdBuffer) Reset() error {
	*c = CmdBuffer{general: c.general}
	return nil
}
