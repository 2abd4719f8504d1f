package job

import (
	"sync/atomic"
	"testing"
)

func TestDispatchTaskRunsAll(t *testing.T) {
	m := New(4)
	defer m.Close()

	var n atomic.Int64
	const count = 200
	for i := 0; i < count; i++ {
		m.DispatchTask(func() { n.Add(1) })
	}
	m.WaitForAllTasksToFinish()

	if got := n.Load(); got != count {
		t.Errorf("DispatchTask: ran %d tasks, want %d", got, count)
	}
}

func TestWaitForAllTasksToFinishIsReusable(t *testing.T) {
	m := New(2)
	defer m.Close()

	var n atomic.Int64
	m.DispatchTask(func() { n.Add(1) })
	m.WaitForAllTasksToFinish()
	if n.Load() != 1 {
		t.Fatalf("first round: got %d, want 1", n.Load())
	}

	m.DispatchTask(func() { n.Add(1) })
	m.WaitForAllTasksToFinish()
	if n.Load() != 2 {
		t.Fatalf("second round: got %d, want 2", n.Load())
	}
}

func TestThreadCount(t *testing.T) {
	m := New(6)
	defer m.Close()
	if m.ThreadCount() != 6 {
		t.Errorf("ThreadCount: got %d, want 6", m.ThreadCount())
	}
}

func TestThreadCountDefaultsToGOMAXPROCS(t *testing.T) {
	m := New(0)
	defer m.Close()
	if m.ThreadCount() < 1 {
		t.Errorf("ThreadCount: got %d, want >= 1", m.ThreadCount())
	}
}
