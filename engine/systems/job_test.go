package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/F3kilo/hex-war/engine/core"
)

func newTestWorker(t *testing.T) *TaskWorker {
	t.Helper()
	tw, err := NewTaskWorker(core.WorkerConfig{QueueCapacity: 2})
	if err != nil {
		t.Fatalf("NewTaskWorker: %v", err)
	}
	t.Cleanup(tw.Close)
	return tw
}

// flush blocks until every task sent before it has run.
func flush(t *testing.T, s TaskSender) {
	t.Helper()
	done := make(chan struct{})
	if err := s.Send(TaskFunc(func() { close(done) })); err != nil {
		t.Fatalf("flush: %v", err)
	}
	<-done
}

func TestTaskWorker_RunsEveryTaskOnce(t *testing.T) {
	tw := newTestWorker(t)
	const n = 100

	var counts [n]atomic.Int32
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			s := tw.Sender()
			for i := p; i < n; i += 4 {
				i := i
				if err := s.Send(TaskFunc(func() { counts[i].Add(1) })); err != nil {
					t.Errorf("Send: %v", err)
				}
			}
		}(p)
	}
	wg.Wait()
	flush(t, tw.Sender())

	for i := range counts {
		if got := counts[i].Load(); got != 1 {
			t.Errorf("task %d ran %d times", i, got)
		}
	}
}

func TestTaskWorker_KeepsSenderOrder(t *testing.T) {
	tw := newTestWorker(t)
	s := tw.Sender()

	var order []int
	for i := 0; i < 50; i++ {
		i := i
		if err := s.Send(TaskFunc(func() { order = append(order, i) })); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	flush(t, s)

	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d", i, v)
		}
	}
	if len(order) != 50 {
		t.Fatalf("ran %d tasks, want 50", len(order))
	}
}

func TestTaskWorker_SendAfterCloseReturnsTask(t *testing.T) {
	tw := newTestWorker(t)
	s := tw.Sender()
	tw.Close()

	task := TaskFunc(func() { t.Error("task ran after Close") })
	err := s.Send(task)
	if !errors.Is(err, core.ErrWorkerClosed) {
		t.Fatalf("err = %v, want ErrWorkerClosed", err)
	}
	var sendErr *SendError
	if !errors.As(err, &sendErr) || sendErr.Task == nil {
		t.Fatalf("err = %#v, want SendError carrying the task", err)
	}
}

func TestTaskWorker_CloseRunsQueuedTasks(t *testing.T) {
	tw := newTestWorker(t)
	s := tw.Sender()

	gate := make(chan struct{})
	var ran atomic.Int32
	s.Send(TaskFunc(func() { <-gate }))
	for i := 0; i < 10; i++ {
		s.Send(TaskFunc(func() { ran.Add(1) }))
	}
	close(gate)
	tw.Close()
	tw.Close()

	if got := ran.Load(); got != 10 {
		t.Fatalf("ran %d queued tasks, want 10", got)
	}
}

func TestTaskWorker_RecoversFromPanics(t *testing.T) {
	tw := newTestWorker(t)
	s := tw.Sender()

	s.Send(TaskFunc(func() { panic("decoder blew up") }))
	var ran atomic.Bool
	s.Send(TaskFunc(func() { ran.Store(true) }))
	flush(t, s)

	if !ran.Load() {
		t.Fatal("worker stopped after a panicking task")
	}
}

func TestTaskWorker_InvalidConfig(t *testing.T) {
	if _, err := NewTaskWorker(core.WorkerConfig{}); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestTaskSender_ZeroValue(t *testing.T) {
	var s TaskSender
	if err := s.Send(TaskFunc(func() {})); !errors.Is(err, core.ErrWorkerClosed) {
		t.Fatalf("err = %v, want ErrWorkerClosed", err)
	}
}
