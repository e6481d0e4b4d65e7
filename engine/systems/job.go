package systems

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/F3kilo/hex-war/engine/containers"
	"github.com/F3kilo/hex-war/engine/core"
)

// Task is a unit of blocking work executed on the task worker goroutine.
type Task interface {
	Perform()
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func()

func (f TaskFunc) Perform() { f() }

// SendError is returned by TaskSender.Send once the worker has finished. It
// hands the task back to the caller.
type SendError struct {
	Task Task
}

func (e *SendError) Error() string {
	return "can't send task: " + core.ErrWorkerClosed.Error()
}

func (e *SendError) Unwrap() error {
	return core.ErrWorkerClosed
}

type commandKind uint8

const (
	commandAddTask commandKind = iota
	commandFinish
)

type command struct {
	kind commandKind
	task Task
}

// taskQueue is the command backlog shared by the worker and its senders.
type taskQueue struct {
	mu      sync.Mutex
	ready   *sync.Cond
	backlog *containers.RingQueue[command]
	closed  bool
}

func (q *taskQueue) push(cmd command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	if cmd.kind == commandFinish {
		q.closed = true
	}
	q.backlog.Enqueue(cmd)
	q.ready.Signal()
	return true
}

func (q *taskQueue) pop() command {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.backlog.IsEmpty() {
		q.ready.Wait()
	}
	cmd, _ := q.backlog.Dequeue()
	return cmd
}

// TaskSender submits tasks to a TaskWorker. It is a small value and may be
// copied freely; every copy feeds the same worker.
type TaskSender struct {
	queue *taskQueue
}

// Send enqueues task. Tasks from one sender run in the order they were sent.
func (s TaskSender) Send(task Task) error {
	if s.queue == nil || !s.queue.push(command{kind: commandAddTask, task: task}) {
		return &SendError{Task: task}
	}
	return nil
}

// TaskWorker runs queued tasks one at a time on a single goroutine.
type TaskWorker struct {
	queue     *taskQueue
	done      chan struct{}
	closeOnce sync.Once
}

func NewTaskWorker(cfg core.WorkerConfig) (*TaskWorker, error) {
	if cfg.QueueCapacity <= 0 {
		return nil, fmt.Errorf("%w: worker queue capacity must be > 0, got %d", core.ErrInvalidConfig, cfg.QueueCapacity)
	}
	q := &taskQueue{
		backlog: containers.NewRingQueue[command](cfg.QueueCapacity),
	}
	q.ready = sync.NewCond(&q.mu)

	tw := &TaskWorker{
		queue: q,
		done:  make(chan struct{}),
	}
	go tw.run()
	return tw, nil
}

func (tw *TaskWorker) Sender() TaskSender {
	return TaskSender{queue: tw.queue}
}

// Close sends Finish and waits for the worker goroutine to exit. Tasks queued
// before Close still run. Calling Close more than once is fine.
func (tw *TaskWorker) Close() {
	tw.closeOnce.Do(func() {
		if !tw.queue.push(command{kind: commandFinish}) {
			core.LogDebug("task worker already finished")
		}
		<-tw.done
	})
}

func (tw *TaskWorker) run() {
	defer close(tw.done)
	for {
		cmd := tw.queue.pop()
		switch cmd.kind {
		case commandAddTask:
			tw.perform(cmd.task)
		case commandFinish:
			core.LogDebug("task worker finished")
			return
		}
	}
}

func (tw *TaskWorker) perform(task Task) {
	defer func() {
		if r := recover(); r != nil {
			core.LogError("task panicked: %v\n%s", r, debug.Stack())
		}
	}()
	task.Perform()
}
