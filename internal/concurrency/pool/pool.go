// Package pool implements a work-stealing goroutine pool for structured
// concurrency. Grounded on
// original_source/crates/aria-runtime/src/pool.rs: a fixed number of
// workers, each with a local FIFO queue, a shared injector for externally
// submitted tasks, and round-robin stealing from sibling workers when a
// worker's own queue and the injector are both empty.
package pool

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// TaskError is the failure mode of a pooled task: either it panicked, or
// (reserved for future Scope integration) it was cancelled.
type TaskError struct {
	Panicked  bool
	Message   string
	Cancelled bool
}

func (e *TaskError) Error() string {
	if e.Cancelled {
		return "task cancelled"
	}
	return fmt.Sprintf("task panicked: %s", e.Message)
}

func panicked(msg string) *TaskError { return &TaskError{Panicked: true, Message: msg} }

type boxedTask func()

// taskResult is the shared completion box a PooledJoinHandle waits on,
// mirroring pool.rs's TaskResult<T>: a mutex-guarded optional result plus
// a condition variable signaled on completion.
type taskResult[T any] struct {
	mu        sync.Mutex
	cond      *sync.Cond
	done      bool
	value     T
	err       *TaskError
}

func newTaskResult[T any]() *taskResult[T] {
	r := &taskResult[T]{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *taskResult[T]) complete(value T, err *TaskError) {
	r.mu.Lock()
	r.value, r.err, r.done = value, err, true
	r.mu.Unlock()
	r.cond.Broadcast()
}

func (r *taskResult[T]) wait() (T, *TaskError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for !r.done {
		r.cond.Wait()
	}
	return r.value, r.err
}

func (r *taskResult[T]) tryTake() (T, *TaskError, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.err, r.done
}

// TaskID is a monotonically increasing identifier assigned on spawn.
type TaskID uint64

var nextTaskID uint64

func newTaskID() TaskID { return TaskID(atomic.AddUint64(&nextTaskID, 1)) }

// PooledJoinHandle awaits a single pool.Spawn call's completion.
type PooledJoinHandle[T any] struct {
	id     TaskID
	result *taskResult[T]
}

func (h *PooledJoinHandle[T]) ID() TaskID { return h.id }

func (h *PooledJoinHandle[T]) IsComplete() bool {
	_, _, done := h.result.tryTake()
	return done
}

// Join blocks until the task completes, returning its value or the
// TaskError that ended it (a panic, currently the only failure mode a bare
// pool task can hit).
func (h *PooledJoinHandle[T]) Join() (T, *TaskError) { return h.result.wait() }

// TryJoin returns the result without blocking if the task has already
// completed.
func (h *PooledJoinHandle[T]) TryJoin() (T, *TaskError, bool) { return h.result.tryTake() }

// ThreadPool is a fixed-size work-stealing goroutine pool.
type ThreadPool struct {
	injector    *deque
	locals      []*deque
	numWorkers  int
	activeTasks int64
	shutdown    int32

	taskMu    sync.Mutex
	taskAvail *sync.Cond

	wg sync.WaitGroup
}

// New creates a pool sized to runtime.GOMAXPROCS(0), mirroring the
// original's available_parallelism default.
func New() *ThreadPool { return WithWorkers(runtime.GOMAXPROCS(0)) }

// WithWorkers creates a pool with an explicit worker count.
func WithWorkers(numWorkers int) *ThreadPool {
	if numWorkers < 1 {
		panic("thread pool must have at least 1 worker")
	}
	p := &ThreadPool{
		injector:   newDeque(),
		locals:     make([]*deque, numWorkers),
		numWorkers: numWorkers,
	}
	p.taskAvail = sync.NewCond(&p.taskMu)
	for i := range p.locals {
		p.locals[i] = newDeque()
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.workerLoop(i)
	}
	return p
}

// findTask implements find_task's exact fallback order: local queue,
// injector, then sibling workers in rotating order starting just after
// the caller's own index.
func (p *ThreadPool) findTask(workerID int) (boxedTask, bool) {
	if t, ok := p.locals[workerID].pop(); ok {
		return t, true
	}
	if t, ok := p.injector.steal(); ok {
		return t, true
	}
	n := len(p.locals)
	for i := 0; i < n; i++ {
		idx := (workerID + i + 1) % n
		if idx == workerID {
			continue
		}
		if t, ok := p.locals[idx].steal(); ok {
			return t, true
		}
	}
	return nil, false
}

func (p *ThreadPool) workerLoop(workerID int) {
	defer p.wg.Done()
	for {
		if t, ok := p.findTask(workerID); ok {
			t()
			atomic.AddInt64(&p.activeTasks, -1)
			continue
		}
		if atomic.LoadInt32(&p.shutdown) != 0 {
			return
		}

		p.taskMu.Lock()
		if atomic.LoadInt32(&p.shutdown) != 0 {
			p.taskMu.Unlock()
			return
		}
		if t, ok := p.findTask(workerID); ok {
			p.taskMu.Unlock()
			t()
			atomic.AddInt64(&p.activeTasks, -1)
			continue
		}
		waitWithTimeout(p.taskAvail, time.Millisecond)
		p.taskMu.Unlock()
	}
}

// waitWithTimeout emulates parking_lot's Condvar::wait_for: block on cond
// but never longer than d, so a worker periodically re-probes for work
// even without an explicit notify. Broadcast is safe to call without
// holding the associated lock, so the timer callback needs no
// coordination with the waiting goroutine beyond firing once.
func waitWithTimeout(cond *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, cond.Broadcast)
	cond.Wait()
	timer.Stop()
}

// Spawn submits a task to the pool's injector queue and returns a handle
// for awaiting its result.
func Spawn[T any](p *ThreadPool, f func() T) *PooledJoinHandle[T] {
	id := newTaskID()
	result := newTaskResult[T]()

	task := func() {
		value, err := runCatching(f)
		result.complete(value, err)
	}

	atomic.AddInt64(&p.activeTasks, 1)
	p.injector.push(task)
	p.taskAvail.Signal()

	return &PooledJoinHandle[T]{id: id, result: result}
}

func runCatching[T any](f func() T) (value T, err *TaskError) {
	defer func() {
		if r := recover(); r != nil {
			err = panicked(fmt.Sprint(r))
		}
	}()
	return f(), nil
}

func (p *ThreadPool) NumWorkers() int  { return p.numWorkers }
func (p *ThreadPool) ActiveTasks() int { return int(atomic.LoadInt64(&p.activeTasks)) }
func (p *ThreadPool) IsShutdown() bool { return atomic.LoadInt32(&p.shutdown) != 0 }

// Shutdown signals every worker to stop once its current queues drain and
// waits for them to exit, mirroring Drop for ThreadPool.
func (p *ThreadPool) Shutdown() {
	atomic.StoreInt32(&p.shutdown, 1)
	p.taskAvail.Broadcast()
	p.wg.Wait()
}

var (
	globalOnce sync.Once
	globalPool *ThreadPool
)

// Global returns a process-wide pool, lazily created on first use.
func Global() *ThreadPool {
	globalOnce.Do(func() { globalPool = New() })
	return globalPool
}
