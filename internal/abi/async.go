package abi

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/ariacc/ariac/internal/concurrency/task"
)

// TaskFn matches ffi.rs's TaskFn: a function pointer taking captured
// data and returning a 64-bit result slot. Generated code packages a
// closure's captures behind captures and passes a thin trampoline here.
type TaskFn func(captures unsafe.Pointer) int64

var (
	taskHandlesMu sync.Mutex
	taskHandles   = make(map[uint64]task.JoinHandle[int64])
	nextAsyncID   uint64
)

// AriaAsyncSpawn spawns a runtime task running fn(captures) and returns a
// task id usable with AriaAsyncAwait/AriaAsyncPoll.
func AriaAsyncSpawn(fn TaskFn, captures unsafe.Pointer) uint64 {
	taskHandlesMu.Lock()
	nextAsyncID++
	id := nextAsyncID
	taskHandlesMu.Unlock()

	h := task.Spawn(func() int64 { return fn(captures) })

	taskHandlesMu.Lock()
	taskHandles[id] = h
	taskHandlesMu.Unlock()

	return id
}

// AriaAsyncAwait blocks until the task named by id completes and returns
// its result, removing it from the registry so a task id can only be
// awaited once — exactly as the original's HashMap::remove semantics
// demand. Returns 0 if the id is unknown or already awaited.
func AriaAsyncAwait(id uint64) int64 {
	taskHandlesMu.Lock()
	h, ok := taskHandles[id]
	if ok {
		delete(taskHandles, id)
	}
	taskHandlesMu.Unlock()

	if !ok {
		return 0
	}
	v, err := h.Join()
	if err != nil {
		return 0
	}
	return v
}

// AriaAsyncYield cooperatively yields the current goroutine to the Go
// scheduler.
func AriaAsyncYield() { runtime.Gosched() }

// AriaAsyncPoll reports 1 if the task has completed, 0 if still running,
// or -1 if id names no registered task.
func AriaAsyncPoll(id uint64) int64 {
	taskHandlesMu.Lock()
	h, ok := taskHandles[id]
	taskHandlesMu.Unlock()

	if !ok {
		return -1
	}
	if h.IsFinished() {
		return 1
	}
	return 0
}
