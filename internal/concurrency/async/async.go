// Package async bridges the Async surface effect (spawn/await/yield) to
// internal/concurrency/task's goroutine-based task handles. Grounded on
// original_source/crates/aria-runtime/src/async_handler.rs's
// AsyncEffectHandler/AsyncContext, with one deliberate substitution: the
// Rust original keeps an implicit "current context" in thread-local
// storage (CURRENT_CONTEXT, with_async_context, current_async_context)
// because a compiled-code call site has no parameter slot for it; Go has
// no goroutine-local storage, and a function passed down an arbitrary
// call chain can always carry an extra context.Context argument, so the
// context is threaded explicitly via context.Context rather than
// reconstructed from thread-local state.
package async

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ariacc/ariac/internal/concurrency/task"
)

// TaskID uniquely identifies a task spawned within an AsyncContext.
type TaskID uint64

// Context tracks every task spawned through it, keyed by TaskID, so a
// later Await can look the handle up and remove it — mirroring
// AsyncContext's take_task, which consumes the entry on await rather than
// letting it be awaited twice.
type Context struct {
	mu    sync.Mutex
	idSeq uint64
	tasks map[TaskID]task.JoinHandle[any]
}

// NewContext creates an empty async context.
func NewContext() *Context {
	return &Context{tasks: make(map[TaskID]task.JoinHandle[any])}
}

func (c *Context) register(h task.JoinHandle[any]) TaskID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idSeq++
	id := TaskID(c.idSeq)
	c.tasks[id] = h
	return id
}

func (c *Context) take(id TaskID) (task.JoinHandle[any], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.tasks[id]
	if ok {
		delete(c.tasks, id)
	}
	return h, ok
}

// Spawn runs f on its own goroutine and registers the resulting handle in
// ctx, returning an ID that Await can later consume.
func Spawn(ctx *Context, f func() any) TaskID {
	h := task.Spawn(f)
	return ctx.register(h)
}

// ErrTaskNotFound is returned by Await when id does not name a task
// registered (and not already awaited) on this context.
var ErrTaskNotFound = fmt.Errorf("async task not found")

// Await blocks until the task named by id completes, returning its
// result. A panic inside the spawned closure surfaces here as an error
// rather than propagating as a Go panic, unlike the Rust original which
// re-panics on the awaiting side.
func Await(ctx *Context, id TaskID) (any, error) {
	h, ok := ctx.take(id)
	if !ok {
		return nil, ErrTaskNotFound
	}
	v, err := h.Join()
	if err != nil {
		return nil, fmt.Errorf("async task failed: %w", err)
	}
	return v, nil
}

// Yield cooperatively yields the current goroutine to the Go scheduler,
// the direct counterpart of yield_effect/executor::yield_now.
func Yield() { runtime.Gosched() }

// RunAsync creates a fresh Context and runs f within it, the Go
// counterpart of run_async — a synchronous entry point for code that
// wants to spawn/await without managing a Context itself.
func RunAsync[T any](f func(*Context) T) T {
	return f(NewContext())
}

type ctxKey struct{}

// WithContext attaches ac to parent so that deeply nested code reached
// only via a context.Context parameter (not an explicit *Context one) can
// still recover it with FromContext.
func WithContext(parent context.Context, ac *Context) context.Context {
	return context.WithValue(parent, ctxKey{}, ac)
}

// FromContext recovers the Context attached by WithContext, if any.
func FromContext(ctx context.Context) (*Context, bool) {
	ac, ok := ctx.Value(ctxKey{}).(*Context)
	return ac, ok
}

// SpawnFromContext spawns f using the Context attached to ctx.
func SpawnFromContext(ctx context.Context, f func() any) (TaskID, error) {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0, fmt.Errorf("async.Spawn: no async context attached to ctx")
	}
	return Spawn(ac, f), nil
}

// AwaitFromContext awaits a task by ID using the Context attached to ctx.
func AwaitFromContext(ctx context.Context, id TaskID) (any, error) {
	ac, ok := FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("async.Await: no async context attached to ctx")
	}
	return Await(ac, id)
}
