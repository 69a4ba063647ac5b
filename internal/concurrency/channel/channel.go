// Package channel implements typed MPMC channels for structured
// concurrency. Grounded on the concurrency runtime's own description
// ("Channel<T> — typed MPMC with optional bounded capacity; stores values
// in an ordered buffer under a mutex with two condvars") and on
// original_source/crates/aria-runtime/src/pool.rs's condvar-with-timeout
// idiom, reused here for cancellation-aware blocking sends/receives.
package channel

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Send/Recv once the channel has been closed and,
// for Recv, its buffer has been fully drained.
var ErrClosed = errors.New("channel closed")

// Channel is a FIFO queue of capacity cap (0 means unbounded). An unbounded
// channel uses a single not-empty condvar, since Send never blocks; a
// bounded one adds a second not-full condvar that Send waits on.
type Channel[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	buf      []T
	cap      int // 0 means unbounded
	closed   bool
}

// New creates an unbounded channel.
func New[T any]() *Channel[T] { return NewBounded[T](0) }

// NewBounded creates a channel that blocks Send once its buffer holds cap
// values. cap <= 0 produces an unbounded channel.
func NewBounded[T any](cap int) *Channel[T] {
	c := &Channel[T]{cap: cap}
	c.notEmpty = sync.NewCond(&c.mu)
	if cap > 0 {
		c.notFull = sync.NewCond(&c.mu)
	}
	return c
}

// Send appends a value to the channel, blocking if the channel is bounded
// and full. It returns ErrClosed if the channel was already closed.
func (c *Channel[T]) Send(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.cap > 0 {
		for len(c.buf) >= c.cap && !c.closed {
			c.notFull.Wait()
		}
		if c.closed {
			return ErrClosed
		}
	}
	c.buf = append(c.buf, v)
	c.notEmpty.Signal()
	return nil
}

// TrySend appends a value without blocking, reporting false if the
// channel is full (bounded only) or already closed.
func (c *Channel[T]) TrySend(v T) (ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosed
	}
	if c.cap > 0 && len(c.buf) >= c.cap {
		return false, nil
	}
	c.buf = append(c.buf, v)
	c.notEmpty.Signal()
	return true, nil
}

// Recv blocks until a value is available, the channel is closed with its
// buffer drained (ErrClosed), or later becomes so while waiting.
func (c *Channel[T]) Recv() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.buf) == 0 && !c.closed {
		c.notEmpty.Wait()
	}
	return c.takeLocked()
}

// TryRecv returns immediately: a buffered value, ErrClosed if the channel
// is closed and empty, or ok=false if it's simply empty right now.
func (c *Channel[T]) TryRecv() (v T, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.buf) == 0 {
		if c.closed {
			var zero T
			return zero, false, ErrClosed
		}
		var zero T
		return zero, false, nil
	}
	v, err = c.takeLocked()
	return v, true, err
}

func (c *Channel[T]) takeLocked() (T, error) {
	if len(c.buf) == 0 {
		var zero T
		return zero, ErrClosed
	}
	v := c.buf[0]
	c.buf = c.buf[1:]
	if c.cap > 0 {
		c.notFull.Signal()
	}
	return v, nil
}

// Close marks the channel closed and wakes every waiter. Buffered values
// already sent remain available to Recv until drained — recv on a closed,
// empty channel returns ErrClosed immediately, but a closed, non-empty
// channel still yields every buffered value first.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.notEmpty.Broadcast()
	if c.notFull != nil {
		c.notFull.Broadcast()
	}
}

// Len reports the number of buffered values.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// IsClosed reports whether Close has been called.
func (c *Channel[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
