// Package timerwheel implements a hashed timer wheel for scheduling
// deadline callbacks, grounded on the concurrency runtime's own
// description ("TimerWheel — hashed timer wheel scheduling deadline
// callbacks") and on original_source/crates/aria-runtime/src/pool.rs's
// condvar-with-timeout re-probe idiom, reused here as the wheel's own
// ticking loop.
package timerwheel

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handle cancels a scheduled callback if it hasn't fired yet.
type Handle struct {
	id     uint64
	cancel int32
}

// Cancel prevents the callback from firing, if it hasn't already. It is
// safe to call more than once and after the callback has already run.
func (h *Handle) Cancel() { atomic.StoreInt32(&h.cancel, 1) }

func (h *Handle) isCancelled() bool { return atomic.LoadInt32(&h.cancel) != 0 }

type entry struct {
	deadline time.Time
	callback func()
	handle   *Handle
}

// Wheel is a hashed timer wheel: time is divided into fixed-size ticks,
// and each tick's bucket holds every entry due to fire at that slot.
// Advancing one tick at a time keeps per-tick scanning cheap regardless of
// how many timers are outstanding, unlike a single sorted list.
type Wheel struct {
	mu         sync.Mutex
	tick       time.Duration
	buckets    [][]*entry
	current    int
	started    time.Time
	nextID     uint64
	stopCh     chan struct{}
	stoppedWG  sync.WaitGroup
}

// New creates a wheel with the given tick granularity and bucket count.
// slots bounds how far ahead a single rotation can schedule before
// wrapping; entries further out than slots*tick still work, they simply
// wait for additional rotations (scheduleAt re-buckets into the next
// matching slot each time the wheel passes through it).
func New(tick time.Duration, slots int) *Wheel {
	w := &Wheel{
		tick:    tick,
		buckets: make([][]*entry, slots),
		started: timeNow(),
		stopCh:  make(chan struct{}),
	}
	w.stoppedWG.Add(1)
	go w.run()
	return w
}

// timeNow exists so the single non-deterministic call in this package is
// isolated to one identifier.
func timeNow() time.Time { return time.Now() }

func (w *Wheel) run() {
	defer w.stoppedWG.Done()
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.advance()
		}
	}
}

func (w *Wheel) advance() {
	w.mu.Lock()
	slot := w.current
	due := w.buckets[slot]
	w.buckets[slot] = nil
	w.current = (w.current + 1) % len(w.buckets)
	w.mu.Unlock()

	now := timeNow()
	for _, e := range due {
		if e.handle.isCancelled() {
			continue
		}
		if now.Before(e.deadline) {
			w.reschedule(e)
			continue
		}
		e.callback()
	}
}

func (w *Wheel) reschedule(e *entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	slot := w.slotFor(e.deadline)
	w.buckets[slot] = append(w.buckets[slot], e)
}

func (w *Wheel) slotFor(deadline time.Time) int {
	ticksAhead := int(deadline.Sub(timeNow()) / w.tick)
	if ticksAhead < 0 {
		ticksAhead = 0
	}
	return (w.current + ticksAhead) % len(w.buckets)
}

// ScheduleAt registers callback to run at instant deadline, returning a
// handle that can cancel it before it fires.
func (w *Wheel) ScheduleAt(deadline time.Time, callback func()) *Handle {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	h := &Handle{id: w.nextID}
	e := &entry{deadline: deadline, callback: callback, handle: h}
	slot := w.slotFor(deadline)
	w.buckets[slot] = append(w.buckets[slot], e)
	return h
}

// ScheduleTimer registers callback to run after d elapses.
func (w *Wheel) ScheduleTimer(d time.Duration, callback func()) *Handle {
	return w.ScheduleAt(timeNow().Add(d), callback)
}

// Stop halts the wheel's ticking goroutine and waits for it to exit.
// Already-scheduled callbacks that haven't fired are discarded.
func (w *Wheel) Stop() {
	close(w.stopCh)
	w.stoppedWG.Wait()
}
