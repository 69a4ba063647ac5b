package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Kind selects a Scope's failure-propagation policy, matching the
// structured-scope variants: "all must succeed" (first error cancels
// siblings), "supervised" (failures logged, siblings continue), and
// "with timeout" (timer fires cancellation).
type Kind int

const (
	AllMustSucceed Kind = iota
	Supervised
	WithTimeout
)

// Scope owns a CancelToken and guarantees every task spawned inside it has
// completed by the time Wait returns — the Go rendering of TaskGroup's
// contract: "when this function returns, no task spawned inside is still
// running." AllMustSucceed is implemented directly on top of
// golang.org/x/sync/errgroup, whose Group already cancels a derived
// context on the first returned error; every other variant builds the
// same contract by hand since errgroup has no supervised or
// partial-results mode.
type Scope struct {
	kind   Kind
	cancel *CancelToken
	ctx    context.Context
	stop   context.CancelFunc

	eg *errgroup.Group // AllMustSucceed only

	mu             sync.Mutex
	wg             sync.WaitGroup
	supervisedErrs []error

	partialOnTimeout bool
}

// NewAllMustSucceed creates a scope where the first task error cancels
// every sibling still running.
func NewAllMustSucceed(parent context.Context) *Scope {
	eg, ctx := errgroup.WithContext(parent)
	s := &Scope{kind: AllMustSucceed, cancel: NewCancelToken(), ctx: ctx, eg: eg}
	s.watchCancellation()
	return s
}

// NewSupervised creates a scope where a failing task is recorded (via
// SupervisedErrors, once Wait returns) but never cancels its siblings.
func NewSupervised(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	s := &Scope{kind: Supervised, cancel: NewCancelToken(), ctx: ctx, stop: cancel}
	s.watchCancellation()
	return s
}

// NewWithTimeout creates a scope whose cancel token fires once d elapses.
// partialOnTimeout selects which of the two timeout flavors applies:
// false means all-or-nothing (Wait reports the timeout as the scope's
// error), true means Wait instead returns whatever tasks had already
// completed, silently dropping the rest.
func NewWithTimeout(parent context.Context, d time.Duration, partialOnTimeout bool) *Scope {
	ctx, cancel := context.WithTimeout(parent, d)
	s := &Scope{kind: WithTimeout, cancel: NewCancelToken(), ctx: ctx, stop: cancel, partialOnTimeout: partialOnTimeout}
	s.watchCancellation()
	return s
}

// watchCancellation bridges the scope's context cancellation (whether
// from errgroup's first-error path, an explicit Cancel, or a timeout)
// into the cooperative CancelToken tasks poll at yield points.
func (s *Scope) watchCancellation() {
	go func() {
		<-s.ctx.Done()
		s.cancel.Cancel()
	}()
}

// Cancel explicitly cancels the scope ahead of any task failing or
// timing out.
func (s *Scope) Cancel() {
	if s.stop != nil {
		s.stop()
	}
	s.cancel.Cancel()
}

// Token returns the scope's cancel token, for tasks to poll.
func (s *Scope) Token() *CancelToken { return s.cancel }

// Spawn runs f within the scope, passing it the scope's cancel token so it
// can cooperatively check ShouldCancel at its own yield points. The
// returned handle can still be joined individually; Wait additionally
// guarantees every spawned task has finished before it returns.
func Spawn[T any](s *Scope, f func(*CancelToken) (T, error)) JoinHandle[T] {
	id := newID()
	in := newInner[T](id)

	run := func() error {
		in.setRunning()
		value, err := func() (v T, e error) {
			defer func() {
				if r := recover(); r != nil {
					e = fmt.Errorf("task panicked: %v", r)
				}
			}()
			return f(s.cancel)
		}()

		var taskErr *Error
		switch {
		case err == nil:
			// no-op, Completed
		case s.cancel.ShouldCancel() && err == context.Canceled:
			taskErr = &Error{Kind: ErrCancelled}
		default:
			taskErr = &Error{Kind: ErrPanicked, Message: err.Error()}
		}
		in.complete(value, taskErr)
		return err
	}

	switch s.kind {
	case AllMustSucceed:
		s.eg.Go(run)
	case Supervised:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := run(); err != nil {
				s.mu.Lock()
				s.supervisedErrs = append(s.supervisedErrs, err)
				s.mu.Unlock()
			}
		}()
	case WithTimeout:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			run()
		}()
	}

	return JoinHandle[T]{in: in}
}

// Wait blocks until every task spawned in the scope has completed (or, for
// WithTimeout, until the deadline passes) and reports the scope-level
// outcome: AllMustSucceed's first error, WithTimeout's deadline error
// unless partialOnTimeout was set, or nil for Supervised (check
// SupervisedErrors separately).
func (s *Scope) Wait() error {
	switch s.kind {
	case AllMustSucceed:
		return s.eg.Wait()
	case Supervised:
		s.wg.Wait()
		return nil
	case WithTimeout:
		s.wg.Wait()
		if err := s.ctx.Err(); err == context.DeadlineExceeded && !s.partialOnTimeout {
			return err
		}
		return nil
	default:
		return nil
	}
}

// SupervisedErrors returns every error a Supervised scope's tasks
// returned, in completion order. Only meaningful after Wait returns.
func (s *Scope) SupervisedErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.supervisedErrs))
	copy(out, s.supervisedErrs)
	return out
}
