package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStateIsFinished(t *testing.T) {
	cases := map[State]bool{
		Pending:   false,
		Running:   false,
		Completed: true,
		Cancelled: true,
		Panicked:  true,
	}
	for state, want := range cases {
		if got := state.IsFinished(); got != want {
			t.Errorf("%v.IsFinished() = %v, want %v", state, got, want)
		}
	}
}

func TestSpawnJoinReturnsValue(t *testing.T) {
	h := Spawn(func() int { return 7 })
	v, err := h.Join()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 {
		t.Errorf("expected 7, got %d", v)
	}
	if h.State() != Completed {
		t.Errorf("expected Completed, got %v", h.State())
	}
}

func TestSpawnPanicBecomesPanickedState(t *testing.T) {
	h := Spawn(func() int { panic("boom") })
	_, err := h.Join()
	if err == nil {
		t.Fatalf("expected an Error")
	}
	if err.Kind != ErrPanicked {
		t.Errorf("expected ErrPanicked, got %v", err.Kind)
	}
	if h.State() != Panicked {
		t.Errorf("expected Panicked, got %v", h.State())
	}
}

func TestCancelTokenCancelsOnlyItself(t *testing.T) {
	parent := NewCancelToken()
	child := parent.Child()

	child.Cancel()
	if !child.ShouldCancel() {
		t.Errorf("expected child to report cancelled")
	}
	if parent.ShouldCancel() {
		t.Errorf("expected parent to remain uncancelled after child.Cancel()")
	}
}

func TestCancelTokenChildSeesParentCancellation(t *testing.T) {
	parent := NewCancelToken()
	child := parent.Child()

	parent.Cancel()
	if !child.ShouldCancel() {
		t.Errorf("expected child to inherit parent cancellation")
	}
}

func TestScopeAllMustSucceedCancelsSiblingsOnFirstError(t *testing.T) {
	s := NewAllMustSucceed(context.Background())

	h1 := Spawn(s, func(tok *CancelToken) (int, error) {
		return 0, errors.New("boom")
	})
	h2 := Spawn(s, func(tok *CancelToken) (int, error) {
		for i := 0; i < 200; i++ {
			if tok.ShouldCancel() {
				return 0, context.Canceled
			}
			time.Sleep(time.Millisecond)
		}
		return 99, nil
	})

	err := s.Wait()
	if err == nil {
		t.Fatalf("expected scope-level error")
	}

	if _, e := h1.Join(); e == nil {
		t.Errorf("expected h1 to report a failure")
	}
	if v, e := h2.Join(); e == nil && v == 99 {
		t.Errorf("expected h2 to observe cancellation rather than completing normally")
	}
}

func TestScopeSupervisedContinuesAfterFailure(t *testing.T) {
	s := NewSupervised(context.Background())

	Spawn(s, func(tok *CancelToken) (int, error) { return 0, errors.New("first failure") })
	h2 := Spawn(s, func(tok *CancelToken) (int, error) {
		time.Sleep(10 * time.Millisecond)
		return 42, nil
	})

	if err := s.Wait(); err != nil {
		t.Fatalf("Supervised.Wait() should never itself fail, got %v", err)
	}
	v, err := h2.Join()
	if err != nil || v != 42 {
		t.Errorf("expected sibling to complete normally, got v=%d err=%v", v, err)
	}

	errs := s.SupervisedErrors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 supervised error, got %d", len(errs))
	}
}

func TestScopeWithTimeoutAllOrNothingReportsDeadline(t *testing.T) {
	s := NewWithTimeout(context.Background(), 10*time.Millisecond, false)

	Spawn(s, func(tok *CancelToken) (int, error) {
		for i := 0; i < 500; i++ {
			if tok.ShouldCancel() {
				return 0, context.Canceled
			}
			time.Sleep(time.Millisecond)
		}
		return 1, nil
	})

	err := s.Wait()
	if err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestScopeWithTimeoutPartialReturnsNilAfterDeadline(t *testing.T) {
	s := NewWithTimeout(context.Background(), 10*time.Millisecond, true)

	h := Spawn(s, func(tok *CancelToken) (int, error) {
		for i := 0; i < 500; i++ {
			if tok.ShouldCancel() {
				return 0, context.Canceled
			}
			time.Sleep(time.Millisecond)
		}
		return 1, nil
	})

	if err := s.Wait(); err != nil {
		t.Fatalf("partial-results timeout should not surface an error, got %v", err)
	}
	if _, err := h.Join(); err == nil {
		t.Errorf("expected the timed-out task to report cancellation")
	}
}

func TestScopeExplicitCancel(t *testing.T) {
	s := NewSupervised(context.Background())
	h := Spawn(s, func(tok *CancelToken) (int, error) {
		for i := 0; i < 500; i++ {
			if tok.ShouldCancel() {
				return 0, context.Canceled
			}
			time.Sleep(time.Millisecond)
		}
		return 1, nil
	})
	time.Sleep(5 * time.Millisecond)
	s.Cancel()
	s.Wait()
	if _, err := h.Join(); err == nil {
		t.Errorf("expected cancellation to be observed by the task")
	}
}
