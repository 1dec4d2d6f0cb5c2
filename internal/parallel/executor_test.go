package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecuteRunsEveryTask(t *testing.T) {
	var completed int32
	tasks := make([]Task, 5)
	for i := range tasks {
		tasks[i] = func() error {
			atomic.AddInt32(&completed, 1)
			return nil
		}
	}

	errs := Execute(context.Background(), tasks, 2)
	if len(errs) != 5 {
		t.Fatalf("expected 5 results, got %d", len(errs))
	}
	for i, err := range errs {
		if err != nil {
			t.Errorf("task %d: unexpected error %v", i, err)
		}
	}
	if completed != 5 {
		t.Errorf("expected all 5 tasks to run, got %d", completed)
	}
}

func TestExecutePreservesPerTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task{
		func() error { return nil },
		func() error { return boom },
		func() error { return nil },
	}

	errs := Execute(context.Background(), tasks, 0)
	if errs[0] != nil || errs[2] != nil {
		t.Errorf("expected tasks 0 and 2 to succeed, got %v / %v", errs[0], errs[2])
	}
	if errs[1] != boom {
		t.Errorf("expected task 1 to fail with boom, got %v", errs[1])
	}
}

func TestExecuteRespectsMaxConcurrency(t *testing.T) {
	var running, maxSeen int32
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = func() error {
			n := atomic.AddInt32(&running, 1)
			for {
				seen := atomic.LoadInt32(&maxSeen)
				if n <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}
	}

	Execute(context.Background(), tasks, 3)
	if maxSeen > 3 {
		t.Errorf("expected at most 3 concurrent tasks, saw %d", maxSeen)
	}
}

func TestExecuteCancelsPendingTasksOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := int32(0)
	tasks := []Task{
		func() error { atomic.AddInt32(&ran, 1); return nil },
	}

	errs := Execute(ctx, tasks, 1)
	if errs[0] != context.Canceled && ran == 1 {
		// The context is canceled before Execute starts, so the task must be
		// skipped with context.Canceled; a task that ran anyway is a failure.
		t.Errorf("unexpected result for canceled context: err=%v ran=%d", errs[0], ran)
	}
}
