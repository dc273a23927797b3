package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maximzayviy-pixel/tgwallet/utils"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	return NewQueue(utils.InitLogger(), 1, 16, WithMaxRetries(3), WithBaseDelay(time.Millisecond))
}

func TestQueueRunsTask(t *testing.T) {
	q := newTestQueue(t)
	q.Start()

	var ran atomic.Bool
	q.Enqueue("ok", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	q.Stop()

	if !ran.Load() {
		t.Fatal("task did not run")
	}
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	q := newTestQueue(t)
	q.Start()

	var attempts atomic.Int32
	q.Enqueue("flaky", func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})
	q.Stop()

	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	q := newTestQueue(t)
	q.Start()

	var attempts atomic.Int32
	q.Enqueue("hopeless", func(ctx context.Context) error {
		attempts.Add(1)
		return errors.New("permanent")
	})
	q.Stop()

	// 1 initial attempt + 3 retries.
	if got := attempts.Load(); got != 4 {
		t.Fatalf("expected 4 attempts, got %d", got)
	}
}

func TestQueueEnqueueAfterStopIsDropped(t *testing.T) {
	q := newTestQueue(t)
	q.Start()
	q.Stop()

	var ran atomic.Bool
	q.Enqueue("late", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	if ran.Load() {
		t.Fatal("task ran after shutdown")
	}
}

func TestQueueStopDrainsQueuedTasks(t *testing.T) {
	q := newTestQueue(t)
	q.Start()

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		q.Enqueue("batch", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	q.Stop()

	if got := ran.Load(); got != 5 {
		t.Fatalf("expected 5 tasks to run before shutdown, got %d", got)
	}
}
