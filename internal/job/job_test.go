// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"
)

type ticker struct {
	count     atomic.Int64
	completed atomic.Bool
}

func TestNew(t *testing.T) {
	job := New(time.Second, func(context.Context) {})
	if job == nil {
		t.Fatal("expected job to be non-nil")
	}
	if job.Running() {
		t.Error("expected new job to not be running")
	}
}

func TestJob_Start(t *testing.T) {
	t.Run("job stops when the context is cancelled", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			tester := &ticker{}
			ctx, cancel := context.WithCancel(t.Context())
			context.AfterFunc(ctx, func() {
				tester.completed.Store(true)
			})

			testJob := New(time.Second, tester.tick)
			done := make(chan error, 1)
			go func() { done <- testJob.Start(ctx) }()

			synctest.Wait()
			if tester.completed.Load() {
				t.Fatal("expected job to not be completed before context was cancelled")
			}
			if !testJob.Running() {
				t.Fatal("expected job to be running")
			}

			cancel()
			if err := <-done; err != nil {
				t.Errorf("expected job to return without error, got %s", err)
			}
			synctest.Wait()
			if !tester.completed.Load() {
				t.Fatal("expected job to be completed after context was cancelled")
			}
			if testJob.Running() {
				t.Error("expected job to not be running after cancellation")
			}
		})
	})
	t.Run("job ticks once per interval", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(t.Context(), time.Second*5+time.Millisecond*500)
			defer cancel()
			tester := &ticker{}

			if err := New(time.Second, tester.tick).Start(ctx); err != nil {
				t.Fatalf("failed to start job: %s", err)
			}
			synctest.Wait()
			if got := tester.count.Load(); got != 5 {
				t.Errorf("expected job to execute 5 times, got %d", got)
			}
		})
	})
	t.Run("second start is rejected", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			testJob := New(time.Second, func(context.Context) {})
			go func() { _ = testJob.Start(ctx) }()
			synctest.Wait()

			if err := testJob.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
				t.Errorf("expected error to be %s, got %v", ErrAlreadyRunning, err)
			}
			cancel()
			synctest.Wait()
		})
	})
	t.Run("overlapping ticks are skipped", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(t.Context(), time.Second*10+time.Millisecond*500)
			defer cancel()
			var runs atomic.Int64
			slow := func(ctx context.Context) {
				runs.Add(1)
				select {
				case <-ctx.Done():
				case <-time.After(time.Second * 3):
				}
			}
			_ = New(time.Second, slow).Start(ctx)
			synctest.Wait()
			if got := runs.Load(); got >= 10 {
				t.Errorf("expected overlapping ticks to be skipped, got %d runs", got)
			}
		})
	})
	t.Run("nil task returns", func(t *testing.T) {
		if err := New(time.Second, nil).Start(t.Context()); err != nil {
			t.Errorf("expected nil task to return without error, got %s", err)
		}
	})
}

func (t *ticker) tick(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	default:
		t.count.Add(1)
	}
}
