package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRunLimiter_AcquireRelease(t *testing.T) {
	limiter := NewRunLimiter(time.Second)

	// Initial state
	if limiter.Busy() {
		t.Error("initial Busy = true, want false")
	}

	ctx := context.Background()
	if err := limiter.Acquire(ctx, "run-1"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if got := limiter.Active(); got != "run-1" {
		t.Errorf("after Acquire, Active = %q, want %q", got, "run-1")
	}
	status := limiter.Status()
	if !status.Busy || status.ActiveID != "run-1" || status.Since.IsZero() {
		t.Errorf("Status = %+v, want busy with run-1", status)
	}

	limiter.Release()

	if limiter.Busy() {
		t.Error("after Release, Busy = true")
	}
	if got := limiter.Active(); got != "" {
		t.Errorf("after Release, Active = %q, want empty", got)
	}
}

func TestRunLimiter_BlocksWhenBusy(t *testing.T) {
	limiter := NewRunLimiter(100 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx, "first"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	start := time.Now()
	err := limiter.Acquire(ctx, "second")
	elapsed := time.Since(start)

	if err != ErrRunInProgress {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("timeout too fast: %v", elapsed)
	}
	if got := limiter.Active(); got != "first" {
		t.Errorf("Active = %q, want %q", got, "first")
	}

	limiter.Release()
}

func TestRunLimiter_OneAtATime(t *testing.T) {
	const runs = 5
	limiter := NewRunLimiter(5 * time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	active, maxObserved := 0, 0

	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background(), "run"); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			active++
			if active > maxObserved {
				maxObserved = active
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}

	wg.Wait()

	if maxObserved != 1 {
		t.Errorf("observed %d concurrent runs, want 1", maxObserved)
	}
	if limiter.Busy() {
		t.Error("limiter still busy after all runs")
	}
}

func TestRunLimiter_TryAcquire(t *testing.T) {
	limiter := NewRunLimiter(time.Second)

	if !limiter.TryAcquire("a") {
		t.Fatal("first TryAcquire should succeed")
	}

	start := time.Now()
	if limiter.TryAcquire("b") {
		t.Error("second TryAcquire should fail")
		limiter.Release()
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("TryAcquire blocked for %v", elapsed)
	}

	limiter.Release()

	if !limiter.TryAcquire("c") {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestRunLimiter_ContextCancellation(t *testing.T) {
	limiter := NewRunLimiter(5 * time.Second)

	if err := limiter.Acquire(context.Background(), "holder"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	cancelCtx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(cancelCtx, "waiter")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}
}

func TestRunLimiter_WaitForDrain(t *testing.T) {
	limiter := NewRunLimiter(time.Second)

	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Errorf("WaitForDrain on idle limiter = %v", err)
	}

	limiter.TryAcquire("run")
	go func() {
		time.Sleep(50 * time.Millisecond)
		limiter.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain = %v, want nil", err)
	}

	limiter.TryAcquire("stuck")
	defer limiter.Release()
	short, cancelShort := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelShort()
	if err := limiter.WaitForDrain(short); err != context.DeadlineExceeded {
		t.Errorf("WaitForDrain with stuck run = %v, want DeadlineExceeded", err)
	}
}
