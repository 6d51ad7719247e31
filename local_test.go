package runloop

import (
	"context"
	"testing"
	"time"

	"github.com/joeycumines/runloop/internal/task"
)

func TestLocalExecutor_RunArithmetic(t *testing.T) {
	ex, err := NewLocalExecutor()
	if err != nil {
		t.Fatalf("NewLocalExecutor: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f := task.FuncFuture[int](func(w task.Waker) (int, bool) { return 2 + 3, true })
	got, err := RunLocal(ctx, ex, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
	if !ex.IsEmpty() {
		t.Fatal("expected IsEmpty after completion")
	}
}

func TestLocalExecutor_TryTickDrainsNoOpSpawns(t *testing.T) {
	ex, err := NewLocalExecutor()
	if err != nil {
		t.Fatalf("NewLocalExecutor: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := SpawnLocal[struct{}](ex, task.FuncFuture[struct{}](func(w task.Waker) (struct{}, bool) { return struct{}{}, true })); err != nil {
			t.Fatalf("SpawnLocal: %v", err)
		}
	}
	ran := 0
	for ex.TryTick() {
		ran++
	}
	if ran != 4 {
		t.Fatalf("got %d ticks, want 4", ran)
	}
}

func TestLocalExecutor_NeverInstallsTLS(t *testing.T) {
	ex, err := NewLocalExecutor()
	if err != nil {
		t.Fatalf("NewLocalExecutor: %v", err)
	}
	st := ex.state()

	f := task.FuncFuture[int](func(w task.Waker) (int, bool) {
		// From inside a running task's poll, the TLS fast path must be
		// absent: a LocalExecutor never installs one.
		if tryPushTLS(task.Runnable{}) {
			t.Error("expected tryPushTLS to fail: LocalExecutor never installs a TLS slot")
		}
		return 1, true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := RunLocal(ctx, ex, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = st
}

func TestLocalExecutor_CloseDrains(t *testing.T) {
	ex, err := NewLocalExecutor()
	if err != nil {
		t.Fatalf("NewLocalExecutor: %v", err)
	}
	f := task.FuncFuture[int](func(w task.Waker) (int, bool) { return 0, false })
	for i := 0; i < 10; i++ {
		if _, err := SpawnLocal[int](ex, f); err != nil {
			t.Fatalf("SpawnLocal: %v", err)
		}
	}
	if err := ex.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ex.IsEmpty() {
		t.Fatal("expected active set cleared after Close")
	}
}

func TestLocalExecutor_OperationsAfterCloseReportClosed(t *testing.T) {
	ex, err := NewLocalExecutor()
	if err != nil {
		t.Fatalf("NewLocalExecutor: %v", err)
	}
	if err := ex.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f := task.FuncFuture[int](func(w task.Waker) (int, bool) { return 42, true })
	if _, err := SpawnLocal[int](ex, f); err != ErrClosed {
		t.Fatalf("SpawnLocal after Close: got %v, want ErrClosed", err)
	}
	if ex.TryTick() {
		t.Fatal("expected TryTick to report false after Close")
	}
	if err := ex.Tick(context.Background()); err != ErrClosed {
		t.Fatalf("Tick after Close: got %v, want ErrClosed", err)
	}
	if _, err := RunLocal(context.Background(), ex, f); err != ErrClosed {
		t.Fatalf("RunLocal after Close: got %v, want ErrClosed", err)
	}
}
