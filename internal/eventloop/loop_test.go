// internal/eventloop/loop_test.go
//
// Unit-tests for the cooperative loop: ordering, nested posts, panics,
// timers, and Close.
//
// Run: go test ./internal/eventloop -v

package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	t.Cleanup(func() {
		l.Close()
		cancel()
	})
	return l
}

func TestPost_OrderAndNesting(t *testing.T) {
	l := startLoop(t)

	var order []string
	err := l.Do(context.Background(), func() {
		order = append(order, "a")
		l.Post(func() { order = append(order, "c") })
		order = append(order, "b")
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	// Flush the nested task.
	_ = l.Do(context.Background(), func() {})

	want := []string{"a", "b", "c"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestPanicIsContained(t *testing.T) {
	l := startLoop(t)

	l.Post(func() { panic("boom") })

	ran := false
	if err := l.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatalf("Do after panic: %v", err)
	}
	if !ran {
		t.Fatalf("loop stopped after panic")
	}
}

func TestAfter_FiresOnce(t *testing.T) {
	l := startLoop(t)

	var n int32
	l.After(5*time.Millisecond, func() { atomic.AddInt32(&n, 1) })

	time.Sleep(40 * time.Millisecond)
	_ = l.Do(context.Background(), func() {})

	if got := atomic.LoadInt32(&n); got != 1 {
		t.Fatalf("fired %d times, want 1", got)
	}
	if l.Timers() != 0 {
		t.Fatalf("fired timer still tracked")
	}
}

func TestEvery_StopHaltsTicks(t *testing.T) {
	l := startLoop(t)

	var n int32
	tm := l.Every(5*time.Millisecond, func() { atomic.AddInt32(&n, 1) })

	time.Sleep(40 * time.Millisecond)
	tm.Stop()
	_ = l.Do(context.Background(), func() {})
	seen := atomic.LoadInt32(&n)
	if seen < 2 {
		t.Fatalf("ticked %d times, want >= 2", seen)
	}

	time.Sleep(30 * time.Millisecond)
	_ = l.Do(context.Background(), func() {})
	if got := atomic.LoadInt32(&n); got > seen+1 {
		t.Fatalf("ticks continued after Stop: %d -> %d", seen, got)
	}
}

func TestClose_StopsTimersAndRejectsWork(t *testing.T) {
	l := New(nil)
	go func() { _ = l.Run(context.Background()) }()

	l.Every(time.Hour, func() {})
	l.After(time.Hour, func() {})
	if l.Timers() != 2 {
		t.Fatalf("timers = %d, want 2", l.Timers())
	}

	l.Close()

	if l.Timers() != 0 {
		t.Fatalf("timers after Close = %d", l.Timers())
	}
	if l.Post(func() {}) {
		t.Fatalf("Post accepted work after Close")
	}
	if err := l.Do(context.Background(), func() {}); err != ErrClosed {
		t.Fatalf("Do after Close = %v, want ErrClosed", err)
	}
}
