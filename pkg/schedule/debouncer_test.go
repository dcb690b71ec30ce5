package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTriggerRunsOnce(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	done := make(chan struct{})
	var calls atomic.Int32

	d.Trigger(func() {
		calls.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if d.Pending() {
		t.Error("Pending() after run")
	}
}

func TestTriggerReplacesPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	got := make(chan string, 2)

	d.Trigger(func() { got <- "first" })
	d.Trigger(func() { got <- "second" })

	select {
	case v := <-got:
		if v != "second" {
			t.Errorf("ran %q, want second", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
	select {
	case v := <-got:
		t.Errorf("stale callback %q ran", v)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var ran atomic.Bool
	d.Trigger(func() { ran.Store(true) })
	if !d.Pending() {
		t.Fatal("Pending() = false after Trigger")
	}
	d.Cancel()
	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Error("cancelled callback ran")
	}
	if d.Pending() {
		t.Error("Pending() after Cancel")
	}
}

func TestFlush(t *testing.T) {
	d := NewDebouncer(-1)
	if d.Flush() {
		t.Error("Flush with nothing pending reported true")
	}

	n := 0
	d.Trigger(func() { n++ })
	if !d.Pending() {
		t.Fatal("manual debouncer should keep callback pending")
	}
	if !d.Flush() || n != 1 {
		t.Errorf("Flush ran %d callbacks", n)
	}
	if d.Flush() {
		t.Error("second Flush ran again")
	}
}

func TestDefaultDelay(t *testing.T) {
	if got := NewDebouncer(0).Delay(); got != DefaultDelay {
		t.Errorf("Delay() = %v, want %v", got, DefaultDelay)
	}
}
