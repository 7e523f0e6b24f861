package clock

import (
	"testing"
	"time"
)

func TestManualFiresPeriodicAndOneShotInOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.Every(200*time.Millisecond, func() { got = append(got, "tick") })
	m.After(300*time.Millisecond, func() { got = append(got, "once") })

	m.Advance(500 * time.Millisecond)
	want := []string{"tick", "once", "tick"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if m.Pending() != 1 {
		t.Fatalf("expected only the periodic timer to remain, got %d", m.Pending())
	}
}

func TestManualCancelFromInsideCallback(t *testing.T) {
	m := NewManual()
	count := 0
	var cancel Cancel
	cancel = m.Every(time.Second, func() {
		count++
		if count == 2 {
			cancel()
		}
	})
	m.Advance(10 * time.Second)
	if count != 2 {
		t.Fatalf("expected 2 firings before cancel, got %d", count)
	}
	if m.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", m.Pending())
	}
}
