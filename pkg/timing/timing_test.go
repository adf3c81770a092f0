package timing

import (
	"testing"
	"time"
)

func TestTimerMetricsPhases(t *testing.T) {
	tm := NewTimer()
	tm.StartDNS()
	time.Sleep(time.Millisecond)
	tm.EndDNS()
	tm.StartTCP()
	time.Sleep(time.Millisecond)
	tm.EndTCP()

	m := tm.Metrics()
	if m.DNSLookup <= 0 {
		t.Fatal("DNSLookup not recorded")
	}
	if m.TCPConnect <= 0 {
		t.Fatal("TCPConnect not recorded")
	}
	if m.TLSHandshake != 0 {
		t.Fatal("TLSHandshake should be zero when phase never started")
	}
	if m.Total <= 0 {
		t.Fatal("Total not recorded")
	}
}

func TestClockElapsedMonotonic(t *testing.T) {
	c := StartClock()
	time.Sleep(2 * time.Millisecond)
	if c.Elapsed() < 2*time.Millisecond {
		t.Fatalf("Elapsed() = %v, want >= 2ms", c.Elapsed())
	}
}

func TestFloorAppliesMinimum(t *testing.T) {
	if got := Floor(10 * time.Millisecond); got != 100*time.Millisecond {
		t.Fatalf("Floor(10ms) = %v, want 100ms", got)
	}
	if got := Floor(500 * time.Millisecond); got != 500*time.Millisecond {
		t.Fatalf("Floor(500ms) = %v, want unchanged", got)
	}
}
