// ABOUTME: Tests for the listener-side server clock estimate
// ABOUTME: Covers offset math, sample rejection, smoothing and quality
package timesync

import (
	"testing"
	"time"
)

func TestCalculateOffset(t *testing.T) {
	tests := []struct {
		name           string
		t1, t2, t3, t4 int64
		wantRTT        int64
		wantOffset     int64
	}{
		{"server ahead", 1000, 6000, 6500, 2500, 1000, 4500},
		{"server behind", 10000, 2000, 2500, 15000, 4500, -10250},
		{"symmetric", 0, 500, 500, 1000, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rtt, offset := calculateOffset(tt.t1, tt.t2, tt.t3, tt.t4)
			if rtt != tt.wantRTT {
				t.Errorf("rtt = %d, want %d", rtt, tt.wantRTT)
			}
			if offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
		})
	}
}

func TestClockFirstSample(t *testing.T) {
	c := NewClock(false)

	if _, _, q := c.Stats(); q != QualityLost {
		t.Errorf("expected lost before any sample, got %v", q)
	}

	if !c.Observe(1000, 6000, 6500, 2500) {
		t.Fatal("expected sample accepted")
	}

	offset, rtt, q := c.Stats()
	if offset != 4500 {
		t.Errorf("offset = %d, want 4500", offset)
	}
	if rtt != 1000 {
		t.Errorf("rtt = %d, want 1000", rtt)
	}
	if q != QualityGood {
		t.Errorf("quality = %v, want good", q)
	}
}

func TestClockRejectsHighRTT(t *testing.T) {
	c := NewClock(false)

	if c.Observe(0, 0, 0, 200000) {
		t.Error("expected 200ms rtt sample rejected")
	}
	if _, _, q := c.Stats(); q != QualityLost {
		t.Errorf("expected lost after rejected sample, got %v", q)
	}
}

func TestClockSmoothing(t *testing.T) {
	c := NewClock(false)
	c.Observe(0, 1000, 1000, 0) // offset 1000

	// Measured offset 2000: moves 10% of the residual
	if !c.Observe(10000, 12000, 12000, 10000) {
		t.Fatal("expected sample accepted")
	}
	if got := c.Offset(); got != 1100 {
		t.Errorf("offset = %d, want 1100", got)
	}

	// Residual of 100ms is a clock jump, not a correction
	if c.Observe(20000, 120000, 120000, 20000) {
		t.Error("expected large residual rejected")
	}
	if got := c.Offset(); got != 1100 {
		t.Errorf("offset changed to %d after rejected sample", got)
	}
}

func TestClockStale(t *testing.T) {
	c := NewClock(false)
	base := time.Unix(1000, 0)
	c.now = func() time.Time { return base }

	c.Observe(0, 500, 500, 1000)

	c.now = func() time.Time { return base.Add(StaleAfter + time.Second) }
	if _, _, q := c.Stats(); q != QualityLost {
		t.Errorf("expected lost after %v without samples, got %v", StaleAfter, q)
	}
}

func TestClockDegraded(t *testing.T) {
	c := NewClock(false)
	// 60ms rtt
	c.Observe(0, 30000, 30000, 60000)

	if _, _, q := c.Stats(); q != QualityDegraded {
		t.Errorf("quality = %v, want degraded", q)
	}
}

func TestLatency(t *testing.T) {
	c := NewClock(false)
	c.Observe(0, 5000, 5000, 0) // server 5ms ahead

	// Frame stamped at server 10000us, arrives at local 25000us (server 30000us)
	if got := c.Latency(10000, 25000); got != 20*time.Millisecond {
		t.Errorf("latency = %v, want 20ms", got)
	}
}
