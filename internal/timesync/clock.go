// ABOUTME: Listener-side estimate of the capture server's stream clock
// ABOUTME: Smooths client/time round trips into an offset used to measure frame latency
package timesync

import (
	"log"
	"sync"
	"time"
)

const (
	// MaxRTT discards samples taken during network congestion
	MaxRTT = 100 * time.Millisecond
	// MaxResidual rejects samples that disagree wildly with the current estimate
	MaxResidual = 50 * time.Millisecond
	// StaleAfter marks the estimate lost when no sample arrives in time
	StaleAfter = 15 * time.Second

	defaultSmoothing = 0.1
)

// Quality represents sync quality
type Quality int

const (
	QualityLost Quality = iota
	QualityDegraded
	QualityGood
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityDegraded:
		return "degraded"
	default:
		return "lost"
	}
}

// Clock tracks the offset between a local microsecond clock and the server's
type Clock struct {
	mu        sync.RWMutex
	offset    int64 // server - client, microseconds
	rtt       int64
	samples   int
	lastSync  time.Time
	smoothing float64
	now       func() time.Time
	debug     bool
}

// NewClock creates a clock with no samples
func NewClock(debug bool) *Clock {
	return &Clock{
		smoothing: defaultSmoothing,
		now:       time.Now,
		debug:     debug,
	}
}

// Observe folds one client/time exchange into the estimate.
// t1 and t4 are client send and receive times, t2 and t3 the server's.
// It reports whether the sample was accepted.
func (c *Clock) Observe(t1, t2, t3, t4 int64) bool {
	rtt, measured := calculateOffset(t1, t2, t3, t4)

	c.mu.Lock()
	defer c.mu.Unlock()

	if rtt < 0 || rtt > MaxRTT.Microseconds() {
		if c.debug {
			log.Printf("[DEBUG] Discarding sync sample: rtt=%dus", rtt)
		}
		return false
	}

	if c.samples > 0 {
		residual := measured - c.offset
		if residual > MaxResidual.Microseconds() || residual < -MaxResidual.Microseconds() {
			log.Printf("Warning: discarding sync sample with residual %dus", residual)
			return false
		}
		c.offset += int64(c.smoothing * float64(residual))
	} else {
		c.offset = measured
		log.Printf("Initial sync: offset=%dus, rtt=%dus", measured, rtt)
	}

	c.rtt = rtt
	c.samples++
	c.lastSync = c.now()
	return true
}

// calculateOffset computes RTT and clock offset (positive = server ahead)
func calculateOffset(t1, t2, t3, t4 int64) (rtt, offset int64) {
	rtt = (t4 - t1) - (t3 - t2)
	offset = ((t2 - t1) + (t3 - t4)) / 2
	return
}

// Offset returns the current offset in microseconds
func (c *Clock) Offset() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

// Stats returns offset, last RTT and quality
func (c *Clock) Stats() (offset, rtt int64, quality Quality) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset, c.rtt, c.qualityLocked()
}

func (c *Clock) qualityLocked() Quality {
	if c.samples == 0 || c.now().Sub(c.lastSync) > StaleAfter {
		return QualityLost
	}
	if c.rtt < MaxRTT.Microseconds()/2 {
		return QualityGood
	}
	return QualityDegraded
}

// ToServer converts local microseconds into the server's clock
func (c *Clock) ToServer(local int64) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return local + c.offset
}

// Latency returns how far behind the server clock a frame stamped at
// serverTimestamp arrived, measured at local time now.
func (c *Clock) Latency(serverTimestamp, now int64) time.Duration {
	return time.Duration(c.ToServer(now)-serverTimestamp) * time.Microsecond
}
