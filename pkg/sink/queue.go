// ABOUTME: Bounded frame queue with drop-oldest overflow
// ABOUTME: Decouples the realtime encoder from slower consumers
package sink

import (
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize holds a little over one second of 20ms frames
const DefaultQueueSize = 64

// ErrClosed is returned when using a closed sink
var ErrClosed = errors.New("sink: closed")

// Queue is a bounded FIFO of frames. Emit never blocks.
type Queue struct {
	frames  chan []int16
	mu      sync.Mutex
	closed  bool
	emitted atomic.Uint64
	dropped atomic.Uint64
}

// NewQueue creates a queue holding up to size frames
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		frames: make(chan []int16, size),
	}
}

// Emit enqueues a frame, discarding the oldest queued frame when full.
// Frames emitted after Close are counted as dropped.
func (q *Queue) Emit(frame []int16) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.dropped.Add(1)
		return
	}

	for {
		select {
		case q.frames <- frame:
			q.emitted.Add(1)
			return
		default:
		}

		// Full: make room by discarding the oldest frame
		select {
		case <-q.frames:
			q.dropped.Add(1)
		default:
		}
	}
}

// Frames returns the channel consumers read from. It is closed by Close.
func (q *Queue) Frames() <-chan []int16 {
	return q.frames
}

// Len returns the number of queued frames
func (q *Queue) Len() int {
	return len(q.frames)
}

// Cap returns the queue capacity
func (q *Queue) Cap() int {
	return cap(q.frames)
}

// Emitted returns the number of frames accepted into the queue
func (q *Queue) Emitted() uint64 {
	return q.emitted.Load()
}

// Dropped returns the number of frames discarded
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Close closes the frames channel. Queued frames remain readable.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.closed = true
	close(q.frames)
	return nil
}
