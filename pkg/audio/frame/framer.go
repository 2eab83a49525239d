// ABOUTME: FIFO sample queue that emits fixed-size frames
// ABOUTME: Keeps any partial remainder queued for the next write
package frame

import "math"

const (
	// DefaultDurationMs is the default frame length
	DefaultDurationMs = 20
	// MinSize is the smallest permitted frame length in samples
	MinSize = 1
)

// DefaultSize returns the number of samples in a 20ms frame at sampleRate
func DefaultSize(sampleRate int) int {
	size := int(math.Round(float64(sampleRate) * DefaultDurationMs / 1000))
	if size < MinSize {
		return MinSize
	}
	return size
}

// Framer slices a FIFO queue of samples into frames of exactly Size samples.
// It is not safe for concurrent use.
type Framer struct {
	size  int
	queue []float32
	head  int
}

// New creates a framer. Sizes below MinSize are clamped to MinSize.
func New(size int) *Framer {
	if size < MinSize {
		size = MinSize
	}
	return &Framer{size: size}
}

// Size returns the frame length in samples
func (f *Framer) Size() int {
	return f.size
}

// Write appends samples at the tail of the queue
func (f *Framer) Write(samples []float32) {
	if len(samples) == 0 {
		return
	}
	f.compact()
	f.queue = append(f.queue, samples...)
}

// Drain calls fn once per complete frame in FIFO order and returns the number
// of frames. The frame slice aliases the queue and is only valid until fn
// returns. Samples short of a full frame stay queued.
func (f *Framer) Drain(fn func(frame []float32)) int {
	frames := 0
	for len(f.queue)-f.head >= f.size {
		fn(f.queue[f.head : f.head+f.size])
		f.head += f.size
		frames++
	}
	if f.head == len(f.queue) {
		f.queue = f.queue[:0]
		f.head = 0
	}
	return frames
}

// Buffered returns the number of queued samples not yet framed
func (f *Framer) Buffered() int {
	return len(f.queue) - f.head
}

// Reset discards any queued partial frame
func (f *Framer) Reset() {
	f.queue = f.queue[:0]
	f.head = 0
}

// compact moves the unread remainder to the front of the queue
func (f *Framer) compact() {
	if f.head == 0 {
		return
	}
	n := copy(f.queue, f.queue[f.head:])
	f.queue = f.queue[:n]
	f.head = 0
}
