// ABOUTME: Realtime PCM16 frame encoder node
// ABOUTME: Runs downmix, resample, frame, quantize and emit once per host callback
package frontend

import (
	"log"
	"math"
	"sync/atomic"

	"github.com/Sendspin/sendspin-capture/pkg/audio/downmix"
	"github.com/Sendspin/sendspin-capture/pkg/audio/encode"
	"github.com/Sendspin/sendspin-capture/pkg/audio/frame"
	"github.com/Sendspin/sendspin-capture/pkg/audio/resample"
)

// Processor is the capability a host scheduler drives. Process receives one
// block per callback and reports whether the node wants to keep running.
type Processor interface {
	Process(inputs [][]float32) bool
}

// Encoder converts native-rate float blocks into PCM16 frames
type Encoder struct {
	config    Config
	sink      Sink
	resampler *resample.Resampler
	framer    *frame.Framer

	// Scratch buffers reused on every call
	mono      []float32
	resampled []float32

	stats counters
}

// counters are written by the processing goroutine and may be read by others
type counters struct {
	blocks       atomic.Uint64
	inputSamples atomic.Uint64
	outSamples   atomic.Uint64
	frames       atomic.Uint64
	phase        atomic.Uint64 // math.Float64bits
	pending      atomic.Int64
	buffered     atomic.Int64
}

// Stats is a snapshot of encoder activity
type Stats struct {
	Blocks           uint64
	InputSamples     uint64
	ResampledSamples uint64
	Frames           uint64
	Phase            float64
	PendingSource    int
	BufferedSamples  int
}

// New creates an encoder for one audio session. A nil sink drops frames.
func New(cfg Config, sink Sink) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	normalized, clamped := cfg.Normalize()
	if clamped {
		log.Printf("Warning: encoder config clamped (target rate %d -> %d, frame size %d -> %d)",
			cfg.TargetRate, normalized.TargetRate, cfg.FrameSize, normalized.FrameSize)
	}

	if sink == nil {
		sink = Discard
	}

	return &Encoder{
		config:    normalized,
		sink:      sink,
		resampler: resample.New(normalized.NativeRate, normalized.TargetRate),
		framer:    frame.New(normalized.FrameSize),
	}, nil
}

// Config returns the normalized configuration
func (e *Encoder) Config() Config {
	return e.config
}

// Process consumes one block of 0-2 planar channels and emits every frame
// completed by it. Empty input is a no-op. It always returns true.
func (e *Encoder) Process(inputs [][]float32) bool {
	mono := downmix.Downmix(e.mono, inputs)
	if len(mono) == 0 {
		return true
	}
	if len(inputs) > 1 {
		e.mono = mono
	}

	e.resampled = e.resampler.Process(mono, e.resampled[:0])
	e.framer.Write(e.resampled)

	frames := e.framer.Drain(func(fr []float32) {
		// A fresh slice per frame: ownership passes to the sink
		e.sink.Emit(encode.Quantize(nil, fr))
	})

	e.stats.blocks.Add(1)
	e.stats.inputSamples.Add(uint64(len(mono)))
	e.stats.outSamples.Add(uint64(len(e.resampled)))
	e.stats.frames.Add(uint64(frames))
	e.stats.phase.Store(math.Float64bits(e.resampler.Phase()))
	e.stats.pending.Store(int64(e.resampler.Pending()))
	e.stats.buffered.Store(int64(e.framer.Buffered()))

	return true
}

// Stats returns a snapshot of the encoder counters. Safe to call from any goroutine.
func (e *Encoder) Stats() Stats {
	return Stats{
		Blocks:           e.stats.blocks.Load(),
		InputSamples:     e.stats.inputSamples.Load(),
		ResampledSamples: e.stats.outSamples.Load(),
		Frames:           e.stats.frames.Load(),
		Phase:            math.Float64frombits(e.stats.phase.Load()),
		PendingSource:    int(e.stats.pending.Load()),
		BufferedSamples:  int(e.stats.buffered.Load()),
	}
}

// Close ends the session. Any partial frame still queued is discarded.
func (e *Encoder) Close() error {
	e.framer.Reset()
	e.resampler.Reset()
	e.stats.buffered.Store(0)
	e.stats.pending.Store(0)
	return nil
}
