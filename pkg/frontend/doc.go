// ABOUTME: Capture front-end package: the realtime PCM16 frame encoder node
// ABOUTME: Composes downmix, resampling, framing and quantization behind one Process call
// Package frontend turns chunked float audio at a native rate into fixed-size
// 16-bit PCM frames at a target rate.
//
// An Encoder is driven by an external realtime scheduler: each callback hands
// it one block of 0-2 planar channels. The block is downmixed to mono,
// resampled with phase carried across calls, queued, sliced into frames of
// exactly FrameSize samples, quantized to int16 and handed to a Sink.
//
// Process never blocks, never starts goroutines and never returns an error.
// Each Encoder must only be driven from one goroutine.
//
// Example:
//
//	enc, err := frontend.New(frontend.Config{
//	    NativeRate: 48000,
//	    TargetRate: 16000, // FrameSize defaults to 320 (20ms)
//	}, frontend.SinkFunc(func(frame []int16) {
//	    // frame is owned by the sink from here on
//	}))
//	keepAlive := enc.Process([][]float32{left, right})
package frontend
