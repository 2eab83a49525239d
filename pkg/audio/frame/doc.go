// ABOUTME: Output framing package
// ABOUTME: Slices a FIFO sample queue into exact fixed-size frames
// Package frame accumulates resampled samples and slices them into frames of
// exactly one size.
//
// Example:
//
//	f := frame.New(frame.DefaultSize(16000)) // 320 samples, 20ms
//	f.Write(samples)
//	f.Drain(func(fr []float32) {
//	    // fr is only valid inside the callback
//	})
package frame
