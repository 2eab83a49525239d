// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and the float <-> 16-bit sample conversions
// Package audio provides fundamental audio types and utilities for the capture front-end.
//
// This package defines core types used throughout the capture library:
//   - Format: Describes an audio stream format (codec, sample rate, channels, bit depth)
//
// It also provides the sample conversions every stage relies on:
//   - float32 [-1, 1] → int16 with clamping and round-half-away-from-zero
//   - int16 → float32 (the exact inverse scale, used by decode sources)
//
// Example:
//
//	format := audio.Format{
//	    Codec:      "pcm",
//	    SampleRate: 16000,
//	    Channels:   1,
//	    BitDepth:   16,
//	}
//
//	// Quantize one float sample
//	sample16 := audio.FloatToInt16(0.25)
package audio
