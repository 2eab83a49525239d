// ABOUTME: Streaming resampling package using linear interpolation
// ABOUTME: Converts a continuous mono stream between sample rates across calls
// Package resample provides streaming sample rate conversion.
//
// The Resampler keeps a rolling tail of native-rate samples and a read phase
// between calls, so a stream split into blocks of any size (one sample
// included) resamples to the same output as the stream processed at once.
//
// Example:
//
//	r := resample.New(48000, 16000)
//	out = r.Process(block, out[:0])
package resample
