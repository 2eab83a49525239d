// ABOUTME: Audio encoder package for encoding PCM frames to wire formats
// ABOUTME: Provides the frame quantizer and Encoder implementations for PCM, Opus
// Package encode provides frame quantization and audio encoders.
//
// Quantize turns a frame of float samples into int16 samples. Encoders then
// turn int16 frames into wire bytes:
//   - PCM: 16-bit signed little-endian
//   - Opus: one Opus packet per frame
//
// Example:
//
//	samples := encode.Quantize(nil, frame)
//	encoder, err := encode.NewPCM(format)
//	data, err := encoder.Encode(samples)
package encode
