// ABOUTME: Audio decoder package for feeding the capture front-end
// ABOUTME: Provides planar float Sources (tone, MP3, FLAC, raw PCM) and frame decoders
// Package decode provides audio sources and frame decoders.
//
// A Source yields planar float blocks in [-1, 1] at its native rate, the
// shape a realtime audio callback hands to the front-end:
//   - ToneSource: 440Hz sine test tone
//   - MP3Source: MP3 files (always stereo)
//   - FLACSource: FLAC files
//   - PCMSource: raw 16-bit little-endian interleaved PCM
//
// FrameDecoders turn received wire frames (PCM, Opus) back into int16 samples.
//
// Example:
//
//	src, err := decode.Open("speech.flac", 0, 0)
//	block := [][]float32{make([]float32, 128), make([]float32, 128)}
//	n, err := src.ReadBlock(block)
package decode
