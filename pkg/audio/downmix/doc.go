// ABOUTME: Channel downmix package
// ABOUTME: Reduces planar mono or stereo float blocks to a single mono channel
// Package downmix reduces a planar audio block to mono.
//
// Zero channels yield nothing, one channel passes through untouched, and two
// channels are averaged sample by sample over the shorter of the two.
//
// Example:
//
//	var scratch []float32
//	mono := downmix.Downmix(scratch, [][]float32{left, right})
package downmix
