// ABOUTME: Host scheduler that drives a capture processor from a source
// ABOUTME: Reads fixed-size native blocks and calls Process once per block
// Package capture is the external scheduler for frontend processors.
//
// An Engine reads BlockSize samples per channel from a decode.Source and
// hands each block to a frontend.Processor, paced in realtime by a ticker or
// as fast as possible for offline conversion.
//
// Example:
//
//	eng := capture.NewEngine(capture.Config{BlockSize: 128, Realtime: true}, src, enc)
//	err := eng.Run(ctx)
package capture
