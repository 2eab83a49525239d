// ABOUTME: Transport sink implementations for encoded frames
// ABOUTME: Bounded drop-oldest queue, fanout and io.Writer sinks
// Package sink provides frontend.Sink implementations.
//
// Queue is the hand-off between the realtime encoder and network
// consumers: Emit never blocks, and when the queue is full the oldest
// frame is discarded. Fanout duplicates frames to several sinks. Writer
// encodes frames as little-endian PCM onto an io.Writer for offline use.
//
// Example:
//
//	q := sink.NewQueue(64)
//	enc, _ := frontend.New(cfg, q)
//	go func() {
//	    for frame := range q.Frames() {
//	        send(frame)
//	    }
//	}()
package sink
