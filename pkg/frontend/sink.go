// ABOUTME: Transport sink contract for finished frames
// ABOUTME: Defines Sink and the SinkFunc adapter
package frontend

// Sink receives finished frames. Emit is fire-and-forget: it must not block
// the caller, and it takes ownership of frame. The encoder never reads or
// writes the slice after handing it over.
type Sink interface {
	Emit(frame []int16)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(frame []int16)

// Emit calls f(frame)
func (f SinkFunc) Emit(frame []int16) {
	f(frame)
}

// discardSink drops every frame
type discardSink struct{}

func (discardSink) Emit([]int16) {}

// Discard is a Sink that drops every frame
var Discard Sink = discardSink{}
