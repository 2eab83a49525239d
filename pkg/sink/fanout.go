// ABOUTME: Sink that duplicates frames to several children
// ABOUTME: Each child owns its own copy of every frame
package sink

import "github.com/Sendspin/sendspin-capture/pkg/frontend"

// Fanout emits every frame to each child in order
type Fanout struct {
	children []frontend.Sink
}

// NewFanout creates a fanout over the given sinks. Nil sinks are skipped.
func NewFanout(children ...frontend.Sink) *Fanout {
	f := &Fanout{}
	for _, c := range children {
		if c != nil {
			f.children = append(f.children, c)
		}
	}
	return f
}

// Emit hands copies of frame to all but the first child, then the
// original to the first
func (f *Fanout) Emit(frame []int16) {
	if len(f.children) == 0 {
		return
	}
	for _, c := range f.children[1:] {
		dup := make([]int16, len(frame))
		copy(dup, frame)
		c.Emit(dup)
	}
	f.children[0].Emit(frame)
}
