// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import (
	"context"
	"log"
)

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs audio samples (blocks until written)
	Write(samples []int16) error

	// Close releases output resources
	Close() error
}

// Play writes frames from the channel to out until the channel closes or
// ctx is cancelled. Write errors are logged and the frame is skipped.
func Play(ctx context.Context, out Output, frames <-chan []int16) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := out.Write(frame); err != nil {
				log.Printf("Warning: monitor write failed: %v", err)
			}
		}
	}
}
