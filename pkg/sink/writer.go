// ABOUTME: Sink that writes PCM16 little-endian bytes to an io.Writer
// ABOUTME: Used for offline conversion where blocking I/O is acceptable
package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/Sendspin/sendspin-capture/pkg/audio"
	"github.com/Sendspin/sendspin-capture/pkg/audio/encode"
)

// Writer encodes frames and writes them to w. Emit performs I/O, so it is
// only suitable for offline processing. The first write error is kept and
// later frames are discarded.
type Writer struct {
	w       io.Writer
	encoder encode.Encoder

	mu      sync.Mutex
	err     error
	written int64
}

// NewWriter creates a PCM16 writer sink
func NewWriter(w io.Writer) (*Writer, error) {
	enc, err := encode.NewPCM(audio.Format{Codec: "pcm", BitDepth: 16})
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	return &Writer{w: w, encoder: enc}, nil
}

// Emit encodes and writes one frame
func (s *Writer) Emit(frame []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return
	}

	data, err := s.encoder.Encode(frame)
	if err != nil {
		s.err = fmt.Errorf("failed to encode frame: %w", err)
		return
	}

	n, err := s.w.Write(data)
	s.written += int64(n)
	if err != nil {
		s.err = fmt.Errorf("failed to write frame: %w", err)
	}
}

// Err returns the first error encountered
func (s *Writer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// BytesWritten returns the number of bytes written so far
func (s *Writer) BytesWritten() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Close releases the encoder and reports the first error
func (s *Writer) Close() error {
	if err := s.encoder.Close(); err != nil {
		return err
	}
	return s.Err()
}
