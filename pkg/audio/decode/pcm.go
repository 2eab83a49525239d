// ABOUTME: Raw PCM source and PCM frame decoder
// ABOUTME: Reads 16-bit little-endian interleaved PCM as planar float blocks
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sendspin/sendspin-capture/pkg/audio"
)

// PCMSource reads headerless 16-bit little-endian interleaved PCM
type PCMSource struct {
	r          io.Reader
	sampleRate int
	channels   int
	buf        []byte
	title      string
}

// NewPCMSource wraps r as a Source. If r is an io.Closer it is closed by Close.
func NewPCMSource(r io.Reader, sampleRate, channels int) *PCMSource {
	return &PCMSource{
		r:          r,
		sampleRate: sampleRate,
		channels:   channels,
		title:      "PCM Stream",
	}
}

func (s *PCMSource) ReadBlock(channels [][]float32) (int, error) {
	size, err := checkBlock(channels, s.channels)
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, nil
	}

	frameBytes := s.channels * audio.BytesPerSample16
	need := size * frameBytes
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.r, s.buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	frames := n / frameBytes
	if frames == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("pcm read error: %w", err)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < s.channels; ch++ {
			off := (i*s.channels + ch) * audio.BytesPerSample16
			sample := int16(uint16(s.buf[off]) | uint16(s.buf[off+1])<<8)
			channels[ch][i] = audio.Int16ToFloat(sample)
		}
	}

	return frames, nil
}

func (s *PCMSource) SampleRate() int { return s.sampleRate }
func (s *PCMSource) Channels() int   { return s.channels }
func (s *PCMSource) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}
func (s *PCMSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// FrameDecoder decodes one received frame to int16 samples
type FrameDecoder interface {
	Decode(data []byte) ([]int16, error)
	Close() error
}

// PCMDecoder decodes 16-bit little-endian PCM frames
type PCMDecoder struct{}

// NewPCM creates a new PCM frame decoder
func NewPCM(format audio.Format) (FrameDecoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}
	return &PCMDecoder{}, nil
}

// Decode converts PCM bytes to int16 samples
func (d *PCMDecoder) Decode(data []byte) ([]int16, error) {
	samples := make([]int16, len(data)/audio.BytesPerSample16)
	audio.Int16LE(samples, data)
	return samples, nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
