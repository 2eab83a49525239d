// ABOUTME: Test tone generator source
// ABOUTME: Generates a 440Hz sine wave at any rate and channel count
package decode

import (
	"io"
	"math"
)

// ToneSource generates a sine test tone, duplicated to every channel
type ToneSource struct {
	sampleIndex uint64
	limit       uint64 // 0 means unlimited
	frequency   float64
	amplitude   float64
	sampleRate  int
	channels    int
}

// NewTestTone creates a 440Hz tone at half volume. A positive duration in
// samples makes the source end with io.EOF; zero generates forever.
func NewTestTone(sampleRate, channels int, duration uint64) *ToneSource {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	if channels <= 0 {
		channels = 2
	}

	return &ToneSource{
		limit:      duration,
		frequency:  440.0, // A4 note
		amplitude:  0.5,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

func (s *ToneSource) ReadBlock(channels [][]float32) (int, error) {
	size, err := checkBlock(channels, s.channels)
	if err != nil {
		return 0, err
	}

	if s.limit > 0 {
		remaining := s.limit - s.sampleIndex
		if remaining == 0 {
			return 0, io.EOF
		}
		if uint64(size) > remaining {
			size = int(remaining)
		}
	}

	for i := 0; i < size; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		sample := float32(s.amplitude * math.Sin(2*math.Pi*s.frequency*t))
		for _, ch := range channels {
			ch[i] = sample
		}
	}

	s.sampleIndex += uint64(size)
	return size, nil
}

func (s *ToneSource) SampleRate() int { return s.sampleRate }
func (s *ToneSource) Channels() int   { return s.channels }
func (s *ToneSource) Metadata() (string, string, string) {
	return "Test Tone", "Sendspin Capture", "Test Signal"
}
func (s *ToneSource) Close() error { return nil }
