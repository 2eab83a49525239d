// ABOUTME: FLAC file source
// ABOUTME: Decodes FLAC frames to planar float blocks of any size
package decode

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mewkiz/flac"
)

// FLACSource reads from a FLAC file
type FLACSource struct {
	file       *os.File
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitDepth   int
	scale      float32
	title      string

	// pending holds the decoded FLAC frame not yet handed out
	pending [][]int32
	offset  int
}

// NewFLACSource creates a new FLAC audio source
func NewFLACSource(filePath string) (*FLACSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	sampleRate := int(info.SampleRate)
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	title := titleFromPath(filePath)
	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		title, sampleRate, channels, bitDepth)

	return &FLACSource{
		file:       f,
		stream:     stream,
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
		scale:      float32(int64(1) << (bitDepth - 1)),
		title:      title,
	}, nil
}

func (s *FLACSource) ReadBlock(channels [][]float32) (int, error) {
	size, err := checkBlock(channels, s.channels)
	if err != nil {
		return 0, err
	}

	filled := 0
	for filled < size {
		if len(s.pending) == 0 || s.offset >= len(s.pending[0]) {
			frame, err := s.stream.ParseNext()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return filled, fmt.Errorf("flac decode error: %w", err)
			}
			s.pending = s.pending[:0]
			for ch := 0; ch < s.channels; ch++ {
				s.pending = append(s.pending, frame.Subframes[ch].Samples)
			}
			s.offset = 0
			continue
		}

		n := len(s.pending[0]) - s.offset
		if n > size-filled {
			n = size - filled
		}
		for ch := 0; ch < s.channels; ch++ {
			src := s.pending[ch][s.offset : s.offset+n]
			dst := channels[ch][filled : filled+n]
			for i, sample := range src {
				dst[i] = float32(sample) / s.scale
			}
		}
		s.offset += n
		filled += n
	}

	if filled == 0 && size > 0 {
		return 0, io.EOF
	}
	return filled, nil
}

func (s *FLACSource) SampleRate() int { return s.sampleRate }
func (s *FLACSource) Channels() int   { return s.channels }
func (s *FLACSource) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}
func (s *FLACSource) Close() error {
	return s.file.Close()
}
