// ABOUTME: MP3 file source
// ABOUTME: Decodes MP3 to planar float stereo blocks
package decode

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Sendspin/sendspin-capture/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// mp3FrameBytes is one stereo int16 frame as produced by go-mp3
const mp3FrameBytes = 4

// MP3Source reads from an MP3 file
type MP3Source struct {
	file       *os.File
	decoder    *mp3.Decoder
	sampleRate int
	buf        []byte
	title      string
}

// NewMP3Source creates a new MP3 audio source
func NewMP3Source(filePath string) (*MP3Source, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	title := titleFromPath(filePath)
	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", title, decoder.SampleRate())

	return &MP3Source{
		file:       f,
		decoder:    decoder,
		sampleRate: decoder.SampleRate(),
		title:      title,
	}, nil
}

func (s *MP3Source) ReadBlock(channels [][]float32) (int, error) {
	// MP3 decoder always outputs stereo
	size, err := checkBlock(channels, 2)
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, nil
	}

	need := size * mp3FrameBytes
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.decoder, s.buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, fmt.Errorf("mp3 decode error: %w", err)
	}

	frames := n / mp3FrameBytes
	if frames == 0 {
		return 0, io.EOF
	}

	for i := 0; i < frames; i++ {
		off := i * mp3FrameBytes
		left := int16(uint16(s.buf[off]) | uint16(s.buf[off+1])<<8)
		right := int16(uint16(s.buf[off+2]) | uint16(s.buf[off+3])<<8)
		channels[0][i] = audio.Int16ToFloat(left)
		channels[1][i] = audio.Int16ToFloat(right)
	}

	return frames, nil
}

func (s *MP3Source) SampleRate() int { return s.sampleRate }
func (s *MP3Source) Channels() int   { return 2 }
func (s *MP3Source) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}
func (s *MP3Source) Close() error {
	return s.file.Close()
}
