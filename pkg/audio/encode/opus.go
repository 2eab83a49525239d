// ABOUTME: Opus audio encoder
// ABOUTME: Encodes one int16 frame per Opus packet
package encode

import (
	"fmt"

	"github.com/Sendspin/sendspin-capture/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// maxOpusPacket is the largest packet libopus will produce
const maxOpusPacket = 4000

// OpusEncoder encodes Opus audio
type OpusEncoder struct {
	encoder    *opus.Encoder
	sampleRate int
	channels   int
	frameSize  int
	packet     []byte
}

// OpusRates lists the sample rates libopus accepts
var OpusRates = []int{8000, 12000, 16000, 24000, 48000}

// OpusFrameSupported reports whether frames of frameSize samples per channel
// at sampleRate can be encoded as single Opus packets (2.5 to 60 ms).
func OpusFrameSupported(sampleRate, frameSize int) bool {
	rateOK := false
	for _, r := range OpusRates {
		if r == sampleRate {
			rateOK = true
			break
		}
	}
	if !rateOK {
		return false
	}

	// Legal durations in tenths of a millisecond
	for _, d := range []int{25, 50, 100, 200, 400, 600} {
		if frameSize*10000 == d*sampleRate {
			return true
		}
	}
	return false
}

// NewOpus creates a new Opus encoder for frames of frameSize samples per channel
func NewOpus(format audio.Format, frameSize int) (Encoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus encoder: %s", format.Codec)
	}

	if !OpusFrameSupported(format.SampleRate, frameSize) {
		return nil, fmt.Errorf("unsupported opus frame: %d samples at %d Hz", frameSize, format.SampleRate)
	}

	// VoIP mode: the capture stream is speech-oriented
	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	return &OpusEncoder{
		encoder:    encoder,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
		frameSize:  frameSize,
		packet:     make([]byte, maxOpusPacket),
	}, nil
}

// Encode converts one frame of int16 samples to an Opus packet
func (e *OpusEncoder) Encode(samples []int16) ([]byte, error) {
	if len(samples) != e.frameSize*e.channels {
		return nil, fmt.Errorf("opus frame has %d samples, expected %d", len(samples), e.frameSize*e.channels)
	}

	n, err := e.encoder.Encode(samples, e.packet)
	if err != nil {
		return nil, fmt.Errorf("opus encode error: %w", err)
	}

	out := make([]byte, n)
	copy(out, e.packet[:n])
	return out, nil
}

// SetBitrate sets the target bitrate in bits per second
func (e *OpusEncoder) SetBitrate(bitrate int) error {
	if err := e.encoder.SetBitrate(bitrate); err != nil {
		return fmt.Errorf("failed to set opus bitrate: %w", err)
	}
	return nil
}

// Close releases resources
func (e *OpusEncoder) Close() error {
	return nil
}
