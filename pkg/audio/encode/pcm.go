// ABOUTME: PCM16 frame quantizer and encoder
// ABOUTME: Converts float frames to int16 and int16 frames to little-endian bytes
package encode

import (
	"fmt"

	"github.com/Sendspin/sendspin-capture/pkg/audio"
)

// Quantize converts a frame of float samples to int16 using
// audio.FloatToInt16 (clamp, asymmetric scale, round half away from zero).
// The result is written into dst, which is grown when too small.
func Quantize(dst []int16, frame []float32) []int16 {
	if cap(dst) < len(frame) {
		dst = make([]int16, len(frame))
	}
	dst = dst[:len(frame)]
	for i, s := range frame {
		dst[i] = audio.FloatToInt16(s)
	}
	return dst
}

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth int
}

// NewPCM creates a new PCM encoder
func NewPCM(format audio.Format) (Encoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM encoder: %s", format.Codec)
	}

	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	return &PCMEncoder{
		bitDepth: format.BitDepth,
	}, nil
}

// Encode converts int16 samples to little-endian PCM bytes
func (e *PCMEncoder) Encode(samples []int16) ([]byte, error) {
	output := make([]byte, len(samples)*audio.BytesPerSample16)
	audio.PutInt16LE(output, samples)
	return output, nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}
