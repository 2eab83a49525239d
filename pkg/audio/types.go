// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats and float/int16 sample conversion
package audio

import "math"

const (
	// Asymmetric 16-bit scale: negative samples reach -32768, positive 32767
	ScaleNegative16 = 0x8000
	ScalePositive16 = 0x7FFF

	BytesPerSample16 = 2
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// FloatToInt16 converts a float sample in [-1, 1] to int16.
// Out-of-range input is clamped, negative values scale by 0x8000 and
// non-negative values by 0x7FFF, and the scaled value is rounded half away
// from zero. NaN maps to 0.
func FloatToInt16(s float32) int16 {
	v := float64(s)
	if v != v {
		return 0
	}
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}

	if v < 0 {
		return int16(math.Round(v * ScaleNegative16))
	}
	return int16(math.Round(v * ScalePositive16))
}

// Int16ToFloat converts an int16 sample to float using the same asymmetric
// scale as FloatToInt16, so FloatToInt16(Int16ToFloat(x)) == x.
func Int16ToFloat(s int16) float32 {
	if s < 0 {
		return float32(float64(s) / ScaleNegative16)
	}
	return float32(float64(s) / ScalePositive16)
}

// PutInt16LE writes samples as little-endian bytes into dst, which must hold
// len(samples)*2 bytes.
func PutInt16LE(dst []byte, samples []int16) {
	for i, s := range samples {
		dst[i*2] = byte(s)
		dst[i*2+1] = byte(uint16(s) >> 8)
	}
}

// Int16LE reads little-endian int16 samples from src into dst and returns
// the number of samples decoded. A trailing odd byte is ignored.
func Int16LE(dst []int16, src []byte) int {
	n := len(src) / 2
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(uint16(src[i*2]) | uint16(src[i*2+1])<<8)
	}
	return n
}
