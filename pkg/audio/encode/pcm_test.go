// ABOUTME: Unit tests for PCM quantizer and encoder
// ABOUTME: Tests bit-exact quantization boundaries and little-endian packing
package encode

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/Sendspin/sendspin-capture/pkg/audio"
)

func TestQuantize(t *testing.T) {
	frame := []float32{0, 1.0, -1.0, 1.5, -1.5, 0.5, -0.5, 0.25}
	expected := []int16{0, 32767, -32768, 32767, -32768, 16384, -16384, 8192}

	result := Quantize(nil, frame)
	if len(result) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(result))
	}
	for i := range expected {
		if result[i] != expected[i] {
			t.Errorf("sample %d (%v): expected %d, got %d", i, frame[i], expected[i], result[i])
		}
	}
}

func TestQuantizeClampMatchesFullScale(t *testing.T) {
	out := Quantize(nil, []float32{1.0, 1.5, -1.0, -1.5})
	if out[0] != out[1] {
		t.Errorf("1.5 should clamp to the same value as 1.0: %d vs %d", out[1], out[0])
	}
	if out[2] != out[3] {
		t.Errorf("-1.5 should clamp to the same value as -1.0: %d vs %d", out[3], out[2])
	}
}

func TestQuantizeReusesBuffer(t *testing.T) {
	dst := make([]int16, 0, 4)
	out := Quantize(dst, []float32{0.1, 0.2})
	if len(out) != 2 || &out[0] != &dst[:1][0] {
		t.Error("expected the destination buffer to be reused")
	}
}

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name        string
		format      audio.Format
		wantErr     bool
		errContains string
	}{
		{
			name: "valid 16-bit PCM",
			format: audio.Format{
				Codec:      "pcm",
				SampleRate: 16000,
				Channels:   1,
				BitDepth:   16,
			},
			wantErr: false,
		},
		{
			name: "invalid codec",
			format: audio.Format{
				Codec:      "opus",
				SampleRate: 16000,
				Channels:   1,
				BitDepth:   16,
			},
			wantErr:     true,
			errContains: "invalid codec",
		},
		{
			name: "unsupported bit depth",
			format: audio.Format{
				Codec:      "pcm",
				SampleRate: 16000,
				Channels:   1,
				BitDepth:   24,
			},
			wantErr:     true,
			errContains: "unsupported bit depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder, err := NewPCM(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewPCM() expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewPCM() error = %v, want error containing %v", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("NewPCM() unexpected error = %v", err)
			}
			if encoder == nil {
				t.Errorf("NewPCM() returned nil encoder")
			}
		})
	}
}

func TestPCMEncoder_Encode(t *testing.T) {
	encoder, err := NewPCM(audio.Format{Codec: "pcm", SampleRate: 16000, Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}
	defer encoder.Close()

	samples := []int16{0, 32767, -32768, 0x1234, -2}

	output, err := encoder.Encode(samples)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	if len(output) != len(samples)*2 {
		t.Fatalf("Encode() output size = %d, want %d", len(output), len(samples)*2)
	}

	for i, expected := range samples {
		actual := int16(binary.LittleEndian.Uint16(output[i*2:]))
		if actual != expected {
			t.Errorf("Sample %d: got %d, want %d", i, actual, expected)
		}
	}
}
