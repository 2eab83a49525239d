// ABOUTME: Tests for streaming resampler
// ABOUTME: Tests interpolation, chunk invariance, phase bounds and idle calls
package resample

import (
	"math"
	"math/rand"
	"testing"
)

// testSignal returns a deterministic two-tone waveform in [-1, 1]
func testSignal(n, rate int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		t := float64(i) / float64(rate)
		samples[i] = float32(0.6*math.Sin(2*math.Pi*440*t) + 0.3*math.Sin(2*math.Pi*1250*t))
	}
	return samples
}

// resampleChunked feeds input in blocks of the given sizes (cycled) and
// returns the concatenated output
func resampleChunked(r *Resampler, input []float32, sizes []int) []float32 {
	var out []float32
	for i, pos := 0, 0; pos < len(input); i++ {
		size := sizes[i%len(sizes)]
		end := pos + size
		if end > len(input) {
			end = len(input)
		}
		out = r.Process(input[pos:end], out)
		pos = end
	}
	return out
}

func TestNew(t *testing.T) {
	r := New(48000, 16000)

	if r == nil {
		t.Fatal("expected resampler to be created")
	}
	if r.InputRate() != 48000 {
		t.Errorf("expected inputRate 48000, got %d", r.InputRate())
	}
	if r.OutputRate() != 16000 {
		t.Errorf("expected outputRate 16000, got %d", r.OutputRate())
	}
	if r.Ratio() != 3 {
		t.Errorf("expected ratio 3, got %v", r.Ratio())
	}
	if r.Phase() != 0 || r.Pending() != 0 {
		t.Errorf("expected zero initial state, got phase %v pending %d", r.Phase(), r.Pending())
	}
}

func TestProcessEmptyBlock(t *testing.T) {
	r := New(48000, 16000)
	r.Process(testSignal(100, 48000), nil)

	phase, pending := r.Phase(), r.Pending()
	out := r.Process(nil, nil)
	out = r.Process([]float32{}, out)

	if len(out) != 0 {
		t.Errorf("expected no output from empty blocks, got %d samples", len(out))
	}
	if r.Phase() != phase || r.Pending() != pending {
		t.Errorf("empty block changed state: phase %v -> %v, pending %d -> %d",
			phase, r.Phase(), pending, r.Pending())
	}
}

func TestProcessSingleSample(t *testing.T) {
	r := New(48000, 16000)

	out := r.Process([]float32{0.5}, nil)
	if len(out) != 0 {
		t.Fatalf("expected no output from a single first sample, got %d", len(out))
	}
	if r.Pending() != 1 {
		t.Errorf("expected the sample to be retained, pending %d", r.Pending())
	}

	// The second sample completes the first interpolation pair
	out = r.Process([]float32{1.0}, out)
	if len(out) != 1 || out[0] != 0.5 {
		t.Fatalf("expected [0.5], got %v", out)
	}
}

func TestProcessRamp(t *testing.T) {
	// Linear interpolation reproduces a ramp exactly (up to float rounding)
	tests := []struct {
		name       string
		inputRate  int
		outputRate int
	}{
		{"downsample 3x", 48000, 16000},
		{"downsample fractional", 44100, 16000},
		{"same rate", 16000, 16000},
		{"upsample 2x", 8000, 16000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.inputRate, tt.outputRate)
			input := make([]float32, 1000)
			for i := range input {
				input[i] = float32(i) / 1000
			}

			out := resampleChunked(r, input, []int{37})
			if len(out) == 0 {
				t.Fatal("resampler produced no output")
			}
			for k, y := range out {
				expected := float64(k) * r.Ratio() / 1000
				if math.Abs(float64(y)-expected) > 1e-5 {
					t.Fatalf("sample %d: expected %v, got %v", k, expected, y)
				}
			}
		})
	}
}

func TestChunkInvariance(t *testing.T) {
	rates := []struct {
		name       string
		inputRate  int
		outputRate int
	}{
		{"48k to 16k", 48000, 16000},
		{"44.1k to 16k", 44100, 16000},
		{"96k to 16k", 96000, 16000},
		{"22.05k to 16k", 22050, 16000},
		{"16k to 16k", 16000, 16000},
		{"8k to 16k", 8000, 16000},
		{"44.1k to 48k", 44100, 48000},
	}

	rng := rand.New(rand.NewSource(7))
	randomSizes := make([]int, 64)
	for i := range randomSizes {
		randomSizes[i] = 1 + rng.Intn(300)
	}

	partitions := []struct {
		name  string
		sizes []int
	}{
		{"single samples", []int{1}},
		{"128 blocks", []int{128}},
		{"256 blocks", []int{256}},
		{"mixed primes", []int{7, 1, 13, 2, 331}},
		{"random", randomSizes},
	}

	for _, rate := range rates {
		input := testSignal(4000, rate.inputRate)
		reference := New(rate.inputRate, rate.outputRate).Process(input, nil)

		for _, part := range partitions {
			t.Run(rate.name+"/"+part.name, func(t *testing.T) {
				out := resampleChunked(New(rate.inputRate, rate.outputRate), input, part.sizes)

				if len(out) != len(reference) {
					t.Fatalf("expected %d samples, got %d", len(reference), len(out))
				}
				for i := range reference {
					if diff := math.Abs(float64(out[i] - reference[i])); diff > 1e-5 {
						t.Fatalf("sample %d: expected %v, got %v (diff %g)", i, reference[i], out[i], diff)
					}
				}
			})
		}
	}
}

func TestPhaseBounds(t *testing.T) {
	tests := []struct {
		name       string
		inputRate  int
		outputRate int
	}{
		{"downsample", 48000, 16000},
		{"fractional", 44100, 16000},
		{"upsample", 8000, 16000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.inputRate, tt.outputRate)
			input := testSignal(2000, tt.inputRate)
			sizes := []int{1, 2, 3, 5, 128}

			for i, pos := 0, 0; pos < len(input); i++ {
				end := pos + sizes[i%len(sizes)]
				if end > len(input) {
					end = len(input)
				}
				r.Process(input[pos:end], nil)
				pos = end

				if r.Phase() < 0 || r.Phase() >= r.Ratio() {
					t.Fatalf("phase %v out of [0, %v)", r.Phase(), r.Ratio())
				}
				if r.Pending() != 1 {
					t.Fatalf("expected a one-sample tail, got %d", r.Pending())
				}
			}
		})
	}
}

func TestSampleConservation(t *testing.T) {
	r := New(48000, 16000)
	block := testSignal(128, 48000)

	const blocks = 1000
	total := 0
	out := make([]float32, 0, 64)
	for i := 0; i < blocks; i++ {
		out = r.Process(block, out[:0])
		total += len(out)
	}

	expected := int(math.Floor(float64(blocks*len(block)) / r.Ratio()))
	if diff := total - expected; diff < -1 || diff > 1 {
		t.Errorf("expected ~%d output samples, got %d", expected, total)
	}
}

func TestReset(t *testing.T) {
	r := New(44100, 16000)
	input := testSignal(500, 44100)
	first := r.Process(input, nil)

	r.Reset()
	if r.Phase() != 0 || r.Pending() != 0 {
		t.Fatalf("expected cleared state, got phase %v pending %d", r.Phase(), r.Pending())
	}

	second := r.Process(input, nil)
	if len(first) != len(second) {
		t.Fatalf("expected identical output after reset, got %d vs %d samples", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs after reset: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestOutputSamplesNeeded(t *testing.T) {
	r := New(48000, 16000)
	if n := r.OutputSamplesNeeded(960); n != 320 {
		t.Errorf("expected 320, got %d", n)
	}
	if n := r.InputSamplesNeeded(320); n != 960 {
		t.Errorf("expected 960, got %d", n)
	}
}
