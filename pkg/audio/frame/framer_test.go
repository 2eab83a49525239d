// ABOUTME: Tests for output framer
// ABOUTME: Tests frame sizes, FIFO order, remainders and defaults
package frame

import "testing"

func ramp(start, n int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(start + i)
	}
	return samples
}

func TestDefaultSize(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		expected   int
	}{
		{"16kHz", 16000, 320},
		{"8kHz", 8000, 160},
		{"48kHz", 48000, 960},
		{"22.05kHz rounds", 22050, 441},
		{"11.025kHz rounds half up", 11025, 221}, // 220.5
		{"zero clamps", 0, MinSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultSize(tt.sampleRate); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestNewClampsSize(t *testing.T) {
	for _, size := range []int{0, -5} {
		if f := New(size); f.Size() != MinSize {
			t.Errorf("New(%d): expected size %d, got %d", size, MinSize, f.Size())
		}
	}
}

func TestDrainFrameSizes(t *testing.T) {
	tests := []struct {
		name           string
		size           int
		writes         []int
		expectedFrames int
		expectedLeft   int
	}{
		{"below one frame", 320, []int{100, 100}, 0, 200},
		{"exactly one frame", 320, []int{320}, 1, 0},
		{"many frames in one write", 4, []int{17}, 4, 1},
		{"frames across writes", 5, []int{3, 3, 3, 3}, 2, 2},
		{"single sample frames", 1, []int{3, 2}, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.size)
			frames := 0
			next := 0
			for _, n := range tt.writes {
				f.Write(ramp(next, n))
				next += n
				frames += f.Drain(func(frame []float32) {
					if len(frame) != tt.size {
						t.Fatalf("expected frame of %d samples, got %d", tt.size, len(frame))
					}
				})
			}

			if frames != tt.expectedFrames {
				t.Errorf("expected %d frames, got %d", tt.expectedFrames, frames)
			}
			if f.Buffered() != tt.expectedLeft {
				t.Errorf("expected %d buffered samples, got %d", tt.expectedLeft, f.Buffered())
			}
		})
	}
}

func TestDrainOrder(t *testing.T) {
	f := New(3)
	var got []float32
	collect := func(frame []float32) {
		got = append(got, frame...)
	}

	f.Write(ramp(0, 4))
	f.Drain(collect)
	f.Write(ramp(4, 1))
	f.Drain(collect)
	f.Write(ramp(5, 7))
	f.Drain(collect)

	if len(got) != 12 {
		t.Fatalf("expected 12 framed samples, got %d", len(got))
	}
	for i, v := range got {
		if v != float32(i) {
			t.Fatalf("sample %d: expected %d, got %v", i, i, v)
		}
	}
}

func TestDrainEmpty(t *testing.T) {
	f := New(320)
	called := false
	if n := f.Drain(func([]float32) { called = true }); n != 0 || called {
		t.Error("expected no frames from an empty framer")
	}
	f.Write(nil)
	if f.Buffered() != 0 {
		t.Errorf("expected nothing buffered, got %d", f.Buffered())
	}
}

func TestReset(t *testing.T) {
	f := New(10)
	f.Write(ramp(0, 7))
	f.Reset()
	if f.Buffered() != 0 {
		t.Fatalf("expected partial frame to be discarded, got %d buffered", f.Buffered())
	}

	f.Write(ramp(100, 10))
	var first float32
	f.Drain(func(frame []float32) { first = frame[0] })
	if first != 100 {
		t.Errorf("expected frame to start after reset data, got %v", first)
	}
}
