// ABOUTME: Tests for the capture engine scheduler
// ABOUTME: Uses a finite tone source and a recording processor
package capture

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sendspin/sendspin-capture/pkg/audio/decode"
	"github.com/Sendspin/sendspin-capture/pkg/frontend"
)

type recordingProcessor struct {
	sizes    []int
	channels []int
	stopAt   int
}

func (p *recordingProcessor) Process(inputs [][]float32) bool {
	p.channels = append(p.channels, len(inputs))
	p.sizes = append(p.sizes, len(inputs[0]))
	return p.stopAt == 0 || len(p.sizes) < p.stopAt
}

func TestEngineOfflineDrainsSource(t *testing.T) {
	src := decode.NewTestTone(48000, 2, 1000)
	proc := &recordingProcessor{}
	eng := NewEngine(Config{}, src, proc)

	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 1000 = 7 * 128 + 104
	if len(proc.sizes) != 8 {
		t.Fatalf("got %d blocks, want 8", len(proc.sizes))
	}
	for i, n := range proc.sizes[:7] {
		if n != DefaultBlockSize {
			t.Errorf("block %d size = %d, want %d", i, n, DefaultBlockSize)
		}
	}
	if proc.sizes[7] != 104 {
		t.Errorf("last block size = %d, want 104", proc.sizes[7])
	}
	if proc.channels[0] != 2 {
		t.Errorf("channels = %d, want 2", proc.channels[0])
	}
	if eng.Samples() != 1000 || eng.Blocks() != 8 {
		t.Errorf("Samples=%d Blocks=%d, want 1000 and 8", eng.Samples(), eng.Blocks())
	}
}

func TestEngineProcessorStop(t *testing.T) {
	src := decode.NewTestTone(48000, 1, 0)
	proc := &recordingProcessor{stopAt: 3}
	eng := NewEngine(Config{BlockSize: 64}, src, proc)

	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(proc.sizes) != 3 {
		t.Errorf("got %d blocks, want 3", len(proc.sizes))
	}
}

func TestEngineRealtimeCancel(t *testing.T) {
	src := decode.NewTestTone(8000, 1, 0)
	proc := &recordingProcessor{}
	eng := NewEngine(Config{BlockSize: 80, Realtime: true}, src, proc)

	if got := eng.BlockInterval(); got != 10*time.Millisecond {
		t.Fatalf("BlockInterval() = %v, want 10ms", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := eng.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run = %v, want deadline exceeded", err)
	}
	if len(proc.sizes) == 0 {
		t.Error("no blocks processed in realtime mode")
	}
}

func TestEngineStop(t *testing.T) {
	src := decode.NewTestTone(8000, 1, 0)
	eng := NewEngine(Config{Realtime: true}, src, &recordingProcessor{})

	done := make(chan error, 1)
	go func() { done <- eng.Run(context.Background()) }()

	eng.Stop()
	eng.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run after Stop = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestEngineWithEncoder(t *testing.T) {
	var frames int
	enc, err := frontend.New(frontend.Config{NativeRate: 48000}, frontend.SinkFunc(func(frame []int16) {
		if len(frame) != 320 {
			t.Errorf("frame length %d", len(frame))
		}
		frames++
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// One second of stereo tone at 48kHz resamples to exactly 50 frames at 16kHz
	eng := NewEngine(Config{}, decode.NewTestTone(48000, 2, 48000), enc)
	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if frames != 50 {
		t.Errorf("got %d frames, want 50", frames)
	}
}

type countingProcessor struct {
	calls int
}

func (p *countingProcessor) Process(inputs [][]float32) bool {
	p.calls++
	return true
}

// blockingProcessor parks inside its first Process call until released
type blockingProcessor struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (p *blockingProcessor) Process(inputs [][]float32) bool {
	if p.calls.Add(1) == 1 {
		close(p.entered)
		<-p.release
	}
	return true
}

func TestEngineShutdownWaitsForProcess(t *testing.T) {
	proc := &blockingProcessor{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	eng := NewEngine(Config{BlockSize: 80, Realtime: true}, decode.NewTestTone(8000, 1, 0), proc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	select {
	case <-proc.entered:
	case <-time.After(time.Second):
		t.Fatal("processor never called")
	}

	cancel()
	shutdown := make(chan struct{})
	go func() {
		eng.Shutdown()
		close(shutdown)
	}()

	select {
	case <-shutdown:
		t.Fatal("Shutdown returned while Process was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(proc.release)

	select {
	case <-shutdown:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not return after Process finished")
	}

	calls := proc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := proc.calls.Load(); got != calls {
		t.Errorf("Process called %d more times after Shutdown", got-calls)
	}

	select {
	case <-eng.Done():
	default:
		t.Error("Done not closed after Shutdown")
	}
}

// Run with -race: Close after Shutdown must not overlap Process
func TestEngineCloseEncoderAfterShutdown(t *testing.T) {
	enc, err := frontend.New(frontend.Config{NativeRate: 48000}, frontend.Discard)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	eng := NewEngine(Config{Realtime: true}, decode.NewTestTone(48000, 2, 0), enc)
	go eng.Run(context.Background())

	deadline := time.After(time.Second)
	for eng.Blocks() < 5 {
		select {
		case <-deadline:
			t.Fatal("engine processed no blocks")
		case <-time.After(time.Millisecond):
		}
	}

	eng.Shutdown()
	if err := enc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	stats := enc.Stats()
	if stats.BufferedSamples != 0 || stats.PendingSource != 0 {
		t.Errorf("after Close: buffered=%d pending=%d, want 0 and 0", stats.BufferedSamples, stats.PendingSource)
	}
}

func TestEngineStepDoesNotAllocate(t *testing.T) {
	proc := &countingProcessor{}
	eng := NewEngine(Config{}, decode.NewTestTone(48000, 2, 0), proc)

	allocs := testing.AllocsPerRun(100, func() {
		if done, err := eng.step(); done || err != nil {
			t.Fatalf("step ended early: done=%v err=%v", done, err)
		}
	})
	if allocs != 0 {
		t.Errorf("step allocates %.1f times per block, want 0", allocs)
	}
	if proc.calls == 0 {
		t.Error("processor not called")
	}
}
