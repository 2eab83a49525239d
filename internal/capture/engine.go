// ABOUTME: Block scheduler for the capture pipeline
// ABOUTME: Paces source reads and processor callbacks in realtime or offline
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sendspin/sendspin-capture/pkg/audio/decode"
	"github.com/Sendspin/sendspin-capture/pkg/frontend"
)

// DefaultBlockSize matches the render quantum of common audio hosts
const DefaultBlockSize = 128

// Config controls engine pacing
type Config struct {
	// BlockSize is the number of native samples per channel per callback
	BlockSize int
	// Realtime paces callbacks at BlockSize/SampleRate; otherwise the
	// source is drained as fast as possible
	Realtime bool
	// Debug enables periodic [DEBUG] logging
	Debug bool
}

// Engine schedules a processor against a source
type Engine struct {
	config    Config
	source    decode.Source
	processor frontend.Processor

	buffers [][]float32
	block   [][]float32 // per-callback views into buffers
	blocks  atomic.Uint64
	samples atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

// NewEngine creates an engine. BlockSize defaults to DefaultBlockSize.
func NewEngine(config Config, source decode.Source, processor frontend.Processor) *Engine {
	if config.BlockSize <= 0 {
		config.BlockSize = DefaultBlockSize
	}

	buffers := make([][]float32, source.Channels())
	for i := range buffers {
		buffers[i] = make([]float32, config.BlockSize)
	}

	return &Engine{
		config:    config,
		source:    source,
		processor: processor,
		buffers:   buffers,
		block:     make([][]float32, len(buffers)),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// BlockInterval returns the realtime duration of one block
func (e *Engine) BlockInterval() time.Duration {
	return time.Duration(e.config.BlockSize) * time.Second / time.Duration(e.source.SampleRate())
}

// Run drives the processor until the source ends, the processor asks to
// stop, Stop is called or ctx is cancelled. Source exhaustion returns nil.
// The processor is only called from the goroutine running Run.
func (e *Engine) Run(ctx context.Context) error {
	defer e.doneOnce.Do(func() { close(e.done) })

	log.Printf("Capture engine starting: %dHz, %d channels, block %d (realtime=%v)",
		e.source.SampleRate(), e.source.Channels(), e.config.BlockSize, e.config.Realtime)

	if !e.config.Realtime {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.stopChan:
				return nil
			default:
			}

			done, err := e.step()
			if done || err != nil {
				return err
			}
		}
	}

	ticker := time.NewTicker(e.BlockInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			done, err := e.step()
			if done || err != nil {
				return err
			}
		case <-ctx.Done():
			log.Printf("Capture engine stopping")
			return ctx.Err()
		case <-e.stopChan:
			log.Printf("Capture engine stopping")
			return nil
		}
	}
}

// step reads and processes one block. done reports a clean end of stream.
func (e *Engine) step() (done bool, err error) {
	n, err := e.source.ReadBlock(e.buffers)
	if n > 0 {
		for i, buf := range e.buffers {
			e.block[i] = buf[:n]
		}

		keepAlive := e.processor.Process(e.block)
		blocks := e.blocks.Add(1)
		e.samples.Add(uint64(n))

		if e.config.Debug && blocks%1000 == 0 {
			log.Printf("[DEBUG] Capture engine: %d blocks, %d samples", blocks, e.samples.Load())
		}

		if !keepAlive {
			log.Printf("Processor requested stop after %d blocks", blocks)
			return true, nil
		}
	}

	if errors.Is(err, io.EOF) {
		log.Printf("Capture source ended after %d samples", e.samples.Load())
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to read source: %w", err)
	}
	return false, nil
}

// Stop stops the engine
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
	})
}

// Done is closed once Run has returned. After that the processor is no
// longer called and may be closed from any goroutine.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Shutdown stops the engine and waits for a running Run to return.
// It must only be called after Run has been started.
func (e *Engine) Shutdown() {
	e.Stop()
	<-e.done
}

// Blocks returns the number of blocks processed
func (e *Engine) Blocks() uint64 {
	return e.blocks.Load()
}

// Samples returns the number of native samples per channel processed
func (e *Engine) Samples() uint64 {
	return e.samples.Load()
}
