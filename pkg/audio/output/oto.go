// ABOUTME: Oto-based audio output implementation
// ABOUTME: Handles PCM16 playback with software volume control using oto library
package output

import (
	"fmt"
	"io"
	"log"
	"math"
	"sync"

	"github.com/Sendspin/sendspin-capture/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library
type Oto struct {
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	channels   int

	mu     sync.Mutex
	volume int
	muted  bool
	ready  bool
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{
		volume: 100,
	}
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	if o.otoCtx != nil {
		if o.sampleRate != sampleRate || o.channels != channels {
			// oto allows one context per process
			log.Printf("Warning: format change (%dHz %dch -> %dHz %dch) not supported by oto, keeping existing context",
				o.sampleRate, o.channels, sampleRate, channels)
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels

	// Persistent player fed through a pipe
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()

	o.mu.Lock()
	o.ready = true
	o.mu.Unlock()

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)

	return nil
}

// Write outputs audio samples (blocks until the player reads them)
func (o *Oto) Write(samples []int16) error {
	o.mu.Lock()
	ready, volume, muted := o.ready, o.volume, o.muted
	o.mu.Unlock()

	if !ready {
		return fmt.Errorf("output not initialized")
	}

	scaled := applyVolume(samples, volume, muted)
	data := make([]byte, len(scaled)*audio.BytesPerSample16)
	audio.PutInt16LE(data, scaled)

	if _, err := o.pipeWriter.Write(data); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	o.ready = false
	o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
	}
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volume = clampVolume(volume)
	log.Printf("Volume set to %d", o.volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.muted = muted
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (o *Oto) GetVolume() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}

// applyVolume scales samples into a new slice, clipping to the int16 range
func applyVolume(samples []int16, volume int, muted bool) []int16 {
	result := make([]int16, len(samples))
	if muted || volume <= 0 {
		return result
	}
	if volume >= 100 {
		copy(result, samples)
		return result
	}

	multiplier := float64(volume) / 100.0
	for i, s := range samples {
		scaled := math.Round(float64(s) * multiplier)
		if scaled > math.MaxInt16 {
			scaled = math.MaxInt16
		} else if scaled < math.MinInt16 {
			scaled = math.MinInt16
		}
		result[i] = int16(scaled)
	}
	return result
}
