// ABOUTME: Encoder configuration and normalization
// ABOUTME: Applies target rate and frame size defaults and minimums
package frontend

import (
	"errors"
	"fmt"

	"github.com/Sendspin/sendspin-capture/pkg/audio/frame"
)

const (
	DefaultTargetRate = 16000
	MinTargetRate     = 8000
)

// ErrInvalidNativeRate is returned when the host supplies no usable native rate
var ErrInvalidNativeRate = errors.New("frontend: native rate must be positive")

// Config describes one encoder session
type Config struct {
	// NativeRate is the sample rate of incoming blocks, supplied by the host
	NativeRate int
	// TargetRate is the output rate. 0 selects DefaultTargetRate; values
	// below MinTargetRate are raised to it.
	TargetRate int
	// FrameSize is the frame length in samples. 0 selects 20ms at
	// TargetRate; negative values are raised to 1.
	FrameSize int
}

// Normalize returns the config with defaults and minimums applied, and
// whether any explicitly set value had to be clamped.
func (c Config) Normalize() (Config, bool) {
	clamped := false

	if c.TargetRate == 0 {
		c.TargetRate = DefaultTargetRate
	} else if c.TargetRate < MinTargetRate {
		c.TargetRate = MinTargetRate
		clamped = true
	}

	if c.FrameSize == 0 {
		c.FrameSize = frame.DefaultSize(c.TargetRate)
	} else if c.FrameSize < frame.MinSize {
		c.FrameSize = frame.MinSize
		clamped = true
	}

	return c, clamped
}

// Validate reports configuration the encoder cannot run with
func (c Config) Validate() error {
	if c.NativeRate <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidNativeRate, c.NativeRate)
	}
	return nil
}

// FrameDurationMs returns the frame length in milliseconds
func (c Config) FrameDurationMs() float64 {
	n, _ := c.Normalize()
	return float64(n.FrameSize) * 1000 / float64(n.TargetRate)
}
