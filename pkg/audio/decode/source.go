// ABOUTME: Source interface and file-type dispatch
// ABOUTME: Opens MP3, FLAC or raw PCM files as planar float sources
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source provides planar float audio at its native sample rate
type Source interface {
	// ReadBlock fills up to len(channels[0]) samples into each channel buffer
	// and returns the number of samples per channel. It returns io.EOF once
	// the source is exhausted. len(channels) must equal Channels().
	ReadBlock(channels [][]float32) (int, error)

	// SampleRate returns the native sample rate
	SampleRate() int

	// Channels returns the number of channels
	Channels() int

	// Metadata returns title, artist, album
	Metadata() (title, artist, album string)

	// Close closes the source
	Close() error
}

// ErrChannelMismatch is returned when a block's channel count differs from the source
var ErrChannelMismatch = errors.New("decode: block channel count does not match source")

// Open opens an audio file as a Source, choosing the decoder by extension.
// Raw .pcm/.raw files carry no header, so rawRate and rawChannels describe them.
func Open(path string, rawRate, rawChannels int) (Source, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".mp3":
		return NewMP3Source(path)
	case ".flac":
		return NewFLACSource(path)
	case ".pcm", ".raw":
		if rawRate <= 0 || rawChannels <= 0 {
			return nil, fmt.Errorf("raw PCM file %s needs an explicit sample rate and channel count", path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open PCM file: %w", err)
		}
		src := NewPCMSource(f, rawRate, rawChannels)
		src.title = titleFromPath(path)
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac, .pcm, .raw)", ext)
	}
}

// checkBlock validates a block against the source channel count and returns
// the per-channel capacity
func checkBlock(channels [][]float32, want int) (int, error) {
	if len(channels) != want {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrChannelMismatch, len(channels), want)
	}
	size := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) < size {
			size = len(ch)
		}
	}
	return size, nil
}

func titleFromPath(path string) string {
	filename := filepath.Base(path)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
