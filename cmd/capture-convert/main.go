// ABOUTME: Offline converter from audio files to raw PCM16 frames
// ABOUTME: Runs the capture encoder as fast as possible and writes s16le output
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Sendspin/sendspin-capture/internal/capture"
	"github.com/Sendspin/sendspin-capture/pkg/audio/decode"
	"github.com/Sendspin/sendspin-capture/pkg/frontend"
	"github.com/Sendspin/sendspin-capture/pkg/sink"
)

var (
	inPath      = flag.String("in", "", "Input file (MP3, FLAC, raw s16le); empty converts a test tone")
	outPath     = flag.String("out", "capture.s16le", "Output raw PCM file (mono s16le)")
	targetRate  = flag.Int("rate", frontend.DefaultTargetRate, "Target sample rate")
	frameSize   = flag.Int("frame", 0, "Frame size in samples (0 = 20ms)")
	nativeRate  = flag.Int("native-rate", 48000, "Sample rate of raw input or the test tone")
	channels    = flag.Int("channels", 2, "Channel count of raw input or the test tone")
	blockSize   = flag.Int("block", capture.DefaultBlockSize, "Native samples per processing block")
	toneSeconds = flag.Int("tone-seconds", 5, "Test tone length when no input is given")
)

func main() {
	flag.Parse()

	if err := convert(); err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}
}

func convert() error {
	var src decode.Source
	if *inPath == "" {
		src = decode.NewTestTone(*nativeRate, *channels, uint64(*toneSeconds)*uint64(*nativeRate))
	} else {
		var err error
		src, err = decode.Open(*inPath, *nativeRate, *channels)
		if err != nil {
			return err
		}
	}
	defer src.Close()

	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	start := time.Now()
	stats, written, err := encodeTo(src, f, frontend.Config{
		NativeRate: src.SampleRate(),
		TargetRate: *targetRate,
		FrameSize:  *frameSize,
	}, *blockSize)
	if err != nil {
		return err
	}

	log.Printf("Wrote %d frames (%d bytes) to %s in %v",
		stats.Frames, written, *outPath, time.Since(start).Round(time.Millisecond))
	return nil
}

// encodeTo runs src through a fresh encoder into out and closes out.
// Write, encoder and close failures are all reported.
func encodeTo(src decode.Source, out io.WriteCloser, cfg frontend.Config, blockSize int) (stats frontend.Stats, written int64, err error) {
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	w, err := sink.NewWriter(out)
	if err != nil {
		return stats, 0, err
	}

	enc, err := frontend.New(cfg, w)
	if err != nil {
		return stats, 0, fmt.Errorf("failed to create encoder: %w", err)
	}

	cfg = enc.Config()
	title, _, _ := src.Metadata()
	log.Printf("Converting %s: %dHz %dch -> %dHz mono, %d-sample frames",
		title, src.SampleRate(), src.Channels(), cfg.TargetRate, cfg.FrameSize)

	engine := capture.NewEngine(capture.Config{BlockSize: blockSize}, src, enc)
	if err := engine.Run(context.Background()); err != nil {
		return enc.Stats(), w.BytesWritten(), err
	}

	stats = enc.Stats()
	if err := enc.Close(); err != nil {
		return stats, w.BytesWritten(), fmt.Errorf("failed to close encoder: %w", err)
	}
	if err := w.Close(); err != nil {
		return stats, w.BytesWritten(), err
	}

	return stats, w.BytesWritten(), nil
}
