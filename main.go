// ABOUTME: Entry point for the Sendspin capture server
// ABOUTME: Wires source, engine, encoder, queue and websocket server from flags and YAML
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sendspin/sendspin-capture/internal/capture"
	"github.com/Sendspin/sendspin-capture/internal/config"
	"github.com/Sendspin/sendspin-capture/internal/server"
	"github.com/Sendspin/sendspin-capture/internal/version"
	"github.com/Sendspin/sendspin-capture/pkg/audio/decode"
	"github.com/Sendspin/sendspin-capture/pkg/audio/output"
	"github.com/Sendspin/sendspin-capture/pkg/frontend"
	"github.com/Sendspin/sendspin-capture/pkg/sink"
)

var configPath = flag.String("config", "", "YAML config file (flags set on the command line override it)")

func main() {
	flagCfg := config.Default()
	config.RegisterFlags(flag.CommandLine, flagCfg)
	flag.Parse()

	cfg := flagCfg
	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		config.ApplyFlags(fileCfg, flag.CommandLine, flagCfg)
		cfg = fileCfg
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	f, err := os.OpenFile(cfg.Server.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	if cfg.Server.TUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s %s: %s on port %d", version.Product, version.Version, cfg.Server.Name, cfg.Server.Port)
	if cfg.Server.Debug {
		log.Printf("Debug logging enabled")
	}
	log.Printf("Logging to: %s", cfg.Server.LogFile)

	if err := run(cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Printf("Server stopped")
}

func run(cfg *config.Config) error {
	src, err := openSource(cfg.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	title, artist, album := src.Metadata()
	log.Printf("Capture source: %s (%dHz, %d channels)", title, src.SampleRate(), src.Channels())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := sink.NewQueue(cfg.Server.QueueSize)
	var frameSink frontend.Sink = queue
	var monitorQueue *sink.Queue

	if cfg.Monitor.Enabled {
		monitorQueue = sink.NewQueue(cfg.Server.QueueSize)
		frameSink = sink.NewFanout(queue, monitorQueue)
	}

	registry := frontend.NewRegistry()
	frontend.RegisterBuiltins(registry)

	encCfg := cfg.FrontendConfig(src.SampleRate())
	proc, err := registry.Create(cfg.Encoder.Processor, encCfg, frameSink)
	if err != nil {
		return fmt.Errorf("failed to create processor: %w", err)
	}

	var stats server.StatsSource
	if enc, ok := proc.(*frontend.Encoder); ok {
		stats = enc
		encCfg = enc.Config()
	} else {
		encCfg, _ = encCfg.Normalize()
	}

	if monitorQueue != nil {
		out := output.NewOto()
		if err := out.Open(encCfg.TargetRate, 1); err != nil {
			log.Printf("Warning: monitor output unavailable: %v", err)
		} else {
			out.SetVolume(cfg.Monitor.Volume)
			defer out.Close()
			go output.Play(ctx, out, monitorQueue.Frames())
		}
	}

	srv := server.New(server.Config{
		Port:         cfg.Server.Port,
		Path:         cfg.Server.Path,
		Name:         cfg.Server.Name,
		EnableMDNS:   cfg.Server.MDNS,
		Debug:        cfg.Server.Debug,
		UseTUI:       cfg.Server.TUI,
		Codec:        cfg.Encoder.Codec,
		OpusBitrate:  cfg.Encoder.OpusBitrate,
		ClientBuffer: cfg.Server.ClientBuffer,
		Format:       encCfg,
		Title:        title,
		Artist:       artist,
		Album:        album,
	}, queue, stats)

	engine := capture.NewEngine(capture.Config{
		BlockSize: cfg.Source.BlockSize,
		Realtime:  !cfg.Source.Offline,
		Debug:     cfg.Server.Debug,
	}, src, proc)

	go func() {
		if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Capture engine error: %v", err)
		}
		queue.Close()
		if monitorQueue != nil {
			monitorQueue.Close()
		}
		log.Printf("Capture finished after %d blocks; serving until stopped", engine.Blocks())
	}()
	defer shutdownPipeline(cancel, engine, proc)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		cancel()
		srv.Stop()
	}()

	return srv.Start()
}

// shutdownPipeline stops the engine and waits for its last Process call
// before closing the processor, keeping the processor single-writer.
func shutdownPipeline(cancel context.CancelFunc, engine *capture.Engine, proc frontend.Processor) {
	cancel()
	engine.Shutdown()

	if closer, ok := proc.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Printf("Warning: failed to close processor: %v", err)
		}
	}
}

// openSource opens the configured file, or a test tone when none is set
func openSource(cfg config.SourceConfig) (decode.Source, error) {
	if cfg.File == "" {
		duration := uint64(cfg.ToneSeconds) * uint64(cfg.SampleRate)
		return decode.NewTestTone(cfg.SampleRate, cfg.Channels, duration), nil
	}

	src, err := decode.Open(cfg.File, cfg.SampleRate, cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	return src, nil
}
