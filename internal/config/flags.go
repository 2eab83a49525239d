// ABOUTME: Command-line flag binding for the capture configuration
// ABOUTME: Flags set explicitly on the command line override file values
package config

import "flag"

// flagFields copies one flag-backed field from src to dst
var flagFields = map[string]func(dst, src *Config){
	"name":         func(d, s *Config) { d.Server.Name = s.Server.Name },
	"port":         func(d, s *Config) { d.Server.Port = s.Server.Port },
	"path":         func(d, s *Config) { d.Server.Path = s.Server.Path },
	"mdns":         func(d, s *Config) { d.Server.MDNS = s.Server.MDNS },
	"tui":          func(d, s *Config) { d.Server.TUI = s.Server.TUI },
	"debug":        func(d, s *Config) { d.Server.Debug = s.Server.Debug },
	"log-file":     func(d, s *Config) { d.Server.LogFile = s.Server.LogFile },
	"queue":        func(d, s *Config) { d.Server.QueueSize = s.Server.QueueSize },
	"audio":        func(d, s *Config) { d.Source.File = s.Source.File },
	"native-rate":  func(d, s *Config) { d.Source.SampleRate = s.Source.SampleRate },
	"channels":     func(d, s *Config) { d.Source.Channels = s.Source.Channels },
	"block":        func(d, s *Config) { d.Source.BlockSize = s.Source.BlockSize },
	"offline":      func(d, s *Config) { d.Source.Offline = s.Source.Offline },
	"tone-seconds": func(d, s *Config) { d.Source.ToneSeconds = s.Source.ToneSeconds },
	"processor":    func(d, s *Config) { d.Encoder.Processor = s.Encoder.Processor },
	"rate":         func(d, s *Config) { d.Encoder.TargetRate = s.Encoder.TargetRate },
	"frame":        func(d, s *Config) { d.Encoder.FrameSize = s.Encoder.FrameSize },
	"codec":        func(d, s *Config) { d.Encoder.Codec = s.Encoder.Codec },
	"opus-bitrate": func(d, s *Config) { d.Encoder.OpusBitrate = s.Encoder.OpusBitrate },
	"monitor":      func(d, s *Config) { d.Monitor.Enabled = s.Monitor.Enabled },
	"volume":       func(d, s *Config) { d.Monitor.Volume = s.Monitor.Volume },
}

// RegisterFlags binds the configuration fields to fs, using cfg's current
// values as defaults
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Server.Name, "name", cfg.Server.Name, "Server friendly name")
	fs.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "WebSocket server port")
	fs.StringVar(&cfg.Server.Path, "path", cfg.Server.Path, "WebSocket endpoint path")
	fs.BoolVar(&cfg.Server.MDNS, "mdns", cfg.Server.MDNS, "Advertise via mDNS")
	fs.BoolVar(&cfg.Server.TUI, "tui", cfg.Server.TUI, "Show the live stats TUI")
	fs.BoolVar(&cfg.Server.Debug, "debug", cfg.Server.Debug, "Enable debug logging")
	fs.StringVar(&cfg.Server.LogFile, "log-file", cfg.Server.LogFile, "Log file path")
	fs.IntVar(&cfg.Server.QueueSize, "queue", cfg.Server.QueueSize, "Broadcast queue size in frames")
	fs.StringVar(&cfg.Source.File, "audio", cfg.Source.File, "Audio file to capture (MP3, FLAC, raw s16le); empty selects a test tone")
	fs.IntVar(&cfg.Source.SampleRate, "native-rate", cfg.Source.SampleRate, "Native rate for raw PCM and the test tone")
	fs.IntVar(&cfg.Source.Channels, "channels", cfg.Source.Channels, "Channel count for raw PCM and the test tone")
	fs.IntVar(&cfg.Source.BlockSize, "block", cfg.Source.BlockSize, "Native samples per processing block")
	fs.BoolVar(&cfg.Source.Offline, "offline", cfg.Source.Offline, "Process the source as fast as possible instead of in realtime")
	fs.IntVar(&cfg.Source.ToneSeconds, "tone-seconds", cfg.Source.ToneSeconds, "Test tone length in seconds (0 = forever)")
	fs.StringVar(&cfg.Encoder.Processor, "processor", cfg.Encoder.Processor, "Registered processor name")
	fs.IntVar(&cfg.Encoder.TargetRate, "rate", cfg.Encoder.TargetRate, "Target sample rate")
	fs.IntVar(&cfg.Encoder.FrameSize, "frame", cfg.Encoder.FrameSize, "Frame size in samples (0 = 20ms)")
	fs.StringVar(&cfg.Encoder.Codec, "codec", cfg.Encoder.Codec, "Network codec: auto (opus when supported) or pcm")
	fs.IntVar(&cfg.Encoder.OpusBitrate, "opus-bitrate", cfg.Encoder.OpusBitrate, "Opus bitrate in bits per second (0 = encoder default)")
	fs.BoolVar(&cfg.Monitor.Enabled, "monitor", cfg.Monitor.Enabled, "Play the encoded stream on the local audio device")
	fs.IntVar(&cfg.Monitor.Volume, "volume", cfg.Monitor.Volume, "Monitor volume (0-100)")
}

// ApplyFlags copies into dst every field whose flag was set explicitly on fs.
// src is the config RegisterFlags bound to fs.
func ApplyFlags(dst *Config, fs *flag.FlagSet, src *Config) {
	fs.Visit(func(f *flag.Flag) {
		if copyField, ok := flagFields[f.Name]; ok {
			copyField(dst, src)
		}
	})
}
