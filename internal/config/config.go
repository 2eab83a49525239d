// ABOUTME: Capture server configuration with YAML file support
// ABOUTME: Holds defaults, validation and command-line flag overrides
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Sendspin/sendspin-capture/internal/protocol"
	"github.com/Sendspin/sendspin-capture/pkg/frontend"
	"gopkg.in/yaml.v3"
)

// Config is the full capture server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Source  SourceConfig  `yaml:"source"`
	Encoder EncoderConfig `yaml:"encoder"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// ServerConfig controls the websocket server
type ServerConfig struct {
	Name         string `yaml:"name"`
	Port         int    `yaml:"port"`
	Path         string `yaml:"path"`
	MDNS         bool   `yaml:"mdns"`
	TUI          bool   `yaml:"tui"`
	Debug        bool   `yaml:"debug"`
	LogFile      string `yaml:"log_file"`
	QueueSize    int    `yaml:"queue_size"`    // broadcast queue, frames
	ClientBuffer int    `yaml:"client_buffer"` // per-client send channel, messages
}

// SourceConfig selects the capture source
type SourceConfig struct {
	File        string `yaml:"file"` // empty selects the test tone
	SampleRate  int    `yaml:"sample_rate"`
	Channels    int    `yaml:"channels"`
	BlockSize   int    `yaml:"block_size"`
	Offline     bool   `yaml:"offline"`
	ToneSeconds int    `yaml:"tone_seconds"` // 0 runs forever
}

// EncoderConfig selects the processor and output format
type EncoderConfig struct {
	Processor   string `yaml:"processor"`
	TargetRate  int    `yaml:"target_rate"`
	FrameSize   int    `yaml:"frame_size"`
	Codec       string `yaml:"codec"` // "auto" or "pcm"
	OpusBitrate int    `yaml:"opus_bitrate"`
}

// MonitorConfig controls local playback of the encoded stream
type MonitorConfig struct {
	Enabled bool `yaml:"enabled"`
	Volume  int  `yaml:"volume"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "capture"
	}

	return &Config{
		Server: ServerConfig{
			Name:         fmt.Sprintf("%s-capture", hostname),
			Port:         8928,
			Path:         protocol.DefaultPath,
			MDNS:         true,
			TUI:          true,
			LogFile:      "sendspin-capture.log",
			QueueSize:    64,
			ClientBuffer: 100,
		},
		Source: SourceConfig{
			SampleRate: 48000,
			Channels:   2,
			BlockSize:  128,
		},
		Encoder: EncoderConfig{
			Processor:  frontend.EncoderName,
			TargetRate: frontend.DefaultTargetRate,
			Codec:      "auto",
		},
		Monitor: MonitorConfig{
			Volume: 100,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the result
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates the result
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every unusable value
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Server.Path == "" || c.Server.Path[0] != '/' {
		errs = append(errs, fmt.Errorf("server.path %q must start with /", c.Server.Path))
	}
	if c.Server.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("server.queue_size must not be negative"))
	}
	if c.Server.ClientBuffer < 0 {
		errs = append(errs, fmt.Errorf("server.client_buffer must not be negative"))
	}
	if c.Source.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("source.sample_rate must not be negative"))
	}
	if c.Source.Channels < 0 || c.Source.Channels > 8 {
		errs = append(errs, fmt.Errorf("source.channels %d is out of range", c.Source.Channels))
	}
	if c.Source.BlockSize < 0 {
		errs = append(errs, fmt.Errorf("source.block_size must not be negative"))
	}
	if c.Encoder.Processor == "" {
		errs = append(errs, fmt.Errorf("encoder.processor must be set"))
	}
	switch c.Encoder.Codec {
	case "auto", protocol.CodecPCM:
	default:
		errs = append(errs, fmt.Errorf("encoder.codec %q is invalid; valid values: auto, pcm", c.Encoder.Codec))
	}
	if c.Encoder.OpusBitrate < 0 {
		errs = append(errs, fmt.Errorf("encoder.opus_bitrate must not be negative"))
	}
	if c.Monitor.Volume < 0 || c.Monitor.Volume > 100 {
		errs = append(errs, fmt.Errorf("monitor.volume %d must be 0-100", c.Monitor.Volume))
	}

	return errors.Join(errs...)
}

// FrontendConfig returns the encoder configuration for a source at nativeRate
func (c *Config) FrontendConfig(nativeRate int) frontend.Config {
	return frontend.Config{
		NativeRate: nativeRate,
		TargetRate: c.Encoder.TargetRate,
		FrameSize:  c.Encoder.FrameSize,
	}
}
