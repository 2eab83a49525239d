// ABOUTME: Tests for configuration loading and flag overrides
// ABOUTME: Uses YAML string literals and private flag sets
package config

import (
	"flag"
	"strings"
	"testing"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
	if cfg.Encoder.TargetRate != 16000 {
		t.Errorf("TargetRate = %d, want 16000", cfg.Encoder.TargetRate)
	}
	if cfg.Server.Path != "/capture" {
		t.Errorf("Path = %q, want /capture", cfg.Server.Path)
	}
}

func TestLoadFromReader(t *testing.T) {
	yml := `
server:
  name: studio
  port: 9000
  mdns: false
source:
  file: take1.flac
  block_size: 256
encoder:
  target_rate: 24000
  frame_size: 480
  codec: pcm
monitor:
  enabled: true
  volume: 40
`
	cfg, err := LoadFromReader(strings.NewReader(yml))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Server.Name != "studio" || cfg.Server.Port != 9000 || cfg.Server.MDNS {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Source.File != "take1.flac" || cfg.Source.BlockSize != 256 {
		t.Errorf("source = %+v", cfg.Source)
	}
	// Unset fields keep their defaults
	if cfg.Source.SampleRate != 48000 || cfg.Server.Path != "/capture" {
		t.Errorf("defaults lost: rate=%d path=%q", cfg.Source.SampleRate, cfg.Server.Path)
	}

	fc := cfg.FrontendConfig(44100)
	if fc.NativeRate != 44100 || fc.TargetRate != 24000 || fc.FrameSize != 480 {
		t.Errorf("FrontendConfig = %+v", fc)
	}
	if !cfg.Monitor.Enabled || cfg.Monitor.Volume != 40 {
		t.Errorf("monitor = %+v", cfg.Monitor)
	}
}

func TestLoadFromReaderEmpty(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty config failed: %v", err)
	}
	if cfg.Server.Port != 8928 {
		t.Errorf("Port = %d, want 8928", cfg.Server.Port)
	}
}

func TestLoadFromReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		yml  string
		want string
	}{
		{"unknown field", "server:\n  colour: red\n", "decode yaml"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad path", "server:\n  path: capture\n", "server.path"},
		{"bad codec", "encoder:\n  codec: mp3\n", "encoder.codec"},
		{"bad volume", "monitor:\n  volume: 101\n", "monitor.volume"},
		{"empty processor", "encoder:\n  processor: \"\"\n", "encoder.processor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tt.yml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/capture.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyFlagsOnlyExplicit(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flagCfg := Default()
	RegisterFlags(fs, flagCfg)

	if err := fs.Parse([]string{"-port", "9100", "-monitor", "-rate", "8000"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	fileCfg, err := LoadFromReader(strings.NewReader("server:\n  port: 9000\n  name: studio\nencoder:\n  frame_size: 100\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	ApplyFlags(fileCfg, fs, flagCfg)

	if fileCfg.Server.Port != 9100 {
		t.Errorf("Port = %d, want flag value 9100", fileCfg.Server.Port)
	}
	if fileCfg.Server.Name != "studio" {
		t.Errorf("Name = %q, want file value studio", fileCfg.Server.Name)
	}
	if fileCfg.Encoder.FrameSize != 100 {
		t.Errorf("FrameSize = %d, want file value 100", fileCfg.Encoder.FrameSize)
	}
	if !fileCfg.Monitor.Enabled || fileCfg.Encoder.TargetRate != 8000 {
		t.Errorf("flag values not applied: %+v %+v", fileCfg.Monitor, fileCfg.Encoder)
	}
}

func TestRegisterFlagsCoversFieldTable(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs, Default())

	for name := range flagFields {
		if fs.Lookup(name) == nil {
			t.Errorf("flag %q has no registration", name)
		}
	}
	fs.VisitAll(func(f *flag.Flag) {
		if _, ok := flagFields[f.Name]; !ok {
			t.Errorf("flag %q is not copied by ApplyFlags", f.Name)
		}
	})
}
