// ABOUTME: Tests for capture server metrics
// ABOUTME: Scrapes the handler and checks exported values
package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sendspin/sendspin-capture/pkg/frontend"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return string(body)
}

func TestObserveEncoderDeltas(t *testing.T) {
	m := New()
	m.ObserveEncoder(frontend.Stats{InputSamples: 960, ResampledSamples: 320, Frames: 1, Phase: 2})
	m.ObserveEncoder(frontend.Stats{InputSamples: 1920, ResampledSamples: 640, Frames: 2, Phase: 1, BufferedSamples: 5})

	body := scrape(t, m)
	for _, line := range []string{
		"capture_input_samples_total 1920",
		"capture_resampled_samples_total 640",
		"capture_frames_emitted_total 2",
		"capture_resample_phase 1",
		"capture_buffered_samples 5",
	} {
		if !strings.Contains(body, line) {
			t.Errorf("missing %q in scrape", line)
		}
	}
}

func TestObserveQueueAndClients(t *testing.T) {
	m := New()
	m.ObserveQueue(3, 2)
	m.ObserveQueue(1, 5)
	m.RecordClientDrop()
	m.RecordFrameSent(657)
	m.SetConnectedClients(2)

	body := scrape(t, m)
	for _, line := range []string{
		`capture_frames_dropped_total{stage="queue"} 5`,
		`capture_frames_dropped_total{stage="client"} 1`,
		"capture_queue_depth 1",
		"capture_frames_sent_total 1",
		"capture_bytes_sent_total 657",
		"capture_connected_clients 2",
	} {
		if !strings.Contains(body, line) {
			t.Errorf("missing %q in scrape", line)
		}
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		current, last uint64
		want          float64
	}{
		{10, 4, 6},
		{4, 4, 0},
		{3, 10, 3},
	}
	for _, tt := range tests {
		if got := delta(tt.current, tt.last); got != tt.want {
			t.Errorf("delta(%d, %d) = %v, want %v", tt.current, tt.last, got, tt.want)
		}
	}
}
