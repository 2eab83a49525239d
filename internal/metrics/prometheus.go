// ABOUTME: Prometheus metrics for the capture server
// ABOUTME: Tracks frame flow, drops and connected listeners on a dedicated registry
package metrics

import (
	"net/http"
	"sync"

	"github.com/Sendspin/sendspin-capture/pkg/frontend"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the capture server
type Metrics struct {
	registry *prometheus.Registry

	// Encoder metrics
	InputSamples     prometheus.Counter
	ResampledSamples prometheus.Counter
	FramesEmitted    prometheus.Counter
	ResamplePhase    prometheus.Gauge
	BufferedSamples  prometheus.Gauge

	// Delivery metrics
	FramesDropped    *prometheus.CounterVec
	FramesSent       prometheus.Counter
	BytesSent        prometheus.Counter
	ConnectedClients prometheus.Gauge
	QueueDepth       prometheus.Gauge

	mu         sync.Mutex
	lastStats  frontend.Stats
	lastQueued uint64
}

// New creates the metrics on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		InputSamples: factory.NewCounter(prometheus.CounterOpts{
			Name: "capture_input_samples_total",
			Help: "Total number of native-rate mono samples consumed by the encoder",
		}),
		ResampledSamples: factory.NewCounter(prometheus.CounterOpts{
			Name: "capture_resampled_samples_total",
			Help: "Total number of target-rate samples produced by the resampler",
		}),
		FramesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "capture_frames_emitted_total",
			Help: "Total number of PCM16 frames emitted by the encoder",
		}),
		ResamplePhase: factory.NewGauge(prometheus.GaugeOpts{
			Name: "capture_resample_phase",
			Help: "Fractional read position carried between resampler calls",
		}),
		BufferedSamples: factory.NewGauge(prometheus.GaugeOpts{
			Name: "capture_buffered_samples",
			Help: "Samples waiting in the framer for a full frame",
		}),

		FramesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "capture_frames_dropped_total",
			Help: "Total number of frames dropped, by stage",
		}, []string{"stage"}),
		FramesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "capture_frames_sent_total",
			Help: "Total number of frames queued to listeners",
		}),
		BytesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "capture_bytes_sent_total",
			Help: "Total number of binary frame bytes queued to listeners",
		}),
		ConnectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "capture_connected_clients",
			Help: "Current number of connected listeners",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "capture_queue_depth",
			Help: "Current number of frames waiting in the broadcast queue",
		}),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEncoder folds an encoder snapshot into the counters
func (m *Metrics) ObserveEncoder(s frontend.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InputSamples.Add(delta(s.InputSamples, m.lastStats.InputSamples))
	m.ResampledSamples.Add(delta(s.ResampledSamples, m.lastStats.ResampledSamples))
	m.FramesEmitted.Add(delta(s.Frames, m.lastStats.Frames))
	m.ResamplePhase.Set(s.Phase)
	m.BufferedSamples.Set(float64(s.BufferedSamples))
	m.lastStats = s
}

// ObserveQueue records the broadcast queue depth and its cumulative drop count
func (m *Metrics) ObserveQueue(depth int, dropped uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueueDepth.Set(float64(depth))
	m.FramesDropped.WithLabelValues("queue").Add(delta(dropped, m.lastQueued))
	m.lastQueued = dropped
}

// RecordClientDrop increments the per-client drop counter
func (m *Metrics) RecordClientDrop() {
	m.FramesDropped.WithLabelValues("client").Inc()
}

// RecordFrameSent records one frame queued to a listener
func (m *Metrics) RecordFrameSent(bytes int) {
	m.FramesSent.Inc()
	m.BytesSent.Add(float64(bytes))
}

// SetConnectedClients sets the current number of connected listeners
func (m *Metrics) SetConnectedClients(count int) {
	m.ConnectedClients.Set(float64(count))
}

// delta returns the growth of a cumulative counter. A reset counter counts from zero.
func delta(current, last uint64) float64 {
	if current < last {
		return float64(current)
	}
	return float64(current - last)
}
