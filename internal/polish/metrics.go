package polish

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of a polishing run on a private registry, so
// several runs in one process (tests included) never collide.
type Metrics struct {
	registry *prometheus.Registry

	settingsApplied  *prometheus.CounterVec
	settingsRejected *prometheus.CounterVec
	settingsFailed   *prometheus.CounterVec
	diskRetries      prometheus.Counter
	polishDuration   prometheus.Histogram
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		settingsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fittings",
				Name:      "settings_applied_total",
				Help:      "Total number of settings applied by setting",
			},
			[]string{"setting"},
		),
		settingsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fittings",
				Name:      "settings_rejected_total",
				Help:      "Total number of declared values rejected by validation by setting",
			},
			[]string{"setting"},
		),
		settingsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fittings",
				Name:      "settings_failed_total",
				Help:      "Total number of settings the control plane failed to apply by setting",
			},
			[]string{"setting"},
		),
		diskRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "fittings",
				Name:      "disk_attach_retries_total",
				Help:      "Total number of disk attachments retried because the node was busy",
			},
		),
		polishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "fittings",
				Name:      "node_polish_duration_seconds",
				Help:      "Duration of polishing one node in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
			},
		),
	}

	m.registry.MustRegister(
		m.settingsApplied,
		m.settingsRejected,
		m.settingsFailed,
		m.diskRetries,
		m.polishDuration,
	)
	return m
}

// WriteTextfile writes every metric in Prometheus text format, for the node
// exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func (m *Metrics) recordApplied(setting string) {
	m.settingsApplied.WithLabelValues(setting).Inc()
}

func (m *Metrics) recordRejected(setting string, n int) {
	if n > 0 {
		m.settingsRejected.WithLabelValues(setting).Add(float64(n))
	}
}

func (m *Metrics) recordFailed(setting string) {
	m.settingsFailed.WithLabelValues(setting).Inc()
}

func (m *Metrics) recordDiskRetry() {
	m.diskRetries.Inc()
}

func (m *Metrics) recordPolishDuration(seconds float64) {
	m.polishDuration.Observe(seconds)
}
