package cleanup

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aatumaykin/tubedrop/internal/retention"
)

// Metrics holds Prometheus collectors for the cleanup service.
type Metrics struct {
	cycles         *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	filesDeleted   prometheus.Counter
	deleteFailures prometheus.Counter
	bytesFreed     prometheus.Counter
	dirFiles       prometheus.Gauge
	dirBytes       prometheus.Gauge
	running        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cleanup_cycles_total",
				Help:      "Cleanup cycles by result (ok, partial, error)",
			},
			[]string{"result"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cleanup_cycle_duration_seconds",
				Help:      "Duration of cleanup cycles",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		filesDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cleanup_files_deleted_total",
				Help:      "Expired files removed",
			},
		),
		deleteFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cleanup_delete_failures_total",
				Help:      "Expired files that could not be removed",
			},
		),
		bytesFreed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cleanup_bytes_freed_total",
				Help:      "Bytes reclaimed by removing expired files",
			},
		),
		dirFiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "download_dir_files",
				Help:      "Regular files in the download directory after the last cycle",
			},
		),
		dirBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "download_dir_bytes",
				Help:      "Bytes in the download directory after the last cycle",
			},
		),
		running: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cleanup_running",
				Help:      "1 while the cleanup loop is running",
			},
		),
	}

	reg.MustRegister(
		m.cycles,
		m.cycleDuration,
		m.filesDeleted,
		m.deleteFailures,
		m.bytesFreed,
		m.dirFiles,
		m.dirBytes,
		m.running,
	)

	return m
}

func (m *Metrics) ObserveCycle(r Report) {
	m.cycles.WithLabelValues(r.Result()).Inc()
	m.cycleDuration.Observe(r.Duration.Seconds())
	m.filesDeleted.Add(float64(r.Deleted))
	m.deleteFailures.Add(float64(r.Failed))
	m.bytesFreed.Add(float64(r.BytesFreed))
}

func (m *Metrics) SetUsage(u retention.Usage) {
	m.dirFiles.Set(float64(u.Files))
	m.dirBytes.Set(float64(u.Bytes))
}

func (m *Metrics) SetRunning(running bool) {
	if running {
		m.running.Set(1)
		return
	}
	m.running.Set(0)
}
