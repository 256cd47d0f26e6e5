package workers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics returns the current pool metrics.
func (p *WorkerPool) Metrics() PoolMetrics {
	p.wg.RLock()
	defer p.wg.RUnlock()
	return *p.metrics
}

func (p *WorkerPool) incrementSubmitted() {
	p.wg.Lock()
	defer p.wg.Unlock()
	p.metrics.TasksSubmitted++
}

func (p *WorkerPool) incrementCompleted() {
	p.wg.Lock()
	defer p.wg.Unlock()
	p.metrics.TasksCompleted++
}

func (p *WorkerPool) incrementFailed() {
	p.wg.Lock()
	defer p.wg.Unlock()
	p.metrics.TasksFailed++
}

func (p *WorkerPool) incrementRejected() {
	p.wg.Lock()
	defer p.wg.Unlock()
	p.metrics.TasksRejected++
}

func (p *WorkerPool) recordDuration(d time.Duration) {
	p.wg.Lock()
	defer p.wg.Unlock()
	p.metrics.TotalDuration += d
}

// RegisterMetrics exposes pool counters and queue depth as Prometheus collectors
// that read the pool state at scrape time.
func RegisterMetrics(namespace string, reg prometheus.Registerer, p *WorkerPool) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	counter := func(name, help string, read func(PoolMetrics) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(
			prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help},
			func() float64 { return float64(read(p.Metrics())) },
		)
	}

	reg.MustRegister(
		counter("worker_tasks_submitted_total", "Tasks accepted by the worker pool",
			func(m PoolMetrics) uint64 { return m.TasksSubmitted }),
		counter("worker_tasks_completed_total", "Tasks finished without error",
			func(m PoolMetrics) uint64 { return m.TasksCompleted }),
		counter("worker_tasks_failed_total", "Tasks finished with an error",
			func(m PoolMetrics) uint64 { return m.TasksFailed }),
		counter("worker_tasks_rejected_total", "Tasks not accepted (queue wait cancelled or pool stopped)",
			func(m PoolMetrics) uint64 { return m.TasksRejected }),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Name: "worker_queue_depth", Help: "Tasks waiting for a worker"},
			func() float64 { return float64(p.QueueSize()) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Name: "worker_pool_size", Help: "Number of workers"},
			func() float64 { return float64(p.WorkerCount()) },
		),
	)
}
