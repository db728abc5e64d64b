package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "stagegrid"
	subsystem = "task"
)

// Prometheus records task events as prometheus metrics.
type Prometheus struct {
	started   prometheus.Counter
	outcomes  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	queueWait prometheus.Histogram
}

// NewPrometheus creates the task metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "started_total",
			Help:      "Number of task executions started.",
		}),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "finished_total",
				Help:      "Number of task executions finished, by outcome.",
			},
			[]string{"outcome"}, // "completed", "timed_out" or "failed"
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duration_seconds",
				Help:      "Task execution time in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"outcome"},
		),
		queueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_wait_seconds",
			Help:      "Time a task waited for a worker, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
	}
	if reg != nil {
		p.MustRegister(reg)
	}
	return p
}

// MustRegister registers the metrics with reg.
func (p *Prometheus) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(p.started, p.outcomes, p.duration, p.queueWait)
}

func (p *Prometheus) TaskQueued(_ string, wait time.Duration) {
	p.queueWait.Observe(wait.Seconds())
}

func (p *Prometheus) TaskStarted(string) {
	p.started.Inc()
}

func (p *Prometheus) TaskCompleted(_ string, elapsed time.Duration) {
	p.outcomes.WithLabelValues("completed").Inc()
	p.duration.WithLabelValues("completed").Observe(elapsed.Seconds())
}

func (p *Prometheus) TaskTimedOut(_ string, elapsed time.Duration) {
	p.outcomes.WithLabelValues("timed_out").Inc()
	p.duration.WithLabelValues("timed_out").Observe(elapsed.Seconds())
}

func (p *Prometheus) TaskFailed(string, error) {
	p.outcomes.WithLabelValues("failed").Inc()
}
