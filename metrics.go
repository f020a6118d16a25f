package aramid

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors a Context exposes. Unlike
// the original's out-of-scope logger ring buffer, these are purely
// additive instrumentation — they observe scheduling behavior, they do
// not influence it, so they do not conflict with the design's
// non-goals around priority classes or fair-share accounting.
type Metrics struct {
	JobsEnqueued   prometheus.Counter
	JobsStolen     prometheus.Counter
	JobsCompleted  prometheus.Counter
	PromisesActive prometheus.Gauge
	ExecutorIdle   prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aramid",
			Name:      "jobs_enqueued_total",
			Help:      "Number of jobs enqueued onto any executor deque.",
		}),
		JobsStolen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aramid",
			Name:      "jobs_stolen_total",
			Help:      "Number of jobs acquired by stealing from another executor.",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aramid",
			Name:      "jobs_completed_total",
			Help:      "Number of jobs that ran to their terminal transition.",
		}),
		PromisesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aramid",
			Name:      "promises_active",
			Help:      "Number of promises currently present in the handle table.",
		}),
		ExecutorIdle: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aramid",
			Name:      "executor_idle_rounds_total",
			Help:      "Number of times an executor blocked waiting for work after a failed local pop, across all executors.",
		}),
	}

	if registerer != nil {
		// Registration failures (e.g. a second Context sharing a
		// registry) are not fatal — the collectors still work
		// unregistered, they simply will not be scraped.
		_ = registerer.Register(m.JobsEnqueued)
		_ = registerer.Register(m.JobsStolen)
		_ = registerer.Register(m.JobsCompleted)
		_ = registerer.Register(m.PromisesActive)
		_ = registerer.Register(m.ExecutorIdle)
	}

	return m
}
