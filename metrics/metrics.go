// Package metrics exports job outcomes as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sagarc03/stowback"
)

const namespace = "stowback"

// Collector records every finished job. It implements stowback.JobObserver.
type Collector struct {
	jobs     *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
}

// New creates the job metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_total",
				Help:      "Finished archive and restore jobs.",
			},
			[]string{"kind", "mode", "outcome"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_errors_total",
				Help:      "Failed jobs by error kind.",
			},
			[]string{"kind", "error_kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Wall time of finished jobs.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"kind"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_bytes_total",
				Help:      "Archive bytes uploaded or downloaded.",
			},
			[]string{"kind"},
		),
	}

	for _, col := range []prometheus.Collector{c.jobs, c.errors, c.duration, c.bytes} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Collector) JobFinished(job stowback.JobRecord) {
	kind := string(job.Kind)

	c.jobs.WithLabelValues(kind, string(job.Mode), string(job.Status)).Inc()
	c.duration.WithLabelValues(kind).Observe(job.Duration().Seconds())
	c.bytes.WithLabelValues(kind).Add(float64(job.Bytes))

	if job.Status == stowback.StatusFailed {
		c.errors.WithLabelValues(kind, job.ErrorKind).Inc()
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
