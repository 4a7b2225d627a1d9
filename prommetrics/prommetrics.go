// Package prommetrics exports clustering metrics to Prometheus.
//
//	c := prommetrics.New("ekmeans")
//	prometheus.MustRegister(c)
//	clusterer, err := ekmeans.New(centers, points, ekmeans.WithMetricsCollector(c))
package prommetrics

import (
	"time"

	"github.com/hupe1980/ekmeans"
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the status label.
const (
	StatusConverged = "converged"
	StatusCapped    = "capped"
	StatusError     = "error"
)

// Collector implements ekmeans.MetricsCollector and prometheus.Collector.
type Collector struct {
	runs       *prometheus.CounterVec
	duration   prometheus.Histogram
	iterations prometheus.Histogram
	rounds     prometheus.Counter
	moves      prometheus.Counter
	points     prometheus.Counter
	centers    prometheus.Gauge
}

var (
	_ ekmeans.MetricsCollector = (*Collector)(nil)
	_ prometheus.Collector     = (*Collector)(nil)
)

// New creates a Collector whose metrics are prefixed with namespace.
func New(namespace string) *Collector {
	return &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Clustering runs by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of clustering runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_iterations",
			Help:      "Rounds per clustering run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Rounds completed across all runs.",
		}),
		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Point moves made in rounds across all runs.",
		}),
		points: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_clustered_total",
			Help:      "Points clustered by successful runs.",
		}),
		centers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "centers",
			Help:      "Number of centers of the last run.",
		}),
	}
}

// RecordRun implements ekmeans.MetricsCollector.
func (c *Collector) RecordRun(k, n, iterations int, converged bool, duration time.Duration, err error) {
	c.duration.Observe(duration.Seconds())
	c.centers.Set(float64(k))

	switch {
	case err != nil:
		c.runs.WithLabelValues(StatusError).Inc()
		return
	case converged:
		c.runs.WithLabelValues(StatusConverged).Inc()
	default:
		c.runs.WithLabelValues(StatusCapped).Inc()
	}
	c.iterations.Observe(float64(iterations))
	c.points.Add(float64(n))
}

// RecordIteration implements ekmeans.MetricsCollector.
func (c *Collector) RecordIteration(moves int) {
	c.rounds.Inc()
	c.moves.Add(float64(moves))
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.runs.Describe(ch)
	c.duration.Describe(ch)
	c.iterations.Describe(ch)
	c.rounds.Describe(ch)
	c.moves.Describe(ch)
	c.points.Describe(ch)
	c.centers.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.runs.Collect(ch)
	c.duration.Collect(ch)
	c.iterations.Collect(ch)
	c.rounds.Collect(ch)
	c.moves.Collect(ch)
	c.points.Collect(ch)
	c.centers.Collect(ch)
}
