package ekmeans

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordRun is called after each run. k and n are the number of centers
	// and points, err is nil if successful.
	RecordRun(k, n, iterations int, converged bool, duration time.Duration, err error)

	// RecordIteration is called after each round with the moves of that round.
	RecordIteration(moves int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(int, int, int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordIteration(int)                                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	RunCount        atomic.Int64
	RunErrors       atomic.Int64
	RunConverged    atomic.Int64
	RunTotalNanos   atomic.Int64
	IterationCount  atomic.Int64
	MoveCount       atomic.Int64
	PointsClustered atomic.Int64
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(k, n, iterations int, converged bool, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	if converged {
		b.RunConverged.Add(1)
	}
	b.PointsClustered.Add(int64(n))
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(moves int) {
	b.IterationCount.Add(1)
	b.MoveCount.Add(int64(moves))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RunCount:        b.RunCount.Load(),
		RunErrors:       b.RunErrors.Load(),
		RunConverged:    b.RunConverged.Load(),
		RunAvgNanos:     b.getAvgRunNanos(),
		IterationCount:  b.IterationCount.Load(),
		MoveCount:       b.MoveCount.Load(),
		PointsClustered: b.PointsClustered.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRunNanos() int64 {
	count := b.RunCount.Load()
	if count == 0 {
		return 0
	}
	return b.RunTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount        int64
	RunErrors       int64
	RunConverged    int64
	RunAvgNanos     int64
	IterationCount  int64
	MoveCount       int64
	PointsClustered int64
}
