package ekmeans

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/ekmeans/centroid"
	"github.com/hupe1980/ekmeans/distance"
	"github.com/hupe1980/ekmeans/internal/kmeans"
)

// Unassigned marks a point that has no center. It only appears when there
// are no centers.
const Unassigned = kmeans.Unassigned

// DistanceFunc returns the dissimilarity between a center and a point.
// Smaller is closer; it must not be negative.
type DistanceFunc[C, P any] func(center C, point P) (float64, error)

// CenterFunc recomputes a center from its (non-empty) member points. It may
// update center in place and return it.
type CenterFunc[C, P any] func(center C, members []P) (C, error)

// Clusterer runs balanced k-means over a fixed set of centers and points.
//
// A Clusterer runs exactly once. It owns centers until it is closed and
// updates them in place; points are only read. A Clusterer is not safe for
// concurrent use.
type Clusterer[C, P any] struct {
	engine   *kmeans.Engine[C, P]
	opts     options
	logger   *Logger
	reserved int64
	closed   bool
}

// New creates a Clusterer over float64 vectors. Centers are moved to the
// arithmetic mean of their members; the distance defaults to Euclidean.
func New(centers, points [][]float64, opts ...Option) (*Clusterer[[]float64, []float64], error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	dist := o.distanceFunc
	if dist == nil {
		dist, err = distance.Provider(o.metric)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
	}

	return newClusterer[[]float64, []float64](centers, points, DistanceFunc[[]float64, []float64](dist), centroid.Mean, o)
}

// NewGeneric creates a Clusterer over arbitrary center and point types.
// WithMetric and WithDistanceFunc are ignored.
func NewGeneric[C, P any](centers []C, points []P, dist DistanceFunc[C, P], center CenterFunc[C, P], opts ...Option) (*Clusterer[C, P], error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newClusterer(centers, points, dist, center, o)
}

func newClusterer[C, P any](centers []C, points []P, dist DistanceFunc[C, P], center CenterFunc[C, P], o options) (*Clusterer[C, P], error) {
	if dist == nil {
		return nil, fmt.Errorf("%w: distance function is nil", ErrInvalidOption)
	}
	if center == nil {
		return nil, fmt.Errorf("%w: center function is nil", ErrInvalidOption)
	}

	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	c := &Clusterer[C, P]{
		opts:   o,
		logger: o.logger.WithRunID(o.runID).WithK(len(centers)).WithCount(len(points)),
	}

	bytes := kmeans.MatrixBytes(len(centers), len(points))
	if o.resources != nil {
		if !o.resources.TryAcquireMemory(bytes) {
			return nil, fmt.Errorf("%w: distance matrix needs %d bytes", ErrMemoryLimitExceeded, bytes)
		}
		c.reserved = bytes
	}

	var listener Listener
	if len(o.listeners) > 0 {
		listener = ChainListeners(o.listeners...)
	}

	engine, err := kmeans.New(centers, points, kmeans.Config[C, P]{
		Equal:    o.equal,
		Distance: kmeans.DistanceFunc[C, P](dist),
		Center:   kmeans.CenterFunc[C, P](center),
		Listener: func(iteration, moves int) {
			c.opts.metricsCollector.RecordIteration(moves)
			c.logger.LogIteration(context.Background(), iteration, moves)
			if listener != nil {
				listener.OnIteration(iteration, moves)
			}
		},
	})
	if err != nil {
		c.release()
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	c.engine = engine

	return c, nil
}

// Run clusters the points. It returns when a round moves no point or after
// the configured number of rounds; hitting the cap is not an error and is
// reported by Result.Converged.
//
// ctx is checked once per round. On cancellation Run returns ctx.Err(); the
// assignments of the last completed pass remain available via Assignments.
func (c *Clusterer[C, P]) Run(ctx context.Context) (*Result, error) {
	if c.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	assignments, err := c.engine.Run(ctx, c.opts.maxIterations)
	duration := time.Since(start)

	k, n := len(c.engine.Centers()), len(assignments)
	iterations, moves := c.engine.Iterations(), c.engine.Moves()

	err = translateError(err)
	c.opts.metricsCollector.RecordRun(k, n, iterations, moves == 0, duration, err)
	c.logger.LogRun(ctx, iterations, moves, duration, err)
	if err != nil {
		return nil, err
	}

	return newResult(c.opts.runID, c.engine, duration), nil
}

// Assignments returns the center index of every point after the last pass.
// The slice is owned by the Clusterer.
func (c *Clusterer[C, P]) Assignments() []int { return c.engine.Assignments() }

// Counts returns the population of every center after the last pass.
// The slice is owned by the Clusterer.
func (c *Clusterer[C, P]) Counts() []int { return c.engine.Counts() }

// Centers returns the centers as updated by the run.
func (c *Clusterer[C, P]) Centers() []C { return c.engine.Centers() }

// IdealCount returns floor(N/K), or 0 without centers.
func (c *Clusterer[C, P]) IdealCount() int { return c.engine.IdealCount() }

// RunID returns the id attached to logs and the result.
func (c *Clusterer[C, P]) RunID() string { return c.opts.runID }

// Close releases the memory reservation of the distance matrix. It is safe
// to call Close more than once.
func (c *Clusterer[C, P]) Close() error {
	if c == nil || c.closed {
		return nil
	}
	c.closed = true
	c.release()
	return nil
}

func (c *Clusterer[C, P]) release() {
	if c.reserved > 0 {
		c.opts.resources.ReleaseMemory(c.reserved)
		c.reserved = 0
	}
}
