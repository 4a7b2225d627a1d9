package ekmeans

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/ekmeans/distance"
	"github.com/hupe1980/ekmeans/resource"
	"github.com/hupe1980/ekmeans/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() (centers, points [][]float64) {
	centers = [][]float64{{0, 0}, {10, 10}}
	points = [][]float64{{0, 1}, {1, 0}, {9, 10}, {10, 9}, {5, 5}}
	return centers, points
}

func TestClusterer(t *testing.T) {
	t.Run("Run", func(t *testing.T) {
		centers, points := fixture()
		c, err := New(centers, points, WithRunID("run-1"))
		require.NoError(t, err)
		defer c.Close()

		res, err := c.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "run-1", res.RunID)
		assert.Equal(t, []int{0, 0, 1, 1, 0}, res.Assignments)
		assert.Equal(t, []int{3, 2}, res.Counts)
		assert.Equal(t, 1, res.Iterations)
		assert.Equal(t, 0, res.Moves)
		assert.True(t, res.Converged)
		assert.Equal(t, []uint32{0, 1, 4}, res.Members(0).ToArray())
		assert.Equal(t, []uint32{2, 3}, res.Members(1).ToArray())
		assert.True(t, res.Members(5).IsEmpty())
		assert.Positive(t, res.Inertia)

		assert.InDeltaSlice(t, []float64{2, 2}, c.Centers()[0], 1e-12)
		assert.Equal(t, 2, c.IdealCount())
	})

	t.Run("ResultIsDetached", func(t *testing.T) {
		centers, points := fixture()
		c, err := New(centers, points)
		require.NoError(t, err)

		res, err := c.Run(context.Background())
		require.NoError(t, err)

		res.Assignments[0] = 1
		res.Members(0).Add(3)
		assert.Equal(t, 0, c.Assignments()[0])
		assert.Equal(t, uint64(3), res.Members(0).GetCardinality())
	})

	t.Run("Manhattan", func(t *testing.T) {
		centers := [][]float64{{0, 0}, {4, 0}}
		points := [][]float64{{1, 1}, {3, 0}}
		c, err := New(centers, points, WithMetric(distance.Manhattan), WithMaxIterations(0))
		require.NoError(t, err)

		res, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, res.Assignments)
		assert.InDelta(t, 3.0, res.Inertia, 1e-12)
	})

	t.Run("DistanceFunc", func(t *testing.T) {
		calls := 0
		centers, points := fixture()
		c, err := New(centers, points, WithDistanceFunc(func(a, b []float64) (float64, error) {
			calls++
			return distance.EuclideanDistance(a, b)
		}))
		require.NoError(t, err)

		_, err = c.Run(context.Background())
		require.NoError(t, err)
		assert.Positive(t, calls)
	})

	t.Run("Equal", func(t *testing.T) {
		rng := testutil.NewRNG(3)
		points := rng.UniformPoints(80, 2)
		centers := testutil.Clone(points[:4])

		c, err := New(centers, points, WithEqual(true))
		require.NoError(t, err)

		res, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []int{20, 20, 20, 20}, res.Counts)

		stats := res.SizeStats()
		assert.Equal(t, SizeStats{Mean: 20, StdDev: 0, Min: 20, Max: 20}, stats)
	})

	t.Run("NoCenters", func(t *testing.T) {
		_, points := fixture()
		c, err := New(nil, points)
		require.NoError(t, err)

		res, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []int{Unassigned, Unassigned, Unassigned, Unassigned, Unassigned}, res.Assignments)
		assert.True(t, res.Converged)
		assert.Equal(t, SizeStats{}, res.SizeStats())
		assert.Zero(t, res.Inertia)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		c, err := New([][]float64{{0, 0}}, [][]float64{{1, 2, 3}})
		require.NoError(t, err)

		_, err = c.Run(context.Background())
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)

		var inner *distance.ErrDimensionMismatch
		assert.True(t, errors.As(err, &inner))
	})

	t.Run("AlreadyRun", func(t *testing.T) {
		centers, points := fixture()
		c, err := New(centers, points)
		require.NoError(t, err)

		_, err = c.Run(context.Background())
		require.NoError(t, err)
		_, err = c.Run(context.Background())
		assert.ErrorIs(t, err, ErrAlreadyRun)
	})

	t.Run("Closed", func(t *testing.T) {
		centers, points := fixture()
		c, err := New(centers, points)
		require.NoError(t, err)

		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
		_, err = c.Run(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		centers, points := fixture()
		c, err := New(centers, points)
		require.NoError(t, err)

		_, err = c.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotContains(t, c.Assignments(), Unassigned)
	})
}

func TestOptions(t *testing.T) {
	t.Run("NegativeMaxIterations", func(t *testing.T) {
		centers, points := fixture()
		_, err := New(centers, points, WithMaxIterations(-1))
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("UnknownMetric", func(t *testing.T) {
		centers, points := fixture()
		_, err := New(centers, points, WithMetric(distance.Metric(42)))
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("NilFunctions", func(t *testing.T) {
		_, err := NewGeneric[int, int](nil, nil, nil, func(c int, _ []int) (int, error) { return c, nil })
		assert.ErrorIs(t, err, ErrInvalidOption)

		_, err = NewGeneric[int, int](nil, nil, func(int, int) (float64, error) { return 0, nil }, nil)
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("GeneratedRunID", func(t *testing.T) {
		centers, points := fixture()
		c, err := New(centers, points)
		require.NoError(t, err)
		assert.Len(t, c.RunID(), 36)
	})
}

func TestNewGeneric(t *testing.T) {
	// One-dimensional integers; centers move to the rounded-down mean.
	centers := []int{0, 100}
	points := []int{1, 2, 3, 98, 99, 100}

	c, err := NewGeneric(centers, points,
		func(c, p int) (float64, error) {
			d := c - p
			if d < 0 {
				d = -d
			}
			return float64(d), nil
		},
		func(_ int, members []int) (int, error) {
			sum := 0
			for _, m := range members {
				sum += m
			}
			return sum / len(members), nil
		},
	)
	require.NoError(t, err)

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, res.Assignments)
	assert.Equal(t, []int{2, 99}, c.Centers())
}

func TestResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 2 * 5 * 8})
	centers, points := fixture()

	c, err := New(centers, points, WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, int64(80), rc.MemoryUsage())

	_, err = New(testutil.Clone(centers), points, WithResourceController(rc))
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

	require.NoError(t, c.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())

	c, err = New(testutil.Clone(centers), points, WithResourceController(rc))
	require.NoError(t, err)
	require.NoError(t, c.Close())
}

func TestListeners(t *testing.T) {
	rng := testutil.NewRNG(5)
	points, _ := rng.Blobs(4, 10, 2, 1.0)
	centers := testutil.Clone(points[:4])

	var rounds []int
	var moves []int
	metrics := &BasicMetricsCollector{}

	c, err := New(centers, points,
		WithEqual(true),
		WithListener(ListenerFunc(func(iteration, m int) {
			rounds = append(rounds, iteration)
		})),
		WithListener(ListenerFunc(func(_, m int) {
			moves = append(moves, m)
		})),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	res, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rounds, res.Iterations)
	for i, r := range rounds {
		assert.Equal(t, i+1, r)
	}
	assert.Equal(t, res.Moves, moves[len(moves)-1])

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(0), stats.RunErrors)
	assert.Equal(t, int64(res.Iterations), stats.IterationCount)
	assert.Equal(t, int64(40), stats.PointsClustered)

	t.Run("Delay", func(t *testing.T) {
		const d = 20 * time.Millisecond

		start := time.Now()
		Delay(d).OnIteration(1, 3)
		assert.GreaterOrEqual(t, time.Since(start), d)

		start = time.Now()
		Delay(0).OnIteration(1, 3)
		Delay(-time.Second).OnIteration(2, 0)
		assert.Less(t, time.Since(start), d)
	})
}

func TestChainListeners(t *testing.T) {
	var got []string
	l := ChainListeners(
		ListenerFunc(func(int, int) { got = append(got, "a") }),
		nil,
		ListenerFunc(func(int, int) { got = append(got, "b") }),
	)
	l.OnIteration(1, 0)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestLogProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, slog.LevelInfo)

	l := LogProgress(logger, 0)
	l.OnIteration(1, 7)
	l.OnIteration(2, 0)

	out := buf.String()
	assert.Contains(t, out, "iteration=1 moves=7")
	assert.Contains(t, out, "iteration=2 moves=0")

	buf.Reset()
	throttled := LogProgress(logger, 1<<62)
	throttled.OnIteration(1, 3)
	throttled.OnIteration(2, 1)
	assert.Equal(t, 1, strings.Count(buf.String(), "msg=iteration"))
}

func TestRunLogging(t *testing.T) {
	var buf bytes.Buffer
	centers, points := fixture()

	c, err := New(centers, points,
		WithLogger(NewJSONLogger(&buf, slog.LevelDebug)),
		WithRunID("abc"),
	)
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"iteration completed"`)
	assert.Contains(t, out, `"msg":"run converged"`)
	assert.Contains(t, out, `"run_id":"abc"`)
	assert.Contains(t, out, `"k":2`)
	assert.Contains(t, out, `"count":5`)
}
