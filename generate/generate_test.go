package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestUniform(t *testing.T) {
	points := New(1).Uniform(1000, 3)
	require.Len(t, points, 1000)

	xs := make([]float64, len(points))
	for i, p := range points {
		require.Len(t, p, 3)
		for _, v := range p {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
		xs[i] = p[0]
	}
	assert.InDelta(t, 0.5, stat.Mean(xs, nil), 0.05)
}

func TestDeterministic(t *testing.T) {
	assert.Equal(t, New(7).Uniform(10, 2), New(7).Uniform(10, 2))
	assert.NotEqual(t, New(7).Uniform(10, 2), New(8).Uniform(10, 2))
}

func TestBlobs(t *testing.T) {
	centers := [][]float64{{0, 0}, {100, 100}}
	points, err := New(3).Blobs(400, centers, 1)
	require.NoError(t, err)
	require.Len(t, points, 400)

	for b, c := range centers {
		var xs []float64
		for i := b; i < len(points); i += len(centers) {
			xs = append(xs, points[i][0])
		}
		mean, std := stat.MeanStdDev(xs, nil)
		assert.InDelta(t, c[0], mean, 0.3)
		assert.InDelta(t, 1.0, std, 0.2)
	}

	_, err = New(3).Blobs(10, nil, 1)
	assert.Error(t, err)

	_, err = New(3).Blobs(10, [][]float64{{0}, {1, 2}}, 1)
	assert.Error(t, err)
}

func TestRandomInBounds(t *testing.T) {
	lo, hi := []float64{-1, 5}, []float64{1, 5}
	centers := New(11).RandomInBounds(50, lo, hi)
	require.Len(t, centers, 50)

	for _, c := range centers {
		assert.GreaterOrEqual(t, c[0], -1.0)
		assert.LessOrEqual(t, c[0], 1.0)
		assert.Equal(t, 5.0, c[1])
	}
}

func TestAtCenter(t *testing.T) {
	centers := AtCenter(3, []float64{0, -2}, []float64{10, 2})
	assert.Equal(t, [][]float64{{5, 0}, {5, 0}, {5, 0}}, centers)

	centers[0][0] = 42
	assert.Equal(t, 5.0, centers[1][0])
}

func TestSamplePoints(t *testing.T) {
	points := [][]float64{{0}, {1}, {2}, {3}}
	centers, err := New(5).SamplePoints(3, points)
	require.NoError(t, err)
	require.Len(t, centers, 3)

	seen := map[float64]bool{}
	for _, c := range centers {
		seen[c[0]] = true
	}
	assert.Len(t, seen, 3)

	centers[0][0] = 99
	assert.NotContains(t, points, []float64{99})

	_, err = New(5).SamplePoints(5, points)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}
