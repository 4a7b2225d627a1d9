// Package generate produces reproducible random datasets and initial centers.
package generate

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrTooFewPoints is returned when more samples are requested than points exist.
var ErrTooFewPoints = errors.New("generate: not enough points to sample from")

// Generator draws from a seeded PCG source. It is not safe for concurrent use.
type Generator struct {
	src rand.Source
	rng *rand.Rand
}

// New returns a Generator seeded with seed.
func New(seed uint64) *Generator {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Generator{
		src: src,
		rng: rand.New(src),
	}
}

// Uniform returns n points with coordinates drawn uniformly from [0, 1).
func (g *Generator) Uniform(n, dim int) [][]float64 {
	u := distuv.Uniform{Min: 0, Max: 1, Src: g.src}
	return g.fill(n, dim, func(int, int) float64 { return u.Rand() })
}

// Blobs returns n points scattered around centers with a normal distribution
// of the given standard deviation. Point i belongs to centers[i%len(centers)].
func (g *Generator) Blobs(n int, centers [][]float64, stddev float64) ([][]float64, error) {
	if len(centers) == 0 {
		return nil, errors.New("generate: no blob centers")
	}
	dim := len(centers[0])
	for _, c := range centers {
		if len(c) != dim {
			return nil, fmt.Errorf("generate: blob centers have mixed dimensions %d and %d", dim, len(c))
		}
	}

	norm := distuv.Normal{Mu: 0, Sigma: stddev, Src: g.src}
	return g.fill(n, dim, func(i, j int) float64 {
		return centers[i%len(centers)][j] + norm.Rand()
	}), nil
}

// RandomInBounds returns k centers drawn uniformly from the box [lo, hi].
func (g *Generator) RandomInBounds(k int, lo, hi []float64) [][]float64 {
	return g.fill(k, len(lo), func(_, j int) float64 {
		if hi[j] <= lo[j] {
			return lo[j]
		}
		u := distuv.Uniform{Min: lo[j], Max: hi[j], Src: g.src}
		return u.Rand()
	})
}

// SamplePoints returns copies of k distinct points chosen at random.
func (g *Generator) SamplePoints(k int, points [][]float64) ([][]float64, error) {
	if k > len(points) {
		return nil, fmt.Errorf("%w: %d samples from %d points", ErrTooFewPoints, k, len(points))
	}
	perm := g.rng.Perm(len(points))
	centers := make([][]float64, k)
	for i := range centers {
		centers[i] = append([]float64(nil), points[perm[i]]...)
	}
	return centers, nil
}

// AtCenter returns k centers all placed at the middle of the box [lo, hi].
// The first assignment pass then sends every point to center 0 and, in
// equal mode, lets the rebalancer spread them out.
func AtCenter(k int, lo, hi []float64) [][]float64 {
	centers := make([][]float64, k)
	for i := range centers {
		c := make([]float64, len(lo))
		for j := range c {
			c[j] = lo[j] + (hi[j]-lo[j])/2
		}
		centers[i] = c
	}
	return centers
}

// fill allocates n points of dimension dim backed by one array.
func (g *Generator) fill(n, dim int, value func(i, j int) float64) [][]float64 {
	data := make([]float64, n*dim)
	points := make([][]float64, n)
	for i := range points {
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range p {
			p[j] = value(i, j)
		}
		points[i] = p
	}
	return points
}
