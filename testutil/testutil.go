package testutil

import (
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// UniformPoints generates num points with coordinates in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	points := make([][]float64, num)

	for i := range num {
		p := data[i*dimensions : (i+1)*dimensions]
		for j := range p {
			p[j] = r.rand.Float64()
		}
		points[i] = p
	}

	return points
}

// Blobs generates blobs*perBlob points drawn from isotropic Gaussians with
// the given spread. Blob centers lie on a grid with spacing 10, far apart
// compared to typical spreads (< 1). Points are emitted blob after blob.
// It returns the points and the true blob centers.
func (r *RNG) Blobs(blobs, perBlob, dimensions int, spread float64) ([][]float64, [][]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([][]float64, blobs)
	for b := range blobs {
		c := make([]float64, dimensions)
		for j := range c {
			// Spread blobs along the first two axes.
			switch j {
			case 0:
				c[j] = float64(b%2) * 10
			case 1:
				c[j] = float64(b/2) * 10
			}
		}
		centers[b] = c
	}

	data := make([]float64, blobs*perBlob*dimensions)
	points := make([][]float64, blobs*perBlob)
	for i := range points {
		c := centers[i/perBlob]
		p := data[i*dimensions : (i+1)*dimensions]
		for j := range p {
			p[j] = c[j] + r.rand.NormFloat64()*spread
		}
		points[i] = p
	}

	return points, centers
}

// Clone deep-copies points, e.g. to reuse initial centers across runs.
func Clone(points [][]float64) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = slices.Clone(p)
	}
	return out
}

// Histogram counts how many assignments refer to each of the k centers.
// Negative (unassigned) entries are ignored.
func Histogram(assignments []int, k int) []int {
	hist := make([]int, k)
	for _, a := range assignments {
		if a >= 0 && a < k {
			hist[a]++
		}
	}
	return hist
}

// Sum returns the sum of counts.
func Sum(counts []int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
