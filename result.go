package ekmeans

import (
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/ekmeans/internal/kmeans"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Result is the outcome of a run.
type Result struct {
	// RunID identifies the run in logs and metrics.
	RunID string
	// Assignments holds the center index of every point.
	Assignments []int
	// Counts holds the population of every center.
	Counts []int
	// Iterations is the number of rounds after the initial pass.
	Iterations int
	// Moves is the number of moves of the final pass.
	Moves int
	// Converged reports whether the final pass moved no point.
	Converged bool
	// Duration is the wall time of the run.
	Duration time.Duration
	// Inertia is the sum of the distances of every point to the center it
	// was assigned against in the final pass.
	Inertia float64

	members []*roaring.Bitmap
}

func newResult[C, P any](runID string, e *kmeans.Engine[C, P], duration time.Duration) *Result {
	assignments := slices.Clone(e.Assignments())
	r := &Result{
		RunID:       runID,
		Assignments: assignments,
		Counts:      slices.Clone(e.Counts()),
		Iterations:  e.Iterations(),
		Moves:       e.Moves(),
		Converged:   e.Moves() == 0,
		Duration:    duration,
		members:     make([]*roaring.Bitmap, len(e.Counts())),
	}

	for c := range r.members {
		r.members[c] = roaring.New()
	}
	for p, c := range assignments {
		if c == Unassigned {
			continue
		}
		r.members[c].Add(uint32(p))
		r.Inertia += e.Distance(c, p)
	}

	return r
}

// Members returns the indices of the points assigned to center c. The
// returned bitmap is a copy; it is empty for an out of range c.
func (r *Result) Members(c int) *roaring.Bitmap {
	if c < 0 || c >= len(r.members) {
		return roaring.New()
	}
	return r.members[c].Clone()
}

// SizeStats summarizes cluster sizes.
type SizeStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// SizeStats returns population statistics of Counts. It is the zero value
// when there are no centers.
func (r *Result) SizeStats() SizeStats {
	if len(r.Counts) == 0 {
		return SizeStats{}
	}

	sizes := make([]float64, len(r.Counts))
	for i, c := range r.Counts {
		sizes[i] = float64(c)
	}

	mean, std := stat.PopMeanStdDev(sizes, nil)
	return SizeStats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(sizes),
		Max:    floats.Max(sizes),
	}
}
