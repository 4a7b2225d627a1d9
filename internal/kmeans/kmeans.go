package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
)

// Unassigned marks a point that has no center.
const Unassigned = -1

// DefaultMaxIterations is the round cap used when none is configured.
const DefaultMaxIterations = 128

var (
	// ErrNilDistanceFunc is returned when no distance function is configured.
	ErrNilDistanceFunc = errors.New("kmeans: distance function is nil")
	// ErrNilCenterFunc is returned when no center function is configured.
	ErrNilCenterFunc = errors.New("kmeans: center function is nil")
	// ErrAlreadyRun is returned when Run is called a second time.
	ErrAlreadyRun = errors.New("kmeans: engine has already run")
)

// DistanceFunc returns the dissimilarity between a center and a point.
type DistanceFunc[C, P any] func(center C, point P) (float64, error)

// CenterFunc recomputes center from its members. It may update center in
// place; the returned value replaces the engine's copy.
type CenterFunc[C, P any] func(center C, members []P) (C, error)

// Listener is invoked synchronously after every round.
type Listener func(iteration, moves int)

// Config configures an Engine.
type Config[C, P any] struct {
	// Equal enables the ideal-count cap.
	Equal bool
	// Distance computes center/point dissimilarities.
	Distance DistanceFunc[C, P]
	// Center recomputes a center from its members.
	Center CenterFunc[C, P]
	// Listener is optional.
	Listener Listener
}

// Engine holds the complete state of one clustering run.
//
// The engine owns centers for its lifetime and updates them in place; points
// are only read. An Engine is not safe for concurrent use.
type Engine[C, P any] struct {
	centers  []C
	points   []P
	equal    bool
	distFn   DistanceFunc[C, P]
	centerFn CenterFunc[C, P]
	listener Listener

	idealCount  int
	distances   []float64 // row-major: distances[c*n+p]
	assignments []int
	changed     *bitset.BitSet
	counts      []int
	done        *bitset.BitSet

	// placed is the number of points already handled by the running
	// assignment pass; only those may be evicted by rebalance.
	placed int

	members    []P
	ran        bool
	iterations int
	moves      int
}

// New creates an engine over centers and points.
func New[C, P any](centers []C, points []P, cfg Config[C, P]) (*Engine[C, P], error) {
	if cfg.Distance == nil {
		return nil, ErrNilDistanceFunc
	}
	if cfg.Center == nil {
		return nil, ErrNilCenterFunc
	}

	k, n := len(centers), len(points)

	e := &Engine[C, P]{
		centers:     centers,
		points:      points,
		equal:       cfg.Equal,
		distFn:      cfg.Distance,
		centerFn:    cfg.Center,
		listener:    cfg.Listener,
		distances:   make([]float64, k*n),
		assignments: make([]int, n),
		changed:     bitset.New(uint(k)),
		counts:      make([]int, k),
		done:        bitset.New(uint(k)),
	}
	if k > 0 {
		e.idealCount = n / k
	}
	for p := range e.assignments {
		e.assignments[p] = Unassigned
	}
	for c := 0; c < k; c++ {
		e.changed.Set(uint(c))
	}

	return e, nil
}

// MatrixBytes returns the memory needed by the distance matrix of a k×n run.
func MatrixBytes(k, n int) int64 {
	return int64(k) * int64(n) * 8
}

// Run clusters the points and returns the final assignments.
//
// It stops when a round moves no point or after maxIterations rounds;
// hitting the cap is not an error. ctx is checked between rounds.
func (e *Engine[C, P]) Run(ctx context.Context, maxIterations int) ([]int, error) {
	if e.ran {
		return nil, ErrAlreadyRun
	}
	e.ran = true

	if err := e.recomputeDistances(); err != nil {
		return nil, err
	}
	moves := e.assign()

	for moves > 0 && e.iterations < maxIterations {
		if err := ctx.Err(); err != nil {
			e.moves = moves
			return e.assignments, err
		}
		e.iterations++

		moves = 0
		if len(e.points) >= len(e.centers) {
			moves += e.fillEmptyCenters()
		}
		if err := e.recenter(); err != nil {
			return nil, err
		}
		if err := e.recomputeDistances(); err != nil {
			return nil, err
		}
		moves += e.assign()

		if e.listener != nil {
			e.listener(e.iterations, moves)
		}
	}

	e.moves = moves
	return e.assignments, nil
}

// recomputeDistances refreshes the matrix rows of changed centers and clears
// every changed flag.
func (e *Engine[C, P]) recomputeDistances() error {
	n := len(e.points)
	for c := range e.centers {
		if !e.changed.Test(uint(c)) {
			continue
		}
		row := e.distances[c*n : (c+1)*n]
		for p, point := range e.points {
			d, err := e.distFn(e.centers[c], point)
			if err != nil {
				return fmt.Errorf("distance center %d point %d: %w", c, p, err)
			}
			row[p] = d
		}
	}
	e.changed.ClearAll()
	return nil
}

// assign runs one assignment pass and returns the number of moves.
func (e *Engine[C, P]) assign() int {
	moves := 0
	clear(e.counts)
	e.placed = 0

	for p := range e.points {
		e.placed = p + 1

		nc := e.nearestCenter(p)
		if nc == Unassigned {
			continue
		}
		if e.assignments[p] != nc {
			e.reassign(p, nc)
			moves++
		}
		e.counts[nc]++
		if e.equal && e.counts[nc] > e.idealCount {
			moves += e.rebalance(nc)
		}
	}

	return moves
}

// rebalance evicts from the overfull center cc the point that is cheapest to
// relocate and cascades when the receiving center overflows in turn.
func (e *Engine[C, P]) rebalance(cc int) int {
	n := len(e.points)
	md := math.Inf(1)
	nc, np := Unassigned, -1

	for p := 0; p < e.placed; p++ {
		if e.assignments[p] != cc {
			continue
		}
		for c := range e.centers {
			if c == cc || e.done.Test(uint(c)) {
				continue
			}
			if d := e.distances[c*n+p]; d < md {
				md = d
				nc = c
				np = p
			}
		}
	}
	if nc == Unassigned {
		return 0
	}

	e.reassign(np, nc)
	moves := 1
	e.counts[cc]--
	e.counts[nc]++

	if e.counts[nc] > e.idealCount {
		e.done.Set(uint(cc))
		moves += e.rebalance(nc)
		e.done.Clear(uint(cc))
	}

	return moves
}

// fillEmptyCenters gives every empty center the point of the largest other
// center that lies nearest to it.
func (e *Engine[C, P]) fillEmptyCenters() int {
	moves := 0
	for c := range e.centers {
		if e.counts[c] != 0 {
			continue
		}
		lc := e.largestCenter(c)
		if lc == Unassigned {
			continue
		}
		np := e.nearestMember(lc, c)
		if np == -1 {
			continue
		}
		e.assignments[np] = c
		e.counts[c]++
		e.counts[lc]--
		e.changed.Set(uint(c))
		e.changed.Set(uint(lc))
		moves++
	}
	return moves
}

// recenter recomputes every changed center that has members.
func (e *Engine[C, P]) recenter() error {
	for c := range e.centers {
		if !e.changed.Test(uint(c)) {
			continue
		}
		e.members = e.members[:0]
		for p, a := range e.assignments {
			if a == c {
				e.members = append(e.members, e.points[p])
			}
		}
		if len(e.members) == 0 {
			continue
		}
		center, err := e.centerFn(e.centers[c], e.members)
		if err != nil {
			return fmt.Errorf("center %d: %w", c, err)
		}
		e.centers[c] = center
	}
	clear(e.members)
	return nil
}

func (e *Engine[C, P]) reassign(p, c int) {
	if old := e.assignments[p]; old != Unassigned {
		e.changed.Set(uint(old))
	}
	e.changed.Set(uint(c))
	e.assignments[p] = c
}

// nearestCenter scans centers in index order; ties keep the lowest index.
func (e *Engine[C, P]) nearestCenter(p int) int {
	n := len(e.points)
	md := math.Inf(1)
	nc := Unassigned
	for c := range e.centers {
		if d := e.distances[c*n+p]; d < md {
			md = d
			nc = c
		}
	}
	return nc
}

// nearestMember returns the point assigned to in that is nearest to from.
func (e *Engine[C, P]) nearestMember(in, from int) int {
	n := len(e.points)
	md := math.Inf(1)
	np := -1
	for p, a := range e.assignments {
		if a != in {
			continue
		}
		if d := e.distances[from*n+p]; d < md {
			md = d
			np = p
		}
	}
	return np
}

// largestCenter returns the most populated center other than except; the
// first one wins on ties. Unassigned when every other center is empty.
func (e *Engine[C, P]) largestCenter(except int) int {
	lc, mc := Unassigned, 0
	for c, count := range e.counts {
		if c == except {
			continue
		}
		if count > mc {
			mc = count
			lc = c
		}
	}
	return lc
}

// Assignments returns the center index of every point (Unassigned if none).
// The slice is owned by the engine.
func (e *Engine[C, P]) Assignments() []int { return e.assignments }

// Counts returns the population of every center after the last pass.
// The slice is owned by the engine.
func (e *Engine[C, P]) Counts() []int { return e.counts }

// Centers returns the (updated) centers.
func (e *Engine[C, P]) Centers() []C { return e.centers }

// IdealCount returns floor(N/K), or 0 without centers.
func (e *Engine[C, P]) IdealCount() int { return e.idealCount }

// Iterations returns the number of completed rounds.
func (e *Engine[C, P]) Iterations() int { return e.iterations }

// Moves returns the number of moves of the last pass. Zero means the run
// reached a fixed point.
func (e *Engine[C, P]) Moves() int { return e.moves }

// Distance returns the cached distance between center c and point p.
func (e *Engine[C, P]) Distance(c, p int) float64 {
	return e.distances[c*len(e.points)+p]
}
