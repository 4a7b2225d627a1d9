package distance

import (
	"fmt"
	"strings"

	"github.com/viterin/vek"
)

// ErrDimensionMismatch is returned when a center and a point do not have the
// same number of coordinates.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Metric represents the distance metric used for center/point comparison.
type Metric int

const (
	Euclidean Metric = iota
	Manhattan
)

func (m Metric) String() string {
	switch m {
	case Euclidean:
		return "euclidean"
	case Manhattan:
		return "manhattan"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// ParseMetric returns the metric with the given (case-insensitive) name.
// "l2" and "l1" are accepted as aliases.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euclidean", "l2", "":
		return Euclidean, nil
	case "manhattan", "l1", "cityblock":
		return Manhattan, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %q", name)
	}
}

// Func computes the dissimilarity between a center (a) and a point (b).
type Func func(a, b []float64) (float64, error)

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case Euclidean:
		return EuclideanDistance, nil
	case Manhattan:
		return ManhattanDistance, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// EuclideanDistance returns the L2 distance between a and b.
func EuclideanDistance(a, b []float64) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	if len(a) == 0 {
		return 0, nil
	}
	return vek.Distance(a, b), nil
}

// ManhattanDistance returns the L1 distance between a and b.
func ManhattanDistance(a, b []float64) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	if len(a) == 0 {
		return 0, nil
	}
	return vek.ManhattanDistance(a, b), nil
}

func checkDims(a, b []float64) error {
	if len(a) != len(b) {
		return &ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
	}
	return nil
}
