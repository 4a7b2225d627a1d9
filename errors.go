package ekmeans

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ekmeans/distance"
	"github.com/hupe1980/ekmeans/internal/kmeans"
)

var (
	// ErrInvalidOption is returned when an option or constructor argument is invalid.
	ErrInvalidOption = errors.New("invalid option")

	// ErrMemoryLimitExceeded is returned when the distance matrix does not fit
	// into the configured memory budget.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrClosed is returned when a closed Clusterer is used.
	ErrClosed = errors.New("clusterer is closed")

	// ErrAlreadyRun is returned when Run is called more than once.
	ErrAlreadyRun = kmeans.ErrAlreadyRun
)

// ErrDimensionMismatch indicates a center/point dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *distance.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	return err
}
