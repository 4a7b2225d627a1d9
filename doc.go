// Package ekmeans provides balanced ("equal size") k-means clustering for Go.
//
// A Clusterer assigns every point to exactly one of K movable centers so that
// each point is as close as possible to its center. In equal mode no center
// keeps more than floor(N/K) points for long: an overflowing center hands its
// cheapest-to-relocate member to the next best center, and the hand-off
// cascades until every center on the path is within its ideal count or no
// further move is possible.
//
// # Quick Start
//
//	c, err := ekmeans.New(centers, points, ekmeans.WithEqual(true))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	res, err := c.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Assignments, res.Counts, res.Converged)
//
// # Custom Representations
//
// NewGeneric accepts any center and point types together with a distance
// function and a center function:
//
//	c, err := ekmeans.NewGeneric(centers, points,
//	    func(c Center, p Point) (float64, error) { ... },
//	    func(c Center, members []Point) (Center, error) { ... },
//	)
//
// # Progress
//
// Listeners are called synchronously after every round:
//
//	ekmeans.WithListener(ekmeans.LogProgress(logger, time.Second))
//	ekmeans.WithListener(ekmeans.Delay(100 * time.Millisecond))
//
// # Observability
//
// WithLogger attaches a structured slog-based Logger, WithMetricsCollector a
// MetricsCollector (see the prommetrics package for Prometheus).
//
// # Resource Limits
//
// The distance matrix needs K*N*8 bytes. WithResourceController reserves that
// amount against a resource.Controller memory budget; construction fails with
// ErrMemoryLimitExceeded when the budget is exhausted.
package ekmeans
