package ekmeans

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Listener observes the progress of a run. OnIteration is called
// synchronously after every round with the 1-based round number and the
// number of moves made in that round.
type Listener interface {
	OnIteration(iteration, moves int)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(iteration, moves int)

// OnIteration implements Listener.
func (f ListenerFunc) OnIteration(iteration, moves int) { f(iteration, moves) }

type chain []Listener

func (c chain) OnIteration(iteration, moves int) {
	for _, l := range c {
		l.OnIteration(iteration, moves)
	}
}

// ChainListeners returns a Listener that calls every non-nil listener in order.
func ChainListeners(listeners ...Listener) Listener {
	c := make(chain, 0, len(listeners))
	for _, l := range listeners {
		if l != nil {
			c = append(c, l)
		}
	}
	return c
}

// Delay returns a Listener that sleeps d after every round. It slows a run
// down enough to watch it converge.
func Delay(d time.Duration) Listener {
	return ListenerFunc(func(int, int) {
		if d > 0 {
			time.Sleep(d)
		}
	})
}

// LogProgress returns a Listener that logs rounds at info level, at most once
// per interval. A non-positive interval logs every round.
func LogProgress(logger *Logger, interval time.Duration) Listener {
	if logger == nil {
		logger = NoopLogger()
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	return ListenerFunc(func(iteration, moves int) {
		if !limiter.Allow() {
			return
		}
		logger.InfoContext(context.Background(), "iteration",
			"iteration", iteration,
			"moves", moves,
		)
	})
}
