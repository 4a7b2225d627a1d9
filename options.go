package ekmeans

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/ekmeans/distance"
	"github.com/hupe1980/ekmeans/internal/kmeans"
	"github.com/hupe1980/ekmeans/resource"
)

// DefaultMaxIterations is the round cap used unless WithMaxIterations is given.
const DefaultMaxIterations = kmeans.DefaultMaxIterations

type options struct {
	equal            bool
	metric           distance.Metric
	distanceFunc     distance.Func
	maxIterations    int
	listeners        []Listener
	logger           *Logger
	logLevel         *slog.Level
	metricsCollector MetricsCollector
	resources        *resource.Controller
	runID            string
}

// Option configures a Clusterer.
type Option func(*options)

// WithEqual enables equal mode: centers are capped at floor(N/K) points and
// overflowing centers hand points on to their next best center.
func WithEqual(equal bool) Option {
	return func(o *options) {
		o.equal = equal
	}
}

// WithMetric selects a built-in distance metric for New.
// It is ignored by NewGeneric.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithDistanceFunc sets a custom distance function for New.
// It takes precedence over WithMetric and is ignored by NewGeneric.
func WithDistanceFunc(fn distance.Func) Option {
	return func(o *options) {
		o.distanceFunc = fn
	}
}

// WithMaxIterations sets the round cap (default 128). Zero runs only the
// initial assignment pass.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithListener adds a progress listener. Listeners are called in the order
// they were added.
func WithListener(l Listener) Option {
	return func(o *options) {
		if l != nil {
			o.listeners = append(o.listeners, l)
		}
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel enables a text logger on stderr at the given level.
// It has no effect when WithLogger is also given.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logLevel = &level
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController reserves the distance matrix against rc's memory budget.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithRunID sets the id attached to logs and results. A random UUID is used
// by default.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

func applyOptions(opts []Option) (options, error) {
	o := options{
		metric:           distance.Euclidean,
		maxIterations:    DefaultMaxIterations,
		metricsCollector: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxIterations < 0 {
		return o, fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidOption, o.maxIterations)
	}

	if o.logger == nil {
		if o.logLevel != nil {
			o.logger = NewTextLogger(nil, *o.logLevel)
		} else {
			o.logger = NoopLogger()
		}
	}

	return o, nil
}
