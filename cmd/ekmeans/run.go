package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hupe1980/ekmeans"
	"github.com/hupe1980/ekmeans/dataset"
	"github.com/hupe1980/ekmeans/distance"
	"github.com/hupe1980/ekmeans/generate"
	"github.com/hupe1980/ekmeans/prommetrics"
	"github.com/hupe1980/ekmeans/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Initial center strategies.
const (
	InitSample = "sample"
	InitRandom = "random"
	InitCenter = "center"
)

type runOptions struct {
	Input         string        `yaml:"input"`
	Output        string        `yaml:"output"`
	CentersOutput string        `yaml:"centers_output"`
	K             int           `yaml:"k"`
	Equal         bool          `yaml:"equal"`
	Metric        string        `yaml:"metric"`
	MaxIterations int           `yaml:"max_iterations"`
	Init          string        `yaml:"init"`
	Seed          uint64        `yaml:"seed"`
	Dimensions    int           `yaml:"dimensions"`
	Delay         time.Duration `yaml:"delay"`
	Progress      time.Duration `yaml:"progress"`
	MetricsFile   string        `yaml:"metrics_file"`
	MemoryLimit   int64         `yaml:"memory_limit"`
	IOLimit       int64         `yaml:"io_limit"`
	Transfers     int64         `yaml:"transfers"`
}

func newRunCmd(ro *rootOptions) *cobra.Command {
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster a CSV dataset",
		Long: `Cluster the points of a CSV dataset and write every record prefixed
with the index of its cluster.

Examples:
  ekmeans run --input points.csv --output clusters.csv --k 4
  ekmeans run --input s3://data/points.csv.zst --output clusters.csv --k 8 --equal
  ekmeans run --config run.yaml --k 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ro.loadConfig(cmd, o); err != nil {
				return err
			}
			return runCluster(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), ro, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.Input, "input", "i", "", "dataset location")
	f.StringVarP(&o.Output, "output", "o", "", "assignments location")
	f.StringVar(&o.CentersOutput, "centers-output", "", "final centers location (optional)")
	f.IntVarP(&o.K, "k", "k", 2, "number of clusters")
	f.BoolVar(&o.Equal, "equal", false, "keep cluster sizes balanced")
	f.StringVar(&o.Metric, "metric", distance.Euclidean.String(), "distance metric (euclidean or manhattan)")
	f.IntVar(&o.MaxIterations, "max-iterations", ekmeans.DefaultMaxIterations, "round cap")
	f.StringVar(&o.Init, "init", InitSample, "initial centers (sample, random or center)")
	f.Uint64Var(&o.Seed, "seed", 1, "random seed for initial centers")
	f.IntVar(&o.Dimensions, "dimensions", 0, "leading fields parsed as coordinates (0 for all)")
	f.DurationVar(&o.Delay, "delay", 0, "pause after every round")
	f.DurationVar(&o.Progress, "progress", time.Second, "progress log interval")
	f.StringVar(&o.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	f.Int64Var(&o.MemoryLimit, "memory-limit", 0, "distance matrix memory limit in bytes (0 for none)")
	f.Int64Var(&o.IOLimit, "io-limit", 0, "dataset transfer limit in bytes per second (0 for none)")
	f.Int64Var(&o.Transfers, "transfers", 2, "concurrent dataset transfers")

	return cmd
}

func runCluster(ctx context.Context, stdout, stderr io.Writer, ro *rootOptions, o *runOptions) (err error) {
	logger, err := ro.logger(stderr)
	if err != nil {
		return err
	}

	switch {
	case o.Input == "":
		return errors.New("--input is required")
	case o.Output == "":
		return errors.New("--output is required")
	case o.K <= 0:
		return fmt.Errorf("--k must be positive, got %d", o.K)
	case o.Dimensions < 0:
		return fmt.Errorf("--dimensions must not be negative, got %d", o.Dimensions)
	}

	metric, err := distance.ParseMetric(o.Metric)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	runLogger := logger.WithRunID(runID)

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:       o.MemoryLimit,
		MaxConcurrentTransfers: o.Transfers,
		IOLimitBytesPerSec:     o.IOLimit,
	})

	ds, err := readDataset(ctx, rc, o.Input, func(ropts *dataset.ReadOptions) {
		ropts.Dimensions = o.Dimensions
	})
	if err != nil {
		return err
	}
	if len(ds.Points) == 0 {
		return fmt.Errorf("%s holds no points", o.Input)
	}
	runLogger.InfoContext(ctx, "dataset loaded", "input", o.Input, "points", len(ds.Points), "dimension", ds.Dimension())

	centers, err := initialCenters(o.Init, o.K, o.Seed, ds.Points)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector := prommetrics.New("ekmeans")
	reg.MustRegister(collector)

	opts := []ekmeans.Option{
		ekmeans.WithEqual(o.Equal),
		ekmeans.WithMetric(metric),
		ekmeans.WithMaxIterations(o.MaxIterations),
		ekmeans.WithLogger(logger),
		ekmeans.WithMetricsCollector(collector),
		ekmeans.WithResourceController(rc),
		ekmeans.WithRunID(runID),
		ekmeans.WithListener(ekmeans.LogProgress(runLogger, o.Progress)),
	}
	if o.Delay > 0 {
		opts = append(opts, ekmeans.WithListener(ekmeans.Delay(o.Delay)))
	}

	clusterer, err := ekmeans.New(centers, ds.Points, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, clusterer.Close())
	}()

	res, err := clusterer.Run(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeLocation(gctx, rc, o.Output, func(w io.Writer) error {
			return dataset.WriteAssignments(w, ds, res.Assignments)
		})
	})
	if o.CentersOutput != "" {
		g.Go(func() error {
			return writeLocation(gctx, rc, o.CentersOutput, func(w io.Writer) error {
				return dataset.WritePoints(w, clusterer.Centers())
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if o.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(o.MetricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	printSummary(stdout, res)

	return nil
}

// initialCenters places k centers with the named strategy.
func initialCenters(strategy string, k int, seed uint64, points [][]float64) ([][]float64, error) {
	switch strategy {
	case InitSample:
		return generate.New(seed).SamplePoints(k, points)
	case InitRandom:
		lo, hi := dataset.Bounds(points)
		return generate.New(seed).RandomInBounds(k, lo, hi), nil
	case InitCenter:
		lo, hi := dataset.Bounds(points)
		return generate.AtCenter(k, lo, hi), nil
	default:
		return nil, fmt.Errorf("unknown init strategy %q", strategy)
	}
}

func printSummary(w io.Writer, res *ekmeans.Result) {
	status := color.GreenString("converged")
	if !res.Converged {
		status = color.YellowString("stopped at iteration cap")
	}
	sizes := res.SizeStats()

	fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint("run"), res.RunID)
	fmt.Fprintf(w, "  status:   %s after %d iterations\n", status, res.Iterations)
	fmt.Fprintf(w, "  duration: %s\n", res.Duration.Round(time.Microsecond))
	fmt.Fprintf(w, "  inertia:  %.4f\n", res.Inertia)
	fmt.Fprintf(w, "  sizes:    min %g, max %g, mean %.2f, stddev %.2f\n", sizes.Min, sizes.Max, sizes.Mean, sizes.StdDev)
	fmt.Fprintf(w, "  counts:   %v\n", res.Counts)
}
