package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/ekmeans/dataset"
	"github.com/hupe1980/ekmeans/generate"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	Output string  `yaml:"output"`
	N      int     `yaml:"n"`
	Dim    int     `yaml:"dim"`
	Blobs  int     `yaml:"blobs"`
	StdDev float64 `yaml:"stddev"`
	Seed   uint64  `yaml:"seed"`
}

func newGenerateCmd(ro *rootOptions) *cobra.Command {
	o := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random CSV dataset",
		Long: `Write n random points in the unit cube. With --blobs the points are
drawn from normal distributions around that many random centers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ro.loadConfig(cmd, o); err != nil {
				return err
			}
			logger, err := ro.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			points, err := generatePoints(o)
			if err != nil {
				return err
			}
			if err := writeLocation(cmd.Context(), nil, o.Output, func(w io.Writer) error {
				return dataset.WritePoints(w, points)
			}); err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "dataset written", "output", o.Output, "points", len(points))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.Output, "output", "o", "", "dataset location")
	f.IntVarP(&o.N, "n", "n", 1000, "number of points")
	f.IntVar(&o.Dim, "dim", 2, "point dimension")
	f.IntVar(&o.Blobs, "blobs", 0, "number of normal blobs (0 for uniform points)")
	f.Float64Var(&o.StdDev, "stddev", 0.05, "blob standard deviation")
	f.Uint64Var(&o.Seed, "seed", 1, "random seed")

	return cmd
}

func generatePoints(o *generateOptions) ([][]float64, error) {
	switch {
	case o.Output == "":
		return nil, errors.New("--output is required")
	case o.N < 0 || o.Dim <= 0 || o.Blobs < 0:
		return nil, fmt.Errorf("invalid shape: n=%d dim=%d blobs=%d", o.N, o.Dim, o.Blobs)
	}

	g := generate.New(o.Seed)
	if o.Blobs == 0 {
		return g.Uniform(o.N, o.Dim), nil
	}
	return g.Blobs(o.N, g.Uniform(o.Blobs, o.Dim), o.StdDev)
}
