package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/hupe1980/ekmeans/blobstore"
	"github.com/hupe1980/ekmeans/blobstore/minio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	goleak.VerifyTestMain(m)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// clusterSizes counts the records of an assignments file per cluster.
func clusterSizes(t *testing.T, path string) map[string]int {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	sizes := make(map[string]int)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		label, _, ok := strings.Cut(line, ",")
		require.True(t, ok, "line %q", line)
		sizes[label]++
	}
	return sizes
}

func TestGenerateAndRun(t *testing.T) {
	dir := t.TempDir()
	points := filepath.Join(dir, "points.csv")

	_, err := execute(t, "generate", "--output", points, "--n", "40", "--blobs", "4", "--seed", "3")
	require.NoError(t, err)

	out, err := execute(t, "run",
		"--input", points,
		"--output", filepath.Join(dir, "clusters.csv"),
		"--centers-output", filepath.Join(dir, "centers.csv"),
		"--metrics-file", filepath.Join(dir, "ekmeans.prom"),
		"--k", "4",
		"--equal",
		"--seed", "3",
		"--log-level", "debug",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "run ")
	assert.Contains(t, out, "counts:   [10 10 10 10]")
	assert.Equal(t, map[string]int{"0": 10, "1": 10, "2": 10, "3": 10}, clusterSizes(t, filepath.Join(dir, "clusters.csv")))

	centers, err := os.ReadFile(filepath.Join(dir, "centers.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(centers)), "\n"), 4)

	metrics, err := os.ReadFile(filepath.Join(dir, "ekmeans.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "ekmeans_runs_total")
	assert.Contains(t, string(metrics), "ekmeans_points_clustered_total 40")
}

func TestRun_Compressed(t *testing.T) {
	dir := t.TempDir()
	points := filepath.Join(dir, "points.csv.lz4")
	clusters := filepath.Join(dir, "clusters.csv.lz4")

	_, err := execute(t, "generate", "--output", points, "--n", "40", "--dim", "2")
	require.NoError(t, err)

	_, err = execute(t, "run", "--input", points, "--output", clusters, "--k", "2", "--io-limit", "4096")
	require.NoError(t, err)

	ds, err := readDataset(context.Background(), nil, clusters)
	require.NoError(t, err)
	assert.Len(t, ds.Points, 40)
	assert.Equal(t, 3, ds.Dimension())
}

func TestRun_InitStrategies(t *testing.T) {
	dir := t.TempDir()
	points := filepath.Join(dir, "points.csv")

	_, err := execute(t, "generate", "--output", points, "--n", "30", "--blobs", "3")
	require.NoError(t, err)

	for _, strategy := range []string{InitSample, InitRandom, InitCenter} {
		t.Run(strategy, func(t *testing.T) {
			clusters := filepath.Join(dir, strategy+".csv")
			_, err := execute(t, "run", "--input", points, "--output", clusters, "--k", "3", "--equal", "--init", strategy)
			require.NoError(t, err)
			assert.Equal(t, map[string]int{"0": 10, "1": 10, "2": 10}, clusterSizes(t, clusters))
		})
	}
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	points := filepath.Join(dir, "points.csv")
	clusters := filepath.Join(dir, "clusters.csv")

	_, err := execute(t, "generate", "--output", points, "--n", "30")
	require.NoError(t, err)

	config := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(config, []byte(
		"input: "+points+"\n"+
			"output: "+clusters+"\n"+
			"k: 2\n"+
			"equal: true\n"+
			"log_format: json\n"), 0o600))

	t.Run("file", func(t *testing.T) {
		_, err := execute(t, "run", "--config", config)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"0": 15, "1": 15}, clusterSizes(t, clusters))
	})

	t.Run("flags win", func(t *testing.T) {
		_, err := execute(t, "run", "--config", config, "--k", "3")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"0": 10, "1": 10, "2": 10}, clusterSizes(t, clusters))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := execute(t, "run", "--config", filepath.Join(dir, "nope.yaml"))
		assert.ErrorContains(t, err, "read config")
	})
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	points := filepath.Join(dir, "points.csv")
	require.NoError(t, os.WriteFile(points, []byte("0,0\n1,1\n"), 0o600))
	out := filepath.Join(dir, "out.csv")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"run", "--output", out}, "--input is required"},
		{"no output", []string{"run", "--input", points}, "--output is required"},
		{"zero k", []string{"run", "--input", points, "--output", out, "--k", "0"}, "--k must be positive"},
		{"missing input", []string{"run", "--input", filepath.Join(dir, "nope.csv"), "--output", out}, "open"},
		{"negative dimensions", []string{"run", "--input", points, "--output", out, "--dimensions=-1"}, "--dimensions must not be negative"},
		{"metric", []string{"run", "--input", points, "--output", out, "--metric", "cosine"}, "cosine"},
		{"log level", []string{"run", "--input", points, "--output", out, "--log-level", "loud"}, "invalid log level"},
		{"log format", []string{"run", "--input", points, "--output", out, "--log-format", "xml"}, "invalid log format"},
		{"init", []string{"run", "--input", points, "--output", out, "--init", "kmeans++"}, "unknown init strategy"},
		{"too many centers", []string{"run", "--input", points, "--output", out, "--k", "3"}, "not enough points"},
		{"memory limit", []string{"run", "--input", points, "--output", out, "--memory-limit", "1"}, "memory"},
		{"generate shape", []string{"generate", "--output", out, "--dim", "0"}, "invalid shape"},
		{"generate output", []string{"generate"}, "--output is required"},
		{"scheme", []string{"generate", "--output", "ftp://host/points.csv"}, "unsupported scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "failed runs must not leave output behind")
}

func TestResolveLocation(t *testing.T) {
	ctx := context.Background()

	store, name, err := resolveLocation(ctx, filepath.Join("data", "points.csv"))
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)
	assert.Equal(t, "points.csv", name)

	store, name, err = resolveLocation(ctx, "minio://localhost:9000/datasets/runs/points.csv.zst")
	require.NoError(t, err)
	assert.IsType(t, &minio.Store{}, store)
	assert.Equal(t, "runs/points.csv.zst", name)

	for _, bad := range []string{"s3://bucket", "s3:///key", "minio://localhost:9000/bucket", "gs://bucket/key"} {
		_, _, err := resolveLocation(ctx, bad)
		assert.Error(t, err, bad)
	}
}

func TestRootCmd(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "generate")

	for _, flag := range []string{"config", "log-format", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}
