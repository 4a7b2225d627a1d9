// Package testutil provides testing utilities for ekmeans.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG for reproducible point clouds, well-separated
// Gaussian blob fixtures and helpers to inspect clustering output.
//
// # Random Points
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(100, 2)           // uniform [0, 1)
//	points, centers := rng.Blobs(4, 25, 2, 0.5)   // 4 blobs of 25 points
//
// # Inspecting Results
//
//	hist := testutil.Histogram(assignments, k)
package testutil
