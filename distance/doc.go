// Package distance provides the point-to-center dissimilarity functions used by
// the clustering engine.
//
// Kernels are backed by github.com/viterin/vek, which dispatches to SIMD
// implementations (AVX2/NEON) when the CPU supports them.
//
// # Supported Metrics
//
//   - Euclidean: straight-line distance (default)
//   - Manhattan: sum of absolute coordinate differences
//
// # Usage
//
//	fn, _ := distance.Provider(distance.Euclidean)
//	d, err := fn(center, point)
//
// Unlike a plain kernel, every Func checks dimensionality and reports a
// *ErrDimensionMismatch instead of silently comparing a prefix.
package distance
