// Package kmeans implements the balanced (equal-size) k-means engine.
//
// The engine is generic over the center and point representations. It keeps a
// K×N distance matrix whose rows are recomputed only for centers flagged as
// changed, assigns every point to its nearest center and, in equal mode,
// enforces a soft cap of floor(N/K) points per center by cascading evictions
// of the cheapest-to-move point into the next best center.
//
// Each round runs empty-center repair, recentering, distance refresh and a new
// assignment pass until no point moves or the iteration cap is reached.
package kmeans
