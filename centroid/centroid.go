// Package centroid recomputes cluster centers from their member points.
package centroid

import (
	"github.com/hupe1980/ekmeans/distance"
	"github.com/viterin/vek"
)

// Mean overwrites center with the coordinate-wise mean of members and returns it.
//
// The center keeps its previous value when members is empty. Every member
// must have the center's dimension; otherwise a *distance.ErrDimensionMismatch
// is returned and center is left untouched.
func Mean(center []float64, members [][]float64) ([]float64, error) {
	if len(members) == 0 {
		return center, nil
	}
	for _, m := range members {
		if len(m) != len(center) {
			return center, &distance.ErrDimensionMismatch{Expected: len(center), Actual: len(m)}
		}
	}
	if len(center) == 0 {
		return center, nil
	}

	clear(center)
	for _, m := range members {
		vek.Add_Inplace(center, m)
	}
	vek.DivNumber_Inplace(center, float64(len(members)))

	return center, nil
}
