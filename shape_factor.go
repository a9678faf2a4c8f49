package main

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

/*
Distribute radiant gains over the interior faces of a zone.

	Args:
	    z: zone
	    qRad: radiant gain to distribute, W

	Returns:
	    gain absorbed by each surface, W, [j]

	Notes:
	    the flux is reset and spread uniformly per unit surface area,
	    so each face absorbs qRad A_j / Σ A.
*/
func distributeRadiantGain(z *Zone, qRad float64) []float64 {
	a := z.surfaceAreas()
	q := make([]float64, len(a))
	for _, s := range z.Surfaces {
		s.InternalRadiativeFlux = 0.0
	}
	total := math.Max(0.0, qRad)
	if total <= 0 || len(a) == 0 {
		return q
	}

	// Σ A, m2
	aSum := math.Max(1e-6, floats.Sum(a))
	floats.ScaleTo(q, total/aSum, a)

	flux := total / aSum
	for _, s := range z.Surfaces {
		s.InternalRadiativeFlux = flux
	}
	return q
}
