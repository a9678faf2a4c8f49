package main

import (
	"gonum.org/v1/gonum/mat"
)

// share of the occupant's view held by the floor
const floorViewShare = 0.45

/*
Form factors from the occupant to the surfaces of a zone.

	Args:
	    z: zone

	Returns:
	    form factor of each surface, -, [j]; sums to 1, nil for a zone without surfaces

	Notes:
	    Floors share 0.45 in proportion to their area, the other
	    surfaces 0.55. When a zone has no floor (or only floors), the
	    whole view goes to the surfaces present.
*/
func getFMRTHum(z *Zone) []float64 {
	n := len(z.Surfaces)
	if n == 0 {
		return nil
	}

	aFloor := mat.NewVecDense(n, nil)
	aNotFloor := mat.NewVecDense(n, nil)
	for j, s := range z.Surfaces {
		if s.Orientation == DirectionFloor {
			aFloor.SetVec(j, s.Area)
		} else {
			aNotFloor.SetVec(j, s.Area)
		}
	}

	sumFloor, sumNotFloor := mat.Sum(aFloor), mat.Sum(aNotFloor)
	shareFloor, shareNotFloor := floorViewShare, 1.0-floorViewShare
	switch {
	case sumFloor <= 0:
		shareFloor, shareNotFloor = 0, 1
	case sumNotFloor <= 0:
		shareFloor, shareNotFloor = 1, 0
	}

	f := mat.NewVecDense(n, nil)
	if sumFloor > 0 {
		f.AddScaledVec(f, shareFloor/sumFloor, aFloor)
	}
	if sumNotFloor > 0 {
		f.AddScaledVec(f, shareNotFloor/sumNotFloor, aNotFloor)
	}
	return f.RawVector().Data
}

// mean radiant temperature of the occupant, degree C; the air temperature when the zone has no surfaces
func getThetaMRT(z *Zone) float64 {
	if len(z.Surfaces) == 0 {
		return kelvinToCelsius(z.Temperature)
	}
	f := mat.NewVecDense(len(z.Surfaces), getFMRTHum(z))
	thetaS := mat.NewVecDense(len(z.Surfaces), z.surfaceTemperatures())
	// Σ f = 1
	return kelvinToCelsius(mat.Dot(f, thetaS))
}
