package main

import "math"

// air properties used by the natural convection correlations
const (
	airKinematicViscosity = 1.5e-5       // m2/s
	airPrandtl            = 0.71         // -
	airExpansion          = 1.0 / 300.0  // 1/K
	airConductivity       = 0.026        // W/m K
	gravity               = 9.81         // m/s2
	convectionLength      = 1.0          // characteristic length, m
	exteriorRefDeltaT     = 5.0          // representative surface-air difference outdoors, K
)

/*
Rayleigh number of a surface of the characteristic length.

	Args:
	    dT: surface-air temperature difference, K
*/
func getRa(dT float64) float64 {
	nu := airKinematicViscosity
	alpha := nu / airPrandtl
	return gravity * airExpansion * dT * math.Pow(convectionLength, 3) / (nu * alpha)
}

/*
Nusselt number of a vertical plate.

	Notes:
	    Churchill and Chu; laminar form below Ra = 1e9.
*/
func getNuVertical(ra float64) float64 {
	f := 1.0 + math.Pow(0.492/airPrandtl, 9.0/16.0)
	if ra < 1e9 {
		return 0.68 + 0.67*math.Pow(ra, 0.25)/math.Pow(f, 4.0/9.0)
	}
	return 0.825 + 0.387*math.Pow(ra, 1.0/6.0)/math.Pow(f, 8.0/27.0)
}

/*
Exterior convective heat transfer coefficient.

	Args:
	    windSpeed: wind speed, m/s
	    d: surface orientation

	Returns:
	    coefficient, W/m2 K, within [2, 50]

	Notes:
	    natural part: vertical plate at a representative 5 K difference, [0.5, 8]
	    forced part: c v^0.6 with c = 3.0 roof, 2.0 floor, 3.94 walls, [0, 50]
	    combined as (h_nat³ + h_wind³)^(1/3)
*/
func getHExterior(windSpeed float64, d Direction) float64 {
	v := math.Max(0.0, windSpeed)

	hNat := clip(getNuVertical(getRa(exteriorRefDeltaT))*airConductivity/convectionLength, 0.5, 8.0)

	var c float64
	switch d {
	case DirectionRoof:
		c = 3.0
	case DirectionFloor:
		c = 2.0
	default:
		c = 3.94
	}
	hWind := clip(c*math.Pow(v, 0.6), 0.0, 50.0)

	h := math.Cbrt(math.Pow(hNat, 3) + math.Pow(hWind, 3))
	return clip(h, 2.0, 50.0)
}

/*
Interior convective heat transfer coefficient.

	Args:
	    d: surface orientation
	    dT: surface-air temperature difference, K (floored at 0.1)

	Returns:
	    coefficient, W/m2 K, within [1, 10]

	Notes:
	    Roof (heated facing up): Nu = 0.54 Ra^1/4, or 0.15 Ra^1/3 above 1e9
	    Floor (heated facing down): Nu = 0.27 Ra^1/4, or 0.075 Ra^1/3 above 1e9
	    Walls: Churchill and Chu
*/
func getHInterior(d Direction, dT float64) float64 {
	ra := getRa(math.Max(0.1, math.Abs(dT)))

	var nu float64
	switch d {
	case DirectionRoof:
		if ra < 1e9 {
			nu = 0.54 * math.Pow(ra, 0.25)
		} else {
			nu = 0.15 * math.Cbrt(ra)
		}
	case DirectionFloor:
		if ra < 1e9 {
			nu = 0.27 * math.Pow(ra, 0.25)
		} else {
			nu = 0.075 * math.Cbrt(ra)
		}
	default:
		nu = getNuVertical(ra)
	}
	return clip(nu*airConductivity/convectionLength, 1.0, 10.0)
}

/*
Linearized long-wave radiative coefficient.

	Args:
	    eps: emissivity, -
	    t: representative temperature, K

	Returns:
	    4 ε σ T³, W/m2 K
*/
func getHRad(eps, t float64) float64 {
	return 4.0 * eps * getSgm() * math.Pow(t, 3)
}
