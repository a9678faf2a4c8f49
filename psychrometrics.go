package main

import (
	"math"
)

/*
Saturation vapor pressure over water.

	Args:
	    theta: air temperature, degree C

	Returns:
	    saturation vapor pressure, hPa

	Notes:
	    Magnus form: 6.112 × 10^(7.5 θ / (237.7 + θ))
*/
func getPVsHPa(theta float64) float64 {
	return 6.112 * math.Pow(10.0, 7.5*theta/(237.7+theta))
}

/*
Vapor pressure of outdoor air.

	Args:
	    dewPoint: dew point temperature, degree C, nil when unavailable
	    theta: dry bulb temperature, degree C
	    rh: relative humidity, 0..1

	Returns:
	    (1) vapor pressure, hPa
	    (2) false when neither input yields a positive value

	Notes:
	    the dew point is preferred; otherwise e = RH × e_s(θ).
*/
func getVaporPressureHPa(dewPoint *float64, theta, rh float64) (float64, bool) {
	if dewPoint != nil {
		e := getPVsHPa(*dewPoint)
		if e > 0 {
			return e, true
		}
	}
	e := clip(rh, 0, 1) * getPVsHPa(theta)
	return e, e > 0
}

/*
Density of outdoor dry air.

	Args:
	    p: pressure, Pa
	    t: temperature, K

	Returns:
	    density, kg/m3, clamped to [0.6, 1.6]
*/
func getRhoOutdoor(p, t float64) float64 {
	return clip(p/(getRDryAir()*math.Max(1.0, t)), 0.6, 1.6)
}
