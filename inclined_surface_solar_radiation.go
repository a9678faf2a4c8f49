package main

import (
	"math"
	"time"
)

/*
View factor of a tilted plane to the sky.

	Args:
	    beta: tilt angle, rad (0 horizontal facing up, π/2 vertical, π facing down)

	Returns:
	    view factor to the sky, -

	Notes:
	    (1 + cos β) / 2
*/
func getFSky(beta float64) float64 {
	return (1.0 + math.Cos(beta)) / 2.0
}

/*
View factor of a tilted plane to the ground.

	Notes:
	    1 - F_sky
*/
func getFGnd(fSky float64) float64 {
	return 1.0 - fSky
}

/*
Solar irradiance incident on a building surface.

	Args:
	    d: surface orientation
	    w: weather record

	Returns:
	    incident irradiance, W/m2

	Notes:
	    Floors receive no solar radiation.
	    With site and time available, the beam, sky-diffuse and
	    ground-reflected components are computed on the tilted plane;
	    otherwise a seasonal orientation factor scales GHI.
*/
func getISrf(d Direction, w WeatherRecord) float64 {
	if d == DirectionFloor {
		return 0.0
	}
	if w.Site == nil || w.Datetime.IsZero() {
		return w.GHI * getSeasonalFactor(d, w.Month)
	}

	albedo := clip(w.Albedo, 0.0, 0.9)
	pos := calcSolarPosition(*w.Site, w.Datetime)
	beta := d.Tilt()

	cosZ := math.Cos(pos.Zenith)
	dni := w.DNI
	if dni <= 0 && w.GHI > 0 {
		dni = math.Max(0, (w.GHI-w.DHI)/math.Max(1e-3, cosZ))
	}

	// beam
	cosTheta := cosZ*math.Cos(beta) + math.Sin(pos.Zenith)*math.Sin(beta)*math.Cos(pos.Azimuth-d.Azimuth())
	var iDn float64
	if pos.Altitude > 0 {
		iDn = dni * math.Max(0, cosTheta)
	}

	fSky := getFSky(beta)
	iSky := w.DHI * fSky
	iRef := w.GHI * albedo * getFGnd(fSky)

	return math.Max(0, iDn+iSky+iRef)
}

/*
Seasonal orientation factor applied to GHI when solar geometry is unavailable.

	Notes:
	    DJF: S 1.5, N 0.1, E/W 0.7, Roof 0.6
	    MAM: S 1.2, N 0.3, E/W 0.9, Roof 0.9
	    JJA: S 0.7, N 0.5, E/W 0.6, Roof 1.3
	    SON: S 1.2, N 0.2, E/W 0.8, Roof 1.0
	    Floor 0, unknown orientation 0.5
*/
func getSeasonalFactor(d Direction, month int) float64 {
	var s, n, ew, roof float64
	switch time.Month(month) {
	case time.December, time.January, time.February:
		s, n, ew, roof = 1.5, 0.1, 0.7, 0.6
	case time.March, time.April, time.May:
		s, n, ew, roof = 1.2, 0.3, 0.9, 0.9
	case time.June, time.July, time.August:
		s, n, ew, roof = 0.7, 0.5, 0.6, 1.3
	default:
		s, n, ew, roof = 1.2, 0.2, 0.8, 1.0
	}
	switch d {
	case DirectionS:
		return s
	case DirectionN:
		return n
	case DirectionE, DirectionW:
		return ew
	case DirectionRoof:
		return roof
	case DirectionFloor:
		return 0.0
	default:
		return 0.5
	}
}
