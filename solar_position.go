package main

import (
	"math"
	"time"
)

// SolarPosition is the sun position seen from a site.
type SolarPosition struct {
	Zenith   float64 // zenith angle, rad
	Altitude float64 // altitude angle, rad
	Azimuth  float64 // azimuth from north, clockwise, rad
}

/*
Sun position for a local standard time.

	Args:
	    site: station location
	    t: local standard time (wall clock of the weather file)

	Returns:
	    solar position

	Notes:
	    Spencer (1971) declination and equation of time.
	    true solar time = clock time + (EoT + 4 (λ - λ_std)) / 60
*/
func calcSolarPosition(site Site, t time.Time) SolarPosition {
	phi, _ := site.phiLambda()

	// day angle, rad
	gamma := 2.0 * math.Pi * float64(t.YearDay()-1) / 365.0

	delta := getDeclination(gamma)
	eot := getEquationOfTime(gamma)

	// time offset, min
	offset := eot + 4.0*(site.Longitude-site.standardMeridian())
	clock := float64(t.Hour()) + float64(t.Minute())/60.0
	tst := clock + offset/60.0

	// hour angle, rad
	omega := (15.0 * (tst - 12.0)) * math.Pi / 180.0

	cosZ := math.Sin(phi)*math.Sin(delta) + math.Cos(phi)*math.Cos(delta)*math.Cos(omega)
	cosZ = clip(cosZ, -1.0, 1.0)
	zenith := math.Acos(cosZ)

	return SolarPosition{
		Zenith:   zenith,
		Altitude: math.Pi/2.0 - zenith,
		Azimuth:  getSolarAzimuth(phi, delta, omega, zenith),
	}
}

/*
Solar declination.

	Args:
	    gamma: day angle, rad

	Returns:
	    declination, rad
*/
func getDeclination(gamma float64) float64 {
	return 0.006918 -
		0.399912*math.Cos(gamma) + 0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) + 0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) + 0.00148*math.Sin(3*gamma)
}

/*
Equation of time.

	Args:
	    gamma: day angle, rad

	Returns:
	    equation of time, min
*/
func getEquationOfTime(gamma float64) float64 {
	return 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) - 0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) - 0.040849*math.Sin(2*gamma))
}

/*
Solar azimuth.

	Returns:
	    azimuth from north, clockwise, rad, in [0, 2π)

	Notes:
	    undefined with the sun at the zenith; 0 is returned.
*/
func getSolarAzimuth(phi, delta, omega, zenith float64) float64 {
	sinZ := math.Sin(zenith)
	if sinZ < 1e-9 {
		return 0.0
	}
	cosAz := (math.Sin(delta) - math.Cos(zenith)*math.Sin(phi)) / (sinZ * math.Cos(phi))
	az := math.Acos(clip(cosAz, -1.0, 1.0))
	// afternoon: sun west of the meridian
	if omega > 0 {
		az = 2.0*math.Pi - az
	}
	return az
}
