package main

/*
Solar gain transmitted through the transparent surfaces of a zone.

	Args:
	    z: zone
	    w: weather record

	Returns:
	    transmitted solar gain, W

	Notes:
	    Σ τ A I_surface over surfaces with a solar transmittance.
	    Opaque surfaces are handled by their exterior balance.
*/
func getQTrsSol(z *Zone, w WeatherRecord) float64 {
	var q float64
	for _, s := range z.Surfaces {
		tau := s.SolarTransmittance()
		if tau <= 0 {
			continue
		}
		q += tau * s.Area * getISrf(s.Orientation, w)
	}
	return q
}

// share of transmitted solar that heats the air directly
const solarConvectiveFraction = 0.2
