package main

// DefaultVentilationACH is the outdoor air change rate, 1/h
const DefaultVentilationACH = 0.2

/*
Ventilation heat gain of a zone.

	Args:
	    z: zone (its current air temperature is used)
	    w: weather record
	    ach: air changes per hour, 1/h

	Returns:
	    heat gain, W (positive when outdoor air is warmer)

	Notes:
	    ṁ = ρ_out V ACH / 3600 with ρ_out = p / (R T_out) in [0.6, 1.6]
*/
func getQVentilation(z *Zone, w WeatherRecord, ach float64) float64 {
	tOut := celsiusToKelvin(w.Temperature)
	p := w.Pressure
	if p <= 0 {
		p = getPAtm()
	}
	rho := getRhoOutdoor(p, tOut)
	mass := rho * z.Volume * max(0.0, ach) / 3600.0
	return mass * getCA() * (tOut - z.Temperature)
}
