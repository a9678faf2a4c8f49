package main

// initial air and surface temperature, K
func getInitialTemperature() float64 {
	return celsiusToKelvin(20.0)
}

/*
Put a zone and its surfaces into the initial state.

	Notes:
	    air and surfaces start at 20 degree C, loads and energies at zero,
	    internal radiative flux at zero.
*/
func initializeZoneConditions(z *Zone) {
	t0 := getInitialTemperature()
	z.Temperature = t0
	z.CoolingLoad = 0.0
	z.HeatingLoad = 0.0
	z.LatentLoad = 0.0
	z.CoolingEnergy = 0.0
	z.HeatingEnergy = 0.0
	z.Iterations = 0
	z.Residual = 0.0
	z.SurfaceTemperatures = make(map[string]float64, len(z.Surfaces))
	for _, s := range z.Surfaces {
		s.Temperature = t0
		s.ExteriorTemperature = t0
		s.InternalRadiativeFlux = 0.0
		z.SurfaceTemperatures[s.Name] = t0
	}
}

// snapshotSurfaceTemperatures records the current zone-facing surface temperatures.
func snapshotSurfaceTemperatures(z *Zone) {
	for _, s := range z.Surfaces {
		z.SurfaceTemperatures[s.Name] = s.Temperature
	}
}
