package main

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// HeatBalanceSettings tunes the surface solver and the zone air balance.
type HeatBalanceSettings struct {
	VentilationACH float64 // 1/h
	SkyTempWeights SkyTempWeights
	MaxIterations  int     // exterior surface iterations
	Relaxation     float64 // under-relaxation factor, -
	Tolerance      float64 // convergence tolerance on T_ext, K
}

func DefaultHeatBalanceSettings() HeatBalanceSettings {
	return HeatBalanceSettings{
		VentilationACH: DefaultVentilationACH,
		SkyTempWeights: DefaultSkyTempWeights(),
		MaxIterations:  30,
		Relaxation:     0.3,
		Tolerance:      0.005,
	}
}

// HeatBalance solves the surface and zone air energy balances.
type HeatBalance struct {
	settings HeatBalanceSettings
}

func NewHeatBalance(settings HeatBalanceSettings) *HeatBalance {
	def := DefaultHeatBalanceSettings()
	if settings.MaxIterations <= 0 {
		settings.MaxIterations = def.MaxIterations
	}
	if settings.Relaxation <= 0 || settings.Relaxation > 1 {
		settings.Relaxation = def.Relaxation
	}
	if settings.Tolerance <= 0 {
		settings.Tolerance = def.Tolerance
	}
	settings.VentilationACH = math.Max(0.0, settings.VentilationACH)
	return &HeatBalance{settings: settings}
}

func (hb *HeatBalance) Settings() HeatBalanceSettings {
	return hb.settings
}

// SurfaceSolution is the outcome of one surface temperature solve.
type SurfaceSolution struct {
	Exterior   float64 // K
	Interior   float64 // K
	Iterations int
	Residual   float64 // last change of T_ext, K
	Converged  bool
}

/*
Solve the exterior and interior temperatures of a surface.

	Args:
	    s: surface (its InternalRadiativeFlux is used)
	    w: weather record
	    tZone: zone air temperature, K

	Returns:
	    surface solution; the interior temperature is also written to
	    s.Temperature and the exterior one to s.ExteriorTemperature

	Notes:
	    exterior balance, linearized about T_m = T_ext:
	      (h_ext + h_rad_ext + U_eq) T_ext
	          = h_ext T_out + h_rad_ext T_env_lin + α I + U_eq T_zone - q_eq
	    U_eq = U h_in / (h_in + U), q_eq = U / (h_in + U) q_int
	    interior face:
	      h_in (T_int - T_zone) + U (T_int - T_ext) + q_int = 0
	    The iteration stops at the cap without error when the tolerance
	    is not reached.
*/
func (hb *HeatBalance) CalculateSurfaceTemperature(s *Surface, w WeatherRecord, tZone float64) SurfaceSolution {
	tZone = clip(tZone, 250.0, 330.0)
	tOut := clip(celsiusToKelvin(w.Temperature), 200.0, 330.0)
	tSky := clip(getTSky(w, tOut, hb.settings.SkyTempWeights), 150.0, 330.0)

	u := clip(s.ConductionU(), 0.05, 10.0)

	var hExt, iSol, tEnv float64
	if s.Orientation == DirectionFloor {
		// ground boundary: weak natural convection, no sun, ground radiation
		hExt = 0.5
		iSol = 0.0
		tEnv = getTGround(w, tOut)
	} else {
		hExt = getHExterior(w.WindSpeed, s.Orientation)
		iSol = math.Max(0.0, getISrf(s.Orientation, w))
		tEnv = getTEnv(s.Orientation, tSky, tOut)
	}

	alpha, eps := s.OuterOptics()
	hRadIn := clip(getHRad(s.InnerEmissivity(), tZone), 0.1, 10.0)
	q := s.InternalRadiativeFlux
	relax := hb.settings.Relaxation

	sol := SurfaceSolution{}
	tExt := tOut
	for sol.Iterations < hb.settings.MaxIterations {
		sol.Iterations++

		tm := clip(tExt, 200.0, 330.0)
		tm3 := tm * tm * tm
		hRadExt := clip(getHRad(eps, tm), 0.1, 20.0)
		tEnvLin := clip((math.Pow(tEnv, 4)-tm3*tm)/(4.0*tm3)+tm, 150.0, 330.0)

		hIn := math.Max(0.1, getHInterior(s.Orientation, tZone-tExt)+hRadIn)
		uEq := u * hIn / (hIn + u)
		qEq := u / math.Max(hIn+u, 1e-6) * q

		denom := hExt + hRadExt + uEq
		rhs := hExt*tOut + hRadExt*tEnvLin + alpha*iSol + uEq*tZone - qEq
		tNew := rhs / math.Max(denom, 1e-6)

		tNew = clip((1.0-relax)*tExt+relax*tNew, 230.0, 340.0)
		sol.Residual = math.Abs(tNew - tExt)
		tExt = tNew
		if sol.Residual < hb.settings.Tolerance {
			sol.Converged = true
			break
		}
	}

	hIn := math.Max(0.1, getHInterior(s.Orientation, tZone-tExt)+hRadIn)
	tInt := clip((hIn*tZone+u*tExt-q)/math.Max(hIn+u, 1e-6), 230.0, 340.0)

	sol.Exterior = tExt
	sol.Interior = tInt
	s.ExteriorTemperature = tExt
	s.Temperature = tInt
	return sol
}

/*
Free-float update of the zone air temperature over one step.

	Args:
	    z: zone (surface temperatures must be current)
	    w: weather record
	    dt: step length, s

	Returns:
	    new zone temperature, K, also written to z.Temperature

	Notes:
	    Q = 0.2 Q_sol + Q_conv + Q_int + Q_vent
	    C = ρ V c_p + 50 V × 880 (air plus effective building mass)
	    ΔT = Q dt / C limited to ±5 K
*/
func (hb *HeatBalance) CalculateZoneTemperature(z *Zone, w WeatherRecord, dt float64) float64 {
	q := solarConvectiveFraction*getQTrsSol(z, w) +
		zoneConvection(z) +
		getQInternalSensible(z) +
		getQVentilation(z, w, hb.settings.VentilationACH)

	dT := clip(q*dt/getCZone(z), -5.0, 5.0)
	z.Temperature = clip(z.Temperature+dT, 250.0, 330.0)
	return z.Temperature
}

/*
Thermal capacitance of a zone.

	Returns:
	    capacitance, J/K

	Notes:
	    air: ρ V c_p; building: 50 kg per m3 of zone volume at 880 J/kg K
*/
func getCZone(z *Zone) float64 {
	cAir := getRhoA() * z.Volume * getCA()
	cBuilding := z.Volume * getMFurniture() * getCFurniture()
	return math.Max(1.0, cAir+cBuilding)
}

/*
Spread the radiant internal and solar gains over the interior faces.

	Returns:
	    (1) internal load split, W
	    (2) transmitted solar gain, W
*/
func (hb *HeatBalance) DistributeRadiantGains(z *Zone, w WeatherRecord) (InternalLoads, float64) {
	qSol := getQTrsSol(z, w)
	loads := splitInternalLoads(z)
	distributeRadiantGain(z, loads.Radiative+(1.0-solarConvectiveFraction)*qSol)
	return loads, qSol
}

// HeatFlows decomposes the sensible heat flows into a zone, W
type HeatFlows struct {
	Solar       float64 // transmitted solar reaching the air
	Convection  float64 // from interior surfaces
	Radiation   float64 // interior long-wave exchange, not part of Total
	Internal    float64 // internal gains reaching the air
	Ventilation float64
	Total       float64
}

/*
Net sensible heat flow into a zone held at a fixed temperature.

	Args:
	    z: zone
	    w: weather record
	    tTarget: zone air temperature to evaluate at, K

	Returns:
	    heat flows; Total > 0 is a gain that must be removed by cooling

	Notes:
	    surface temperatures are re-solved at tTarget and left there;
	    the zone air temperature is restored afterwards.
*/
func (hb *HeatBalance) ComputeSensibleBalance(z *Zone, w WeatherRecord, tTarget float64) HeatFlows {
	loads, qSol := hb.DistributeRadiantGains(z, w)

	for _, s := range z.Surfaces {
		hb.CalculateSurfaceTemperature(s, w, tTarget)
	}

	prev := z.Temperature
	z.Temperature = tTarget
	f := HeatFlows{
		Solar:       solarConvectiveFraction * qSol,
		Convection:  zoneConvection(z),
		Radiation:   zoneRadiation(z),
		Internal:    loads.Convective,
		Ventilation: getQVentilation(z, w, hb.settings.VentilationACH),
	}
	z.Temperature = prev

	f.Total = f.Convection + f.Ventilation + f.Internal + f.Solar
	return f
}

/*
Heat flows of a zone in its current state.

	Notes:
	    the free-float view: all sensible internal gains, the full
	    transmitted solar gain and no surface re-solve.
*/
func (hb *HeatBalance) ZoneHeatSummary(z *Zone, w WeatherRecord) HeatFlows {
	f := HeatFlows{
		Solar:       getQTrsSol(z, w),
		Convection:  zoneConvection(z),
		Radiation:   zoneRadiation(z),
		Internal:    getQInternalSensible(z),
		Ventilation: getQVentilation(z, w, hb.settings.VentilationACH),
	}
	f.Total = solarConvectiveFraction*f.Solar + f.Convection + f.Internal + f.Ventilation
	return f
}

/*
Convective gain from the interior faces.

	Returns:
	    Σ h_c A (T_s - T_zone), W
*/
func zoneConvection(z *Zone) float64 {
	if len(z.Surfaces) == 0 {
		return 0.0
	}
	// T_s - T_zone, K, [j]
	dT := z.surfaceTemperatures()
	floats.AddConst(-z.Temperature, dT)

	// h_c A, W/K, [j]
	hA := z.surfaceAreas()
	for j, s := range z.Surfaces {
		hA[j] *= getHInterior(s.Orientation, dT[j])
	}
	return floats.Dot(hA, dT)
}

/*
Long-wave exchange between the interior faces and the zone.

	Returns:
	    Σ h_r A (T_s - T_zone), W

	Notes:
	    h_r = ε σ (T_s² + T_z²)(T_s + T_z) within [0.1, 10]
*/
func zoneRadiation(z *Zone) float64 {
	if len(z.Surfaces) == 0 {
		return 0.0
	}
	tz := clip(z.Temperature, 230.0, 340.0)

	ts := z.surfaceTemperatures()
	for j := range ts {
		ts[j] = clip(ts[j], 230.0, 340.0)
	}

	// h_r A, W/K, [j]
	hA := z.surfaceAreas()
	for j, s := range z.Surfaces {
		hA[j] *= clip(s.InnerEmissivity()*getSgm()*(ts[j]*ts[j]+tz*tz)*(ts[j]+tz), 0.1, 10.0)
	}

	floats.AddConst(-tz, ts)
	return floats.Dot(hA, ts)
}
