package main

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultSkyTempWeights weights measured infrared highest.
func DefaultSkyTempWeights() SkyTempWeights {
	return SkyTempWeights{EPWIR: 1.0, Brunt: 0.4, Brutsaert: 0.3, Swinbank: 0.5}
}

/*
Effective sky temperature.

	Args:
	    w: weather record
	    tOut: outdoor air temperature, K
	    weights: model weights

	Returns:
	    sky temperature, K, within [T_out - 40, T_out - 2]

	Notes:
	    Candidates:
	      measured horizontal infrared (only when > 1 W/m2): (L/σ)^0.25
	      Brunt: ε = 0.51 + 0.066 √e[hPa]
	      Brutsaert: ε = 1.24 (e[hPa] / T)^(1/7)
	      Swinbank: L = 5.31e-13 T^6
	    Each clear-sky emissivity is scaled by (1 + 0.22 N²) with N the
	    total sky cover fraction when known. A model whose inputs are
	    missing is skipped. Candidates are weight-averaged; when every
	    weight is zero the median is used.
*/
func getTSky(w WeatherRecord, tOut float64, weights SkyTempWeights) float64 {
	ta := clip(tOut, 200.0, 330.0)
	sgm := getSgm()

	var cloud float64 = 1.0
	if w.TotalSkyCover != nil {
		n := clip(*w.TotalSkyCover, 0, 10) / 10.0
		cloud = 1.0 + 0.22*n*n
	}

	var candidates, ws []float64
	add := func(t, weight float64) {
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			candidates = append(candidates, t)
			ws = append(ws, weight)
		}
	}

	if w.Infrared != nil && *w.Infrared > 1.0 {
		add(math.Pow(*w.Infrared/sgm, 0.25), weights.EPWIR)
	}

	if e, ok := getVaporPressureHPa(w.DewPoint, kelvinToCelsius(ta), w.Humidity); ok {
		epsBrunt := clip(0.51+0.066*math.Sqrt(e), 0.2, 1.0) * cloud
		add(math.Pow(epsBrunt, 0.25)*ta, weights.Brunt)

		epsBruts := clip(1.24*math.Pow(e/ta, 1.0/7.0), 0.2, 1.0) * cloud
		add(math.Pow(epsBruts, 0.25)*ta, weights.Brutsaert)
	}

	lClear := 5.31e-13 * math.Pow(ta, 6)
	epsSwin := lClear / (sgm * math.Pow(ta, 4)) * cloud
	add(math.Pow(epsSwin, 0.25)*ta, weights.Swinbank)

	var tSky float64
	switch len(candidates) {
	case 0:
		tSky = ta
	case 1:
		tSky = candidates[0]
	default:
		var total float64
		for _, v := range ws {
			total += v
		}
		if total > 0 {
			tSky = stat.Mean(candidates, ws)
		} else {
			sort.Float64s(candidates)
			tSky = stat.Quantile(0.5, stat.Empirical, candidates, nil)
		}
	}

	return clip(tSky, ta-40.0, ta-2.0)
}

/*
Radiative environment temperature seen by the outer face of a surface.

	Args:
	    d: surface orientation
	    tSky: sky temperature, K
	    tOut: outdoor air temperature, K (taken as the ground temperature)

	Returns:
	    environment temperature, K, within [150, 340]

	Notes:
	    T_env⁴ = F_sky T_sky⁴ + (1 - F_sky) T_gnd⁴
*/
func getTEnv(d Direction, tSky, tOut float64) float64 {
	fSky := clip(d.FSky(), 0.0, 1.0)
	tGnd := clip(tOut, 200.0, 330.0)
	t4 := fSky*math.Pow(tSky, 4) + getFGnd(fSky)*math.Pow(tGnd, 4)
	return clip(math.Pow(t4, 0.25), 150.0, 340.0)
}

/*
Ground temperature under a floor.

	Returns:
	    annual mean dry bulb temperature, K, or the outdoor air temperature
	    when the annual mean is unknown
*/
func getTGround(w WeatherRecord, tOut float64) float64 {
	if w.AnnualMeanTemperature != nil {
		return celsiusToKelvin(*w.AnnualMeanTemperature)
	}
	return tOut
}
