package main

import (
	"fmt"
	"math"
	"strings"
)

// SystemKind selects the performance curves of the HVAC system.
type SystemKind string

const (
	SystemStandard SystemKind = "standard"
	SystemSimple   SystemKind = "simple"
	SystemVRF      SystemKind = "vrf"
	SystemHeatPump SystemKind = "heat_pump"
)

func SystemKindFromString(str string) (SystemKind, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "", "standard", "default":
		return SystemStandard, nil
	case "simple":
		return SystemSimple, nil
	case "vrf":
		return SystemVRF, nil
	case "heat_pump", "heatpump":
		return SystemHeatPump, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSystem, str)
	}
}

// reference outdoor temperature of the heating COP, K
func getHeatingRefTemp() float64 {
	return celsiusToKelvin(7.0)
}

// HVACSystem converts zone loads into delivered energy.
type HVACSystem struct {
	Kind SystemKind

	CoolingSetpoint  float64 // K
	HeatingSetpoint  float64 // K
	HumiditySetpoint float64 // relative humidity, 0..1

	COPCoolingRef float64 // -
	COPHeatingRef float64 // -
	COPRefTemp    float64 // K
	PLRCoeffA     float64 // -
	PLRCoeffB     float64 // -

	MaxCoolingCapacity float64 // W
	MaxHeatingCapacity float64 // W
	AirMassFlow        float64 // kg/s
	LatentHeat         float64 // J/kg
}

/*
Build the HVAC system from its configuration.

	Notes:
	    setpoints are given in degree C and stored in K.
	    VRF uses PLR coefficients 0.05 / 0.95, the heat pump a reference
	    heating COP of 4.0 unless configured.
*/
func NewHVACSystem(cfg HVACConfig) (*HVACSystem, error) {
	kind, err := SystemKindFromString(cfg.System)
	if err != nil {
		return nil, err
	}

	copHeatingDefault := 3.0
	if kind == SystemHeatPump {
		copHeatingDefault = 4.0
	}
	plrA, plrB := 0.125, 0.875
	if kind == SystemVRF {
		plrA, plrB = 0.05, 0.95
	}

	return &HVACSystem{
		Kind:               kind,
		CoolingSetpoint:    celsiusToKelvin(floatOr(cfg.CoolingSetpoint, 26.0)),
		HeatingSetpoint:    celsiusToKelvin(floatOr(cfg.HeatingSetpoint, 20.0)),
		HumiditySetpoint:   floatOr(cfg.HumiditySetpoint, 0.5),
		COPCoolingRef:      floatOr(cfg.COPCooling, 3.5),
		COPHeatingRef:      floatOr(cfg.COPHeating, copHeatingDefault),
		COPRefTemp:         celsiusToKelvin(floatOr(cfg.COPRefTemp, 35.0)),
		PLRCoeffA:          floatOr(cfg.PLRCoeffA, plrA),
		PLRCoeffB:          floatOr(cfg.PLRCoeffB, plrB),
		MaxCoolingCapacity: floatOr(cfg.CoolingCapacity, 50000.0),
		MaxHeatingCapacity: floatOr(cfg.HeatingCapacity, 40000.0),
		AirMassFlow:        floatOr(cfg.AirMassFlow, 2.0),
		LatentHeat:         floatOr(cfg.LatentHeatOfVapour, getLWtr()),
	}, nil
}

/*
Cooling COP at an outdoor temperature.

	Args:
	    tOutdoor: outdoor temperature, K

	Returns:
	    COP within [1, 6]

	Notes:
	    COP_ref (1 - 0.02 ΔT - 0.0005 ΔT²), ΔT = T_out - T_ref
	    The simple system returns the reference COP.
*/
func (h *HVACSystem) CopCooling(tOutdoor float64) float64 {
	if h.Kind == SystemSimple {
		return h.COPCoolingRef
	}
	dT := clip(tOutdoor, 250.0, 330.0) - h.COPRefTemp
	cop := h.COPCoolingRef * (1.0 - 0.02*dT - 0.0005*dT*dT)
	return clip(cop, 1.0, 6.0)
}

/*
Heating COP at an outdoor temperature.

	Args:
	    tOutdoor: outdoor temperature, K

	Returns:
	    COP within [1, 5]

	Notes:
	    reference 7 degree C, ΔT = T_out - T_ref:
	      ΔT < -10:      1 + 0.04 ΔT - 0.001 ΔT²
	      -10 <= ΔT < 0: 1 + 0.03 ΔT - 0.0006 ΔT²
	      ΔT >= 0:       1 + 0.015 ΔT - 0.0003 ΔT², held at its
	                     maximum beyond ΔT = 25 K
	    The heat pump degrades 1.5 times faster below the reference.
	    The simple system returns the reference COP.
*/
func (h *HVACSystem) CopHeating(tOutdoor float64) float64 {
	if h.Kind == SystemSimple {
		return h.COPHeatingRef
	}
	dT := clip(tOutdoor, 250.0, 330.0) - getHeatingRefTemp()

	steep := 1.0
	if h.Kind == SystemHeatPump {
		steep = 1.5
	}

	var f float64
	switch {
	case dT < -10.0:
		f = 1.0 + steep*(0.04*dT-0.001*dT*dT)
	case dT < 0.0:
		f = 1.0 + steep*(0.03*dT-0.0006*dT*dT)
	default:
		d := math.Min(dT, 25.0)
		f = 1.0 + 0.015*d - 0.0003*d*d
	}
	return clip(h.COPHeatingRef*f, 1.0, 5.0)
}

/*
Part load efficiency factor.

	Args:
	    plr: part load ratio, -

	Returns:
	    factor a + b PLR; 0 when the system is off

	Notes:
	    standard: [0.1, 1]; VRF: [0.05, 1]; simple: always 1
*/
func (h *HVACSystem) PartLoadFactor(plr float64) float64 {
	if h.Kind == SystemSimple {
		return 1.0
	}
	if plr <= 0 {
		return 0.0
	}
	lo := 0.1
	if h.Kind == SystemVRF {
		lo = 0.05
	}
	return clip(h.PLRCoeffA+h.PLRCoeffB*plr, lo, 1.0)
}

/*
Energy delivered to meet a load over one step.

	Args:
	    load: load, W
	    mode: COOLING or HEATING
	    dt: step length, s
	    tOutdoor: outdoor temperature, K

	Returns:
	    energy, J; 0 when load <= 0

	Notes:
	    PLR = min(load / capacity, 1)
	    E = load / max(0.1, COP(T_out) f(PLR)) dt
*/
func (h *HVACSystem) CalculateEnergy(load float64, mode OperationMode, dt, tOutdoor float64) float64 {
	if load <= 0 {
		return 0.0
	}
	var cop, capacity float64
	if mode == HEATING {
		cop, capacity = h.CopHeating(tOutdoor), h.MaxHeatingCapacity
	} else {
		cop, capacity = h.CopCooling(tOutdoor), h.MaxCoolingCapacity
	}
	plr := math.Min(load/math.Max(capacity, 1e-6), 1.0)
	copPart := math.Max(0.1, cop*h.PartLoadFactor(plr))
	return load / copPart * dt
}

/*
Latent load of the supply air.

	Args:
	    humidity: outdoor relative humidity, 0..1

	Returns:
	    latent load, W; 0 at or below the humidity setpoint

	Notes:
	    ṁ L (RH - RH_set) × 0.01
*/
func (h *HVACSystem) CalculateLatentLoad(humidity float64) float64 {
	if humidity <= h.HumiditySetpoint {
		return 0.0
	}
	return h.AirMassFlow * h.LatentHeat * (humidity - h.HumiditySetpoint) * 0.01
}
