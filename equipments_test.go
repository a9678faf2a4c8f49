package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHVAC(t *testing.T, system string) *HVACSystem {
	t.Helper()
	h, err := NewHVACSystem(HVACConfig{System: system})
	require.NoError(t, err)
	return h
}

func TestSystemKindFromString(t *testing.T) {
	for in, want := range map[string]SystemKind{
		"":          SystemStandard,
		"Standard":  SystemStandard,
		"simple":    SystemSimple,
		" VRF ":     SystemVRF,
		"heatpump":  SystemHeatPump,
		"heat_pump": SystemHeatPump,
	} {
		got, err := SystemKindFromString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := SystemKindFromString("geothermal")
	assert.ErrorIs(t, err, ErrUnknownSystem)
}

func TestHVAC_Defaults(t *testing.T) {
	h := newTestHVAC(t, "standard")
	assert.InDelta(t, celsiusToKelvin(26), h.CoolingSetpoint, 1e-9)
	assert.InDelta(t, celsiusToKelvin(20), h.HeatingSetpoint, 1e-9)
	assert.InDelta(t, 3.0, h.COPHeatingRef, 1e-9)

	hp := newTestHVAC(t, "heat_pump")
	assert.InDelta(t, 4.0, hp.COPHeatingRef, 1e-9)

	vrf := newTestHVAC(t, "vrf")
	assert.InDelta(t, 0.05, vrf.PLRCoeffA, 1e-9)
	assert.InDelta(t, 0.95, vrf.PLRCoeffB, 1e-9)
}

func TestCopCooling_NonIncreasingAboveRef(t *testing.T) {
	for _, system := range []string{"standard", "vrf", "heat_pump"} {
		h := newTestHVAC(t, system)
		assert.InDelta(t, h.COPCoolingRef, h.CopCooling(h.COPRefTemp), 1e-9)

		prev := h.CopCooling(celsiusToKelvin(20))
		for c := 20.5; c <= 45; c += 0.5 {
			cop := h.CopCooling(celsiusToKelvin(c))
			assert.LessOrEqual(t, cop, prev+1e-12, "%s at %g C", system, c)
			assert.GreaterOrEqual(t, cop, 1.0)
			assert.LessOrEqual(t, cop, 6.0)
			prev = cop
		}
	}
}

func TestCopHeating_NonDecreasing(t *testing.T) {
	for _, system := range []string{"standard", "vrf", "heat_pump"} {
		h := newTestHVAC(t, system)
		prev := h.CopHeating(celsiusToKelvin(-30))
		for c := -29.5; c <= 40; c += 0.5 {
			cop := h.CopHeating(celsiusToKelvin(c))
			assert.GreaterOrEqual(t, cop, prev-1e-12, "%s at %g C", system, c)
			assert.GreaterOrEqual(t, cop, 1.0)
			assert.LessOrEqual(t, cop, 5.0)
			prev = cop
		}
	}
}

func TestCopHeating_HeldBeyondRange(t *testing.T) {
	h := newTestHVAC(t, "standard")
	assert.InDelta(t, h.CopHeating(celsiusToKelvin(32)), h.CopHeating(celsiusToKelvin(40)), 1e-12)
}

func TestCopHeating_HeatPumpDegradesFaster(t *testing.T) {
	std := newTestHVAC(t, "standard")
	hp, err := NewHVACSystem(HVACConfig{System: "heat_pump", COPHeating: ptr(3.0)})
	require.NoError(t, err)

	cold := celsiusToKelvin(0)
	assert.Less(t, hp.CopHeating(cold), std.CopHeating(cold))
	ref := getHeatingRefTemp()
	assert.InDelta(t, std.CopHeating(ref), hp.CopHeating(ref), 1e-12)
}

func TestSimpleSystem_Constant(t *testing.T) {
	h := newTestHVAC(t, "simple")
	for _, c := range []float64{-10, 7, 35, 45} {
		assert.Equal(t, h.COPCoolingRef, h.CopCooling(celsiusToKelvin(c)))
		assert.Equal(t, h.COPHeatingRef, h.CopHeating(celsiusToKelvin(c)))
	}
	assert.Equal(t, 1.0, h.PartLoadFactor(0.01))
}

func TestPartLoadFactor(t *testing.T) {
	h := newTestHVAC(t, "standard")
	assert.Equal(t, 0.0, h.PartLoadFactor(0))
	assert.InDelta(t, 0.3, h.PartLoadFactor(0.2), 1e-12)
	assert.InDelta(t, 1.0, h.PartLoadFactor(1.0), 1e-12)
	assert.InDelta(t, 1.0, h.PartLoadFactor(3.0), 1e-12)

	vrf := newTestHVAC(t, "vrf")
	assert.InDelta(t, 0.05, vrf.PartLoadFactor(1e-6), 1e-4)
}

func TestCalculateEnergy(t *testing.T) {
	h := newTestHVAC(t, "standard")
	tOut := h.COPRefTemp

	// COP 3.5, PLR 0.2, f = 0.125 + 0.875 * 0.2 = 0.3
	e := h.CalculateEnergy(10000, COOLING, 3600, tOut)
	assert.InDelta(t, 10000/(3.5*0.3)*3600, e, 1e-6)

	assert.Equal(t, 0.0, h.CalculateEnergy(0, COOLING, 3600, tOut))
	assert.Equal(t, 0.0, h.CalculateEnergy(-500, HEATING, 3600, tOut))

	s := newTestHVAC(t, "simple")
	assert.InDelta(t, 5000/3.0*1800, s.CalculateEnergy(5000, HEATING, 1800, tOut), 1e-6)
}

func TestCalculateEnergy_CapacityCapsPLR(t *testing.T) {
	h := newTestHVAC(t, "standard")
	tOut := h.COPRefTemp
	// beyond capacity the part load factor stays at 1
	e := h.CalculateEnergy(100000, COOLING, 3600, tOut)
	assert.InDelta(t, 100000/3.5*3600, e, 1e-6)
}

func TestCalculateLatentLoad(t *testing.T) {
	h := newTestHVAC(t, "standard")
	assert.Equal(t, 0.0, h.CalculateLatentLoad(0.5))
	assert.Equal(t, 0.0, h.CalculateLatentLoad(0.3))
	assert.InDelta(t, h.AirMassFlow*h.LatentHeat*0.2*0.01, h.CalculateLatentLoad(0.7), 1e-9)
}
