package main

import "math"

// specific heat of air, J/kg K
func getCA() float64 {
	return 1005.0
}

// reference air density used for the zone air capacity, kg/m3
func getRhoA() float64 {
	return 1.2
}

// gas constant of dry air, J/kg K
func getRDryAir() float64 {
	return 287.058
}

// latent heat of vaporization of water, J/kg
func getLWtr() float64 {
	return 2.5e6
}

// Stefan-Boltzmann constant, W/m2 K4
func getSgm() float64 {
	return 5.67e-8
}

// standard atmospheric pressure, Pa
func getPAtm() float64 {
	return 101325.0
}

// offset between Celsius and Kelvin, K
func getTKelvin() float64 {
	return 273.15
}

// mass of furniture and interior finish per unit zone volume, kg/m3
func getMFurniture() float64 {
	return 50.0
}

// specific heat of furniture and interior finish, J/kg K
func getCFurniture() float64 {
	return 880.0
}

func celsiusToKelvin(t float64) float64 {
	return t + getTKelvin()
}

func kelvinToCelsius(t float64) float64 {
	return t - getTKelvin()
}

// clip limits v to [lo, hi].
func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
