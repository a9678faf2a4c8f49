package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// HeatTransferMethod selects how the heat transfer coefficients around
// the occupant are obtained.
type HeatTransferMethod string

const (
	HeatTransferConvergence HeatTransferMethod = "convergence"
	HeatTransferConstant    HeatTransferMethod = "constant"
)

func (m HeatTransferMethod) String() string {
	return string(m)
}

func HeatTransferMethodFromString(s string) (HeatTransferMethod, error) {
	switch s {
	case "", "constant":
		return HeatTransferConstant, nil
	case "convergence":
		return HeatTransferConvergence, nil
	default:
		return "", fmt.Errorf("invalid heat transfer method: %q", s)
	}
}

// ComfortIndex is the thermal comfort of the occupant of one zone.
type ComfortIndex struct {
	MRT       float64 // mean radiant temperature, degree C
	Operative float64 // operative temperature, degree C
	PMV       float64
	PPD       float64 // %
	Neutral   float64 // operative temperature at PMV 0, degree C
}

// ComfortModel evaluates PMV/PPD for the occupants of every zone.
type ComfortModel struct {
	Clo      float64 // clo
	Met      float64 // met
	AirSpeed float64 // m/s
	Humidity float64 // indoor relative humidity, 0..1
	Method   HeatTransferMethod
}

func NewComfortModel(cfg ComfortConfig, humidity float64) (*ComfortModel, error) {
	method, err := HeatTransferMethodFromString(cfg.Method)
	if err != nil {
		return nil, err
	}
	return &ComfortModel{
		Clo:      floatOr(cfg.Clo, 0.7),
		Met:      floatOr(cfg.Met, 1.0),
		AirSpeed: floatOr(cfg.AirSpeed, 0.1),
		Humidity: clip(humidity, 0, 1),
		Method:   method,
	}, nil
}

/*
Evaluate the comfort of the occupant of a zone.

	Args:
	    z: zone after the step has converged

	Returns:
	    comfort index of the occupant

	Notes:
	    indoor vapor pressure is the humidity setpoint applied to the
	    zone air temperature.
*/
func (c *ComfortModel) Evaluate(z *Zone) ComfortIndex {
	thetaR := kelvinToCelsius(z.Temperature)
	thetaMRT := getThetaMRT(z)
	pA := c.Humidity * getPVsHPa(thetaR) * 100.0

	hC, hR := c.heatTransfer(thetaR, thetaMRT)
	h := getHHum(hC, hR)
	thetaOT := getThetaOT(hR, thetaMRT, hC, thetaR)

	iCl := getICl(c.Clo)
	fCl := getFCl(iCl)
	pmv := getPMV(thetaR, pA, h, thetaOT, iCl, fCl, getM(c.Met))

	return ComfortIndex{
		MRT:       thetaMRT,
		Operative: thetaOT,
		PMV:       pmv,
		PPD:       getPPD(pmv),
		Neutral:   getThetaOTTarget(c.Clo, pA, h, c.Met, 0.0),
	}
}

/*
Heat transfer coefficients around the occupant.

	Args:
	    thetaR: air temperature, degree C
	    thetaMRT: mean radiant temperature, degree C

	Returns:
	    (1) convective heat transfer coefficient, W/m2K
	    (2) radiative heat transfer coefficient, W/m2K

	Notes:
	    The convergence method solves the clothing temperature by
	    bisection. Without a bracketing interval it falls back to the
	    constant coefficients.
*/
func (c *ComfortModel) heatTransfer(thetaR, thetaMRT float64) (float64, float64) {
	if c.Method == HeatTransferConstant {
		return getHHumCConstant(), getHHumRConstant()
	}

	m := getM(c.Met)
	f := func(thetaCl float64) float64 {
		hC := getHHumCConvergence(thetaR, thetaCl, c.AirSpeed)
		hR := getHHumRConvergence(thetaCl, thetaMRT)
		thetaOT := getThetaOT(hR, thetaMRT, hC, thetaR)
		return getThetaCl(c.Clo, thetaOT, m, hR, hC) - thetaCl
	}

	thetaCl, err := bisect(f, -20.0, 60.0, 1e-6, 100)
	if err != nil {
		return getHHumCConstant(), getHHumRConstant()
	}
	return getHHumCConvergence(thetaR, thetaCl, c.AirSpeed), getHHumRConvergence(thetaCl, thetaMRT)
}

func bisect(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	fa := f(a)
	if fa*f(b) > 0 {
		return 0, fmt.Errorf("no root found in the interval [%f, %f]", a, b)
	}
	for i := 0; i < maxIter; i++ {
		c := (a + b) / 2
		fc := f(c)
		if fc == 0 || (b-a)/2 < tol {
			return c, nil
		}
		if fc*fa < 0 {
			b = c
		} else {
			a, fa = c, fc
		}
	}
	return 0, fmt.Errorf("failed to find root within %d iterations", maxIter)
}

/*
PPD from PMV.

	Args:
	    pmv: predicted mean vote

	Returns:
	    predicted percentage of dissatisfied, %
*/
func getPPD(pmv float64) float64 {
	pmv2 := pmv * pmv
	pmv4 := pmv2 * pmv2
	return 100.0 - 95.0*math.Exp(-0.03353*pmv4-0.2179*pmv2)
}

/*
PMV of the occupant.

	Args:
	    thetaR: air temperature, degree C
	    pA: vapor pressure, Pa
	    h: total heat transfer coefficient around the occupant, W/m2K
	    thetaOT: operative temperature, degree C
	    iCl: clothing insulation, m2K/W
	    fCl: clothing area factor
	    m: metabolic rate, W/m2
*/
func getPMV(thetaR, pA, h, thetaOT, iCl, fCl, m float64) float64 {
	return (0.303*math.Exp(-0.036*m) + 0.028) * (m - // activity, W/m2
		3.05e-3*(5733.0-6.99*m-pA) - // skin diffusion, W/m2
		math.Max(0.42*(m-58.15), 0.0) - // sweating, W/m2
		1.7e-5*m*(5867.0-pA) - // latent respiration, W/m2
		0.0014*m*(34.0-thetaR) - // sensible respiration, W/m2
		fCl*h*(35.7-0.028*m-thetaOT)/(1+iCl*fCl*h)) // clothing
}

/*
Operative temperature that meets a target PMV.

	Args:
	    clo: clo value
	    pA: vapor pressure, Pa
	    h: total heat transfer coefficient around the occupant, W/m2K
	    met: met value
	    pmvTarget: target PMV

	Returns:
	    target operative temperature, degree C
*/
func getThetaOTTarget(clo, pA, h, met, pmvTarget float64) float64 {
	iCl := getICl(clo)
	m := getM(met)
	fCl := getFCl(iCl)
	return (pmvTarget/(0.303*math.Exp(-0.036*m)+0.028) - m +
		3.05e-3*(5733.0-6.99*m-pA) +
		math.Max(0.42*(m-58.15), 0.0) +
		1.7e-5*m*(5867.0-pA) +
		0.0014*m*34.0 +
		fCl*h*(35.7-0.028*m)/(1+iCl*fCl*h)) /
		(0.0014*m + fCl*h/(1+iCl*fCl*h))
}

// total heat transfer coefficient around the occupant, W/m2K
func getHHum(hC, hR float64) float64 {
	return floats.Sum([]float64{hC, hR})
}

// operative temperature, degree C: mean of MRT and air weighted by h_r and h_c
func getThetaOT(hR, thetaMRT, hC, thetaR float64) float64 {
	h := []float64{hR, hC}
	return floats.Dot(h, []float64{thetaMRT, thetaR}) / floats.Sum(h)
}

// convective heat transfer coefficient around the occupant, W/m2K
func getHHumCConvergence(thetaR, thetaCl, v float64) float64 {
	return math.Max(12.1*math.Sqrt(v), 2.38*math.Pow(math.Abs(thetaCl-thetaR), 0.25))
}

func getHHumCConstant() float64 {
	return 4.0
}

// radiative heat transfer coefficient around the occupant, W/m2K
func getHHumRConvergence(thetaCl, thetaMRT float64) float64 {
	tCl := thetaCl + 273.0
	tMRT := thetaMRT + 273.0
	return 3.96e-8 * (tCl*tCl*tCl + tCl*tCl*tMRT + tCl*tMRT*tMRT + tMRT*tMRT*tMRT)
}

func getHHumRConstant() float64 {
	const k3 = (20.0 + 273.15) * (20.0 + 273.15) * (20.0 + 273.15)
	return 4 * 3.96e-8 * k3
}

// clothing surface temperature, degree C
func getThetaCl(clo, thetaOT, m, hR, hC float64) float64 {
	iCl := getICl(clo)
	fCl := getFCl(iCl)
	return (35.7-0.028*m-thetaOT)/(1+iCl*fCl*(hR+hC)) + thetaOT
}

// metabolic rate, W/m2 (1 met = 58.15 W/m2)
func getM(met float64) float64 {
	return met * 58.15
}

// clothing area factor
func getFCl(iCl float64) float64 {
	if iCl <= 0.078 {
		return 1.00 + 1.290*iCl
	}
	return 1.05 + 0.645*iCl
}

// clothing insulation, m2K/W (1 clo = 0.155 m2K/W)
func getICl(clo float64) float64 {
	return clo * 0.155
}
