package main

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
)

var ErrShortSpectrum = errors.New("spectrum needs at least two distinct wavelengths")

// Spectrum is a sampled spectral quantity.
type Spectrum struct {
	Wavelengths []float64 `yaml:"wavelengths"` // nm (µm values are converted)
	Values      []float64 `yaml:"values"`
}

// Spectral optical constants
func getPlanckH() float64 { return 6.62607015e-34 } // J s
func getLightC() float64  { return 2.99792458e8 }   // m/s
func getBoltzK() float64  { return 1.380649e-23 }   // J/K

// solar band used for the weighted reflectance, nm
const (
	solarBandLo   = 300.0
	solarBandHi   = 2500.0
	spectralStep  = 5.0    // nm
	sunTemp       = 5778.0 // K
	surfaceTempK  = 300.0  // K
	emissiveStepN = 400
)

/*
Normalize a spectrum for interpolation.

	Notes:
	    wavelengths below 100 are taken as µm and converted to nm;
	    values above 2 are taken as percent. Pairs are sorted and
	    duplicated wavelengths keep their first value. Non-finite
	    pairs are dropped.
*/
func (s Spectrum) normalized() (xs, ys []float64, err error) {
	n := min(len(s.Wavelengths), len(s.Values))
	type pair struct{ x, y float64 }
	pairs := make([]pair, 0, n)
	maxX, maxY := 0.0, 0.0
	for i := 0; i < n; i++ {
		x, y := s.Wavelengths[i], s.Values[i]
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pairs = append(pairs, pair{x, y})
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	xScale, yScale := 1.0, 1.0
	if maxX > 0 && maxX < 100 {
		xScale = 1000.0
	}
	if maxY > 2 {
		yScale = 0.01
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].x < pairs[j].x })
	for i, p := range pairs {
		if i > 0 && p.x == pairs[i-1].x {
			continue
		}
		xs = append(xs, p.x*xScale)
		ys = append(ys, p.y*yScale)
	}
	if len(xs) < 2 {
		return nil, nil, ErrShortSpectrum
	}
	return xs, ys, nil
}

// predictor fits a piecewise linear interpolant, constant outside the samples.
func (s Spectrum) predictor() (interp.Predictor, error) {
	xs, ys, err := s.normalized()
	if err != nil {
		return nil, err
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fitting spectrum: %w", err)
	}
	return &pl, nil
}

/*
Planck spectral emissive power.

	Args:
	    lambdaNM: wavelength, nm
	    t: temperature, K

	Returns:
	    spectral emissive power, W/m2 m
*/
func getPlanck(lambdaNM, t float64) float64 {
	l := lambdaNM * 1e-9
	c1 := 2.0 * math.Pi * getPlanckH() * getLightC() * getLightC()
	c2 := getPlanckH() * getLightC() / getBoltzK()
	x := c2 / (l * t)
	if x > 700 {
		return 0.0
	}
	return c1 / (math.Pow(l, 5) * math.Expm1(x))
}

func grid(lo, hi, step float64) []float64 {
	n := int(math.Floor((hi-lo)/step)) + 1
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = lo + float64(i)*step
	}
	return xs
}

/*
Solar-weighted average reflectance over 300 to 2500 nm.

	Args:
	    reflectance: reflectance spectrum, 0..1 or percent
	    solar: reference solar irradiance spectrum; nil uses a 5778 K
	           black body shape

	Returns:
	    ∫ R S dλ / ∫ S dλ, clipped to [0, 1]
*/
func SolarWeightedReflectance(reflectance Spectrum, solar *Spectrum) (float64, error) {
	r, err := reflectance.predictor()
	if err != nil {
		return 0, fmt.Errorf("reflectance: %w", err)
	}
	weight := func(l float64) float64 { return getPlanck(l, sunTemp) }
	if solar != nil {
		sp, err := solar.predictor()
		if err != nil {
			return 0, fmt.Errorf("solar spectrum: %w", err)
		}
		weight = func(l float64) float64 { return math.Max(0.0, sp.Predict(l)) }
	}

	xs := grid(solarBandLo, solarBandHi, spectralStep)
	num := make([]float64, len(xs))
	den := make([]float64, len(xs))
	for i, l := range xs {
		w := weight(l)
		num[i] = clip(r.Predict(l), 0.0, 1.0) * w
		den[i] = w
	}
	d := integrate.Trapezoidal(xs, den)
	if d <= 0 {
		return 0, errors.New("solar spectrum has no energy in 300-2500 nm")
	}
	return clip(integrate.Trapezoidal(xs, num)/d, 0.0, 1.0), nil
}

/*
Black-body weighted average emissivity.

	Args:
	    emissivity: spectral emissivity, 0..1 or percent
	    t: surface temperature, K (300 K when <= 0)

	Returns:
	    ∫ ε E_b(T) dλ / ∫ E_b(T) dλ over the sampled band, within [0, 1]
*/
func AverageEmissivity(emissivity Spectrum, t float64) (float64, error) {
	if t <= 0 {
		t = surfaceTempK
	}
	xs0, _, err := emissivity.normalized()
	if err != nil {
		return 0, fmt.Errorf("emissivity: %w", err)
	}
	e, err := emissivity.predictor()
	if err != nil {
		return 0, err
	}

	lo, hi := xs0[0], xs0[len(xs0)-1]
	xs := make([]float64, emissiveStepN+1)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(emissiveStepN)
	}
	num := make([]float64, len(xs))
	den := make([]float64, len(xs))
	for i, l := range xs {
		eb := getPlanck(l, t)
		num[i] = clip(e.Predict(l), 0.0, 1.0) * eb
		den[i] = eb
	}
	d := integrate.Trapezoidal(xs, den)
	if d <= 0 {
		return 0, errors.New("no black body emission in the sampled band")
	}
	return clip(integrate.Trapezoidal(xs, num)/d, 0.0, 1.0), nil
}

// SpectralProperties derive outer-layer optics from measured spectra.
type SpectralProperties struct {
	Reflectance Spectrum  `yaml:"reflectance"`
	Solar       *Spectrum `yaml:"solar"`
	Emissivity  *Spectrum `yaml:"emissivity"`
	Temperature float64   `yaml:"temperature"` // K, 300 when omitted
}

/*
Solar absorptance and long-wave emissivity of an opaque layer.

	Returns:
	    (1) α = 1 - solar-weighted reflectance
	    (2) average emissivity; nil when no emissivity spectrum is given
*/
func (p SpectralProperties) Optics() (alpha float64, eps *float64, err error) {
	r, err := SolarWeightedReflectance(p.Reflectance, p.Solar)
	if err != nil {
		return 0, nil, err
	}
	alpha = 1.0 - r
	if p.Emissivity != nil {
		e, err := AverageEmissivity(*p.Emissivity, p.Temperature)
		if err != nil {
			return 0, nil, err
		}
		eps = &e
	}
	return alpha, eps, nil
}
