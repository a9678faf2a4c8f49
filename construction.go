package main

import (
	"fmt"
	"sort"
	"strings"
)

// Construction is an ordered stack of layers, outermost first.
type Construction struct {
	Name   string
	Layers []Material

	// SolarTransmittance is the fraction of incident solar passed into the zone.
	SolarTransmittance float64
}

func NewConstruction(name string, layers ...Material) *Construction {
	c := &Construction{Name: name, Layers: layers}
	if strings.Contains(strings.ToLower(name), "window") {
		c.SolarTransmittance = 0.6
	}
	return c
}

// Outer returns the exterior layer, or nil for an empty construction.
func (c *Construction) Outer() *Material {
	if len(c.Layers) == 0 {
		return nil
	}
	return &c.Layers[0]
}

// Inner returns the interior layer, or nil for an empty construction.
func (c *Construction) Inner() *Material {
	if len(c.Layers) == 0 {
		return nil
	}
	return &c.Layers[len(c.Layers)-1]
}

/*
Wall-only conductance of the layer stack.

	Returns:
	    U_cond, W/m2 K

	Notes:
	    U_cond = 1 / Σ(d/k), clamped to [0.05, 10].
	    An empty construction conducts 1.0 W/m2 K.
	    Surface films are excluded: they are resolved by the surface
	    heat balance.
*/
func (c *Construction) ConductionU() float64 {
	if len(c.Layers) == 0 {
		return 1.0
	}
	var r float64
	for _, l := range c.Layers {
		r += l.Resistance()
	}
	if r <= 0 {
		return 1.0
	}
	return clip(1.0/r, 0.05, 10.0)
}

/*
Air-to-air U-value including standard surface films.

	Returns:
	    U-value, W/m2 K

	Notes:
	    R_ext = 1/25, R_int = 1/8 m2 K/W
*/
func (c *Construction) UValue() float64 {
	r := 1.0/25.0 + 1.0/8.0
	for _, l := range c.Layers {
		r += l.Resistance()
	}
	return 1.0 / r
}

// HeatCapacity is the areal heat capacity of all layers, J/m2 K
func (c *Construction) HeatCapacity() float64 {
	var hc float64
	for _, l := range c.Layers {
		hc += l.HeatCapacity()
	}
	return hc
}

// Clone returns a deep copy so that scenario overrides never leak.
func (c *Construction) Clone() *Construction {
	layers := make([]Material, len(c.Layers))
	copy(layers, c.Layers)
	return &Construction{Name: c.Name, Layers: layers, SolarTransmittance: c.SolarTransmittance}
}

// Constructions is the registry surfaces resolve their construction from.
type Constructions map[string]*Construction

func (cs Constructions) Get(name string) (*Construction, error) {
	c, ok := cs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConstruction, name)
	}
	return c, nil
}

func (cs Constructions) Clone() Constructions {
	out := make(Constructions, len(cs))
	for k, v := range cs {
		out[k] = v.Clone()
	}
	return out
}

func (cs Constructions) Names() []string {
	names := make([]string, 0, len(cs))
	for n := range cs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultConstructions builds the standard envelope assemblies.
func DefaultConstructions() Constructions {
	brick := Material{"Brick", 0.1, 0.6, 1600, 840, 0.6, 0.9}
	concrete := func(d float64) Material { return Material{"Concrete", d, 1.4, 2300, 880, 0.6, 0.9} }
	insulation := func(d float64) Material { return Material{"Insulation", d, 0.04, 30, 840, 0.5, 0.9} }

	return Constructions{
		"Wall_Standard": NewConstruction("Wall_Standard",
			brick, insulation(0.05), concrete(0.2)),
		"Wall_HighPerformance": NewConstruction("Wall_HighPerformance",
			brick, Material{"Insulation_Premium", 0.1, 0.025, 25, 840, 0.5, 0.9}, concrete(0.2)),
		"Roof_Standard": NewConstruction("Roof_Standard",
			Material{"Membrane", 0.01, 0.2, 1000, 1000, 0.7, 0.9}, insulation(0.1), concrete(0.15)),
		"Floor_Standard": NewConstruction("Floor_Standard",
			concrete(0.2)),
		"Window_Standard": NewConstruction("Window_Standard",
			Material{"Glass", 0.006, 0.8, 2500, 840, 0.6, 0.9}),
	}
}
