package main

import (
	"fmt"
	"sort"
)

// Material is one homogeneous layer of a construction.
type Material struct {
	Name             string  `yaml:"name"`
	Thickness        float64 `yaml:"thickness"`         // m
	Conductivity     float64 `yaml:"conductivity"`      // W/m K
	Density          float64 `yaml:"density"`           // kg/m3
	SpecificHeat     float64 `yaml:"specific_heat"`     // J/kg K
	SolarAbsorptance float64 `yaml:"solar_absorptance"` // -
	Emissivity       float64 `yaml:"emissivity"`        // -
}

/*
Thermal resistance of the layer.

	Returns:
	    layer resistance, m2 K/W

	Notes:
	    thickness is floored at 1e-4 m and conductivity at 0.01 W/m K
	    so that a degenerate layer never produces an infinite conductance.
*/
func (m Material) Resistance() float64 {
	d := max(1e-4, m.Thickness)
	k := max(0.01, m.Conductivity)
	return d / k
}

// HeatCapacity per unit area, J/m2 K
func (m Material) HeatCapacity() float64 {
	return m.Density * m.SpecificHeat * m.Thickness
}

// catalogEntry holds bulk properties; thickness and optical properties are
// supplied by the construction that uses the material.
type catalogEntry struct {
	conductivity float64 // W/m K
	density      float64 // kg/m3
	specificHeat float64 // J/kg K
}

var materialCatalog = map[string]catalogEntry{
	"Concrete":             {1.4, 2300, 880},
	"Lightweight_Concrete": {0.5, 1200, 840},
	"Brick":                {0.6, 1600, 840},
	"Hollow_Brick":         {0.3, 1000, 840},
	"Insulation_Standard":  {0.04, 30, 840},
	"Insulation_Premium":   {0.025, 25, 840},
	"Mineral_Wool":         {0.035, 80, 840},
	"Polystyrene":          {0.03, 20, 1400},
	"Polyurethane":         {0.025, 30, 1400},
	"Glass":                {0.8, 2500, 840},
	"Double_Glass":         {0.15, 2500, 840},
	"Aluminum":             {160, 2700, 900},
	"Steel":                {50, 7850, 490},
	"Wood":                 {0.15, 600, 1600},
	"Plywood":              {0.12, 500, 1500},
	"Membrane":             {0.2, 1000, 1000},
	"Asphalt":              {0.7, 2100, 920},
	"Gypsum_Board":         {0.16, 750, 1090},
	"Ceramic_Tile":         {1.0, 2300, 840},
	"Soil":                 {1.5, 1600, 1600},
	"Air_Layer_10mm":       {0.026, 1.2, 1005},
}

/*
Look up a material by name in the built-in catalog.

	Args:
	    name: catalog name
	    thickness: layer thickness, m

	Returns:
	    material with solar absorptance 0.6 and emissivity 0.9
*/
func CatalogMaterial(name string, thickness float64) (Material, error) {
	e, ok := materialCatalog[name]
	if !ok {
		return Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return Material{
		Name:             name,
		Thickness:        thickness,
		Conductivity:     e.conductivity,
		Density:          e.density,
		SpecificHeat:     e.specificHeat,
		SolarAbsorptance: 0.6,
		Emissivity:       0.9,
	}, nil
}

// CatalogMaterialNames lists the catalog in alphabetical order.
func CatalogMaterialNames() []string {
	names := make([]string, 0, len(materialCatalog))
	for n := range materialCatalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
