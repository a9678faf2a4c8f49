package main

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Surface is one envelope element of a zone.
type Surface struct {
	Name         string
	Zone         string
	Area         float64 // m2
	Orientation  Direction
	Construction *Construction

	// Overrides of the outer-layer optical properties; nil means "use the construction".
	SolarAbsorptance *float64
	Emissivity       *float64

	Temperature           float64 // zone-facing (interior) surface temperature, K
	ExteriorTemperature   float64 // outdoor-facing surface temperature, K
	InternalRadiativeFlux float64 // radiant gain absorbed at the interior face, W/m2
}

/*
Outer-face optical properties.

	Returns:
	    (1) solar absorptance, -
	    (2) long-wave emissivity, -

	Notes:
	    surface override > outer layer > 0.6 / 0.9
*/
func (s *Surface) OuterOptics() (alpha, eps float64) {
	alpha, eps = 0.6, 0.9
	if s.Construction != nil {
		if m := s.Construction.Outer(); m != nil {
			alpha, eps = m.SolarAbsorptance, m.Emissivity
		}
	}
	if s.SolarAbsorptance != nil {
		alpha = *s.SolarAbsorptance
	}
	if s.Emissivity != nil {
		eps = *s.Emissivity
	}
	return alpha, eps
}

// InnerEmissivity is the long-wave emissivity of the interior face.
func (s *Surface) InnerEmissivity() float64 {
	if s.Construction != nil {
		if m := s.Construction.Inner(); m != nil {
			return m.Emissivity
		}
	}
	return 0.9
}

// ConductionU is the wall-only conductance of the surface, W/m2 K
func (s *Surface) ConductionU() float64 {
	if s.Construction == nil {
		return 1.0
	}
	return s.Construction.ConductionU()
}

// SolarTransmittance of the surface, -
func (s *Surface) SolarTransmittance() float64 {
	if s.Construction == nil {
		return 0.0
	}
	return s.Construction.SolarTransmittance
}

// Zone is a thermally well-mixed air volume.
type Zone struct {
	Name             string
	Volume           float64 // m3
	Area             float64 // floor area, m2
	OccupancyDensity float64 // person/m2
	EquipmentLoad    float64 // W/m2
	LightingLoad     float64 // W/m2
	Surfaces         []*Surface

	Temperature         float64            // air temperature, K
	CoolingLoad         float64            // W
	HeatingLoad         float64            // W
	LatentLoad          float64            // W
	CoolingEnergy       float64            // J
	HeatingEnergy       float64            // J
	SurfaceTemperatures map[string]float64 // interior surface temperature by surface name, K

	Iterations int     // free-float iterations of the last step
	Residual   float64 // last zone temperature change of the free-float loop, K

	Comfort ComfortIndex
}

func (z *Zone) AddSurface(s *Surface) {
	s.Zone = z.Name
	z.Surfaces = append(z.Surfaces, s)
}

// surfaceAreas is the area of each surface, m2, [j]
func (z *Zone) surfaceAreas() []float64 {
	a := make([]float64, len(z.Surfaces))
	for j, s := range z.Surfaces {
		a[j] = s.Area
	}
	return a
}

// surfaceTemperatures is the interior face temperature of each surface, K, [j]
func (z *Zone) surfaceTemperatures() []float64 {
	t := make([]float64, len(z.Surfaces))
	for j, s := range z.Surfaces {
		t[j] = s.Temperature
	}
	return t
}

// TotalSurfaceArea over all surfaces of the zone, m2
func (z *Zone) TotalSurfaceArea() float64 {
	return floats.Sum(z.surfaceAreas())
}

// BuildingModel owns the zones and the construction registry they reference.
type BuildingModel struct {
	Zones         []*Zone
	Constructions Constructions
}

/*
Build the model from its configuration.

	Args:
	    cfg: building section of the configuration

	Returns:
	    building model with every surface bound to a registry construction

	Notes:
	    Constructions declared in the configuration replace the defaults of
	    the same name.
*/
func NewBuildingModel(cfg BuildingConfig) (*BuildingModel, error) {
	registry := DefaultConstructions()
	for _, cc := range cfg.Constructions {
		c, err := buildConstruction(cc)
		if err != nil {
			return nil, err
		}
		registry[c.Name] = c
	}
	return NewBuildingModelWithConstructions(cfg, registry)
}

// NewBuildingModelWithConstructions builds the zones against an explicit registry.
func NewBuildingModelWithConstructions(cfg BuildingConfig, registry Constructions) (*BuildingModel, error) {
	if len(cfg.Zones) == 0 {
		return nil, ErrNoZones
	}
	b := &BuildingModel{Constructions: registry}
	for _, zc := range cfg.Zones {
		z, err := b.buildZone(zc)
		if err != nil {
			return nil, err
		}
		b.Zones = append(b.Zones, z)
	}
	return b, nil
}

func (b *BuildingModel) buildZone(zc ZoneConfig) (*Zone, error) {
	if len(zc.Surfaces) == 0 {
		return nil, fmt.Errorf("zone %q: %w", zc.Name, ErrNoSurfaces)
	}
	if zc.Area != nil && *zc.Area <= 0 {
		return nil, configErr("building", "zones."+zc.Name+".area", "must be > 0, got %g", *zc.Area)
	}
	z := &Zone{
		Name:             zc.Name,
		Volume:           zc.Volume,
		Area:             floatOr(zc.Area, 100.0),
		OccupancyDensity: floatOr(zc.OccupancyDensity, 0.05),
		EquipmentLoad:    floatOr(zc.EquipmentLoad, 10.0),
		LightingLoad:     floatOr(zc.LightingLoad, 5.0),
	}
	for _, sc := range zc.Surfaces {
		d, err := DirectionFromString(sc.Orientation)
		if err != nil {
			return nil, fmt.Errorf("surface %q: %w", sc.Name, err)
		}
		c, err := b.Constructions.Get(sc.Construction)
		if err != nil {
			return nil, fmt.Errorf("surface %q: %w", sc.Name, err)
		}
		z.AddSurface(&Surface{
			Name:             sc.Name,
			Area:             sc.Area,
			Orientation:      d,
			Construction:     c,
			SolarAbsorptance: sc.SolarAbsorptance,
			Emissivity:       sc.Emissivity,
		})
	}
	initializeZoneConditions(z)
	return z, nil
}

func buildConstruction(cc ConstructionConfig) (*Construction, error) {
	if len(cc.Layers) == 0 {
		return nil, fmt.Errorf("construction %q: %w", cc.Name, ErrEmptyConstruction)
	}
	layers := make([]Material, 0, len(cc.Layers))
	for _, lc := range cc.Layers {
		m, err := CatalogMaterial(lc.Material, lc.Thickness)
		if err != nil {
			// inline material: every bulk property must be given
			if lc.Conductivity == nil || lc.Density == nil || lc.SpecificHeat == nil {
				return nil, fmt.Errorf("construction %q: %w", cc.Name, err)
			}
			m = Material{Name: lc.Material, Thickness: lc.Thickness, SolarAbsorptance: 0.6, Emissivity: 0.9}
		}
		m.Conductivity = floatOr(lc.Conductivity, m.Conductivity)
		m.Density = floatOr(lc.Density, m.Density)
		m.SpecificHeat = floatOr(lc.SpecificHeat, m.SpecificHeat)
		m.SolarAbsorptance = floatOr(lc.SolarAbsorptance, m.SolarAbsorptance)
		m.Emissivity = floatOr(lc.Emissivity, m.Emissivity)
		layers = append(layers, m)
	}
	c := NewConstruction(cc.Name, layers...)
	if cc.SolarTransmittance != nil {
		c.SolarTransmittance = *cc.SolarTransmittance
	}
	return c, nil
}

// Zone looks a zone up by name.
func (b *BuildingModel) Zone(name string) *Zone {
	for _, z := range b.Zones {
		if z.Name == name {
			return z
		}
	}
	return nil
}

// TotalFloorArea of all zones, m2
func (b *BuildingModel) TotalFloorArea() float64 {
	a := make([]float64, len(b.Zones))
	for i, z := range b.Zones {
		a[i] = z.Area
	}
	return floats.Sum(a)
}

// ConstructionSummary describes one construction used by the model.
type ConstructionSummary struct {
	Name         string
	Layers       int
	UValue       float64 // W/m2 K
	ConductionU  float64 // W/m2 K
	HeatCapacity float64 // J/m2 K
	SurfaceArea  float64 // m2
}

// Summary lists the constructions referenced by at least one surface.
func (b *BuildingModel) Summary() []ConstructionSummary {
	areas := map[string]float64{}
	for _, z := range b.Zones {
		for _, s := range z.Surfaces {
			if s.Construction != nil {
				areas[s.Construction.Name] += s.Area
			}
		}
	}
	var out []ConstructionSummary
	for _, name := range b.Constructions.Names() {
		a, used := areas[name]
		if !used {
			continue
		}
		c := b.Constructions[name]
		out = append(out, ConstructionSummary{
			Name:         name,
			Layers:       len(c.Layers),
			UValue:       c.UValue(),
			ConductionU:  c.ConductionU(),
			HeatCapacity: c.HeatCapacity(),
			SurfaceArea:  a,
		})
	}
	return out
}
