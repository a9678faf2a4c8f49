package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// construction names whose outer layer a scenario replaces
const (
	scenarioWall = "Wall_Standard"
	scenarioRoof = "Roof_Standard"
)

// LayerOverride replaces properties of an outer layer; nil keeps the construction value.
type LayerOverride struct {
	SolarAbsorptance *float64            `yaml:"alpha"`
	Emissivity       *float64            `yaml:"emissivity"`
	Conductivity     *float64            `yaml:"conductivity"` // W/m K
	Spectral         *SpectralProperties `yaml:"spectral"`
}

// resolve folds the spectral inputs into plain α and ε.
func (o LayerOverride) resolve() (LayerOverride, error) {
	if o.Spectral == nil {
		return o, nil
	}
	alpha, eps, err := o.Spectral.Optics()
	if err != nil {
		return o, err
	}
	o.SolarAbsorptance = &alpha
	if eps != nil {
		o.Emissivity = eps
	}
	o.Spectral = nil
	return o, nil
}

func (o LayerOverride) empty() bool {
	return o.SolarAbsorptance == nil && o.Emissivity == nil && o.Conductivity == nil
}

// MaterialScenario is one envelope variant of the comparison.
type MaterialScenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"desc"`
	Wall        LayerOverride `yaml:"wall"`
	Roof        LayerOverride `yaml:"roof"`
}

// DefaultScenarios are the baseline and two radiative envelope variants.
func DefaultScenarios() []MaterialScenario {
	return []MaterialScenario{
		{
			Name:        "Baseline",
			Description: "standard wall and roof constructions",
		},
		{
			Name:        "HighReflect_HighEmit",
			Description: "alpha 0.1, epsilon 0.95 (radiative cooling)",
			Wall:        LayerOverride{SolarAbsorptance: ptr(0.1), Emissivity: ptr(0.95)},
			Roof:        LayerOverride{SolarAbsorptance: ptr(0.1), Emissivity: ptr(0.95)},
		},
		{
			Name:        "HighAbsorb_HighEmit",
			Description: "alpha 0.9, epsilon 0.95 (radiative heating)",
			Wall:        LayerOverride{SolarAbsorptance: ptr(0.9), Emissivity: ptr(0.95)},
			Roof:        LayerOverride{SolarAbsorptance: ptr(0.9), Emissivity: ptr(0.95)},
		},
	}
}

/*
Read scenarios from a YAML document.

	Notes:
	    the document is either a list or {scenarios: [...]};
	    the first scenario is the baseline of the comparison.
*/
func LoadScenarios(path string) ([]MaterialScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios %s: %w", path, err)
	}

	var scenarios []MaterialScenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		var doc struct {
			Scenarios []MaterialScenario `yaml:"scenarios"`
		}
		if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
			return nil, fmt.Errorf("parsing scenarios %s: %w", path, err2)
		}
		scenarios = doc.Scenarios
	}
	if err := validateScenarios(scenarios); err != nil {
		return nil, fmt.Errorf("scenarios %s: %w", path, err)
	}
	return scenarios, nil
}

func validateScenarios(scenarios []MaterialScenario) error {
	if len(scenarios) == 0 {
		return ErrNoScenarios
	}
	seen := make(map[string]bool, len(scenarios))
	for i, sc := range scenarios {
		key := fmt.Sprintf("scenarios[%d]", i)
		if sc.Name == "" {
			return configErr("scenarios", key+".name", "is required")
		}
		if seen[sc.Name] {
			return configErr("scenarios", key+".name", "duplicate %q", sc.Name)
		}
		seen[sc.Name] = true
		for part, o := range map[string]LayerOverride{"wall": sc.Wall, "roof": sc.Roof} {
			for prop, v := range map[string]*float64{"alpha": o.SolarAbsorptance, "emissivity": o.Emissivity} {
				if v != nil && (*v < 0 || *v > 1) {
					return configErr("scenarios", fmt.Sprintf("%s.%s.%s", key, part, prop), "must be in [0, 1], got %g", *v)
				}
			}
			if o.Conductivity != nil && *o.Conductivity <= 0 {
				return configErr("scenarios", fmt.Sprintf("%s.%s.conductivity", key, part), "must be > 0")
			}
		}
	}
	return nil
}

/*
Apply the scenario to a configuration.

	Args:
	    cfg: configuration owned by one task; modified in place

	Notes:
	    The outer layers of Wall_Standard and Roof_Standard are replaced
	    through inline constructions, so every surface sharing them sees
	    the change. Opaque walls and roofs also get surface-level α/ε
	    overrides so that per-surface values in the template cannot
	    mask the scenario; windows keep their own optics.
*/
func (sc MaterialScenario) Apply(cfg *Config) error {
	wall, err := sc.Wall.resolve()
	if err != nil {
		return fmt.Errorf("scenario %q wall: %w", sc.Name, err)
	}
	roof, err := sc.Roof.resolve()
	if err != nil {
		return fmt.Errorf("scenario %q roof: %w", sc.Name, err)
	}

	registry := DefaultConstructions()
	for _, cc := range cfg.Building.Constructions {
		c, err := buildConstruction(cc)
		if err != nil {
			return err
		}
		registry[c.Name] = c
	}

	for name, o := range map[string]LayerOverride{scenarioWall: wall, scenarioRoof: roof} {
		if o.empty() {
			continue
		}
		c, err := registry.Get(name)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		c = c.Clone()
		outer := c.Outer()
		outer.SolarAbsorptance = floatOr(o.SolarAbsorptance, outer.SolarAbsorptance)
		outer.Emissivity = floatOr(o.Emissivity, outer.Emissivity)
		outer.Conductivity = floatOr(o.Conductivity, outer.Conductivity)
		setConstructionConfig(cfg, constructionConfigOf(c))
	}

	for zi := range cfg.Building.Zones {
		surfaces := cfg.Building.Zones[zi].Surfaces
		for si := range surfaces {
			d, err := DirectionFromString(surfaces[si].Orientation)
			if err != nil {
				return err
			}
			// coatings only apply to opaque constructions
			if c, err := registry.Get(surfaces[si].Construction); err == nil && c.SolarTransmittance > 0 {
				continue
			}
			var o LayerOverride
			switch {
			case d.IsWall():
				o = wall
			case d == DirectionRoof:
				o = roof
			default:
				continue
			}
			if o.SolarAbsorptance != nil {
				surfaces[si].SolarAbsorptance = ptr(*o.SolarAbsorptance)
			}
			if o.Emissivity != nil {
				surfaces[si].Emissivity = ptr(*o.Emissivity)
			}
		}
	}
	return nil
}

// constructionConfigOf describes a construction with fully inline layers.
func constructionConfigOf(c *Construction) ConstructionConfig {
	cc := ConstructionConfig{Name: c.Name, SolarTransmittance: ptr(c.SolarTransmittance)}
	for _, m := range c.Layers {
		cc.Layers = append(cc.Layers, LayerConfig{
			Material:         m.Name,
			Thickness:        m.Thickness,
			Conductivity:     ptr(m.Conductivity),
			Density:          ptr(m.Density),
			SpecificHeat:     ptr(m.SpecificHeat),
			SolarAbsorptance: ptr(m.SolarAbsorptance),
			Emissivity:       ptr(m.Emissivity),
		})
	}
	return cc
}

func setConstructionConfig(cfg *Config, cc ConstructionConfig) {
	for i := range cfg.Building.Constructions {
		if cfg.Building.Constructions[i].Name == cc.Name {
			cfg.Building.Constructions[i] = cc
			return
		}
	}
	cfg.Building.Constructions = append(cfg.Building.Constructions, cc)
}

// OuterLayerParams are the effective outer-layer properties after a scenario.
type OuterLayerParams struct {
	WallAlpha, WallEps, WallLambda float64
	RoofAlpha, RoofEps, RoofLambda float64
}

func outerLayerParams(b *BuildingModel) OuterLayerParams {
	var p OuterLayerParams
	if c, ok := b.Constructions[scenarioWall]; ok && c.Outer() != nil {
		m := c.Outer()
		p.WallAlpha, p.WallEps, p.WallLambda = m.SolarAbsorptance, m.Emissivity, m.Conductivity
	}
	if c, ok := b.Constructions[scenarioRoof]; ok && c.Outer() != nil {
		m := c.Outer()
		p.RoofAlpha, p.RoofEps, p.RoofLambda = m.SolarAbsorptance, m.Emissivity, m.Conductivity
	}
	return p
}
