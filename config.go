package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete input of one simulation run.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Building   BuildingConfig   `yaml:"building"`
	HVAC       HVACConfig       `yaml:"hvac"`
	Weather    WeatherConfig    `yaml:"weather"`
	Comfort    ComfortConfig    `yaml:"comfort"`
}

type SimulationConfig struct {
	StartMonth            int                 `yaml:"start_month"`
	StartDay              int                 `yaml:"start_day"`
	EndMonth              int                 `yaml:"end_month"`
	EndDay                int                 `yaml:"end_day"`
	Timestep              string              `yaml:"timestep"`
	WarmupDays            *int                `yaml:"warmup_days"`
	UseEPWDates           *bool               `yaml:"use_epw_dates"`
	ProgressIntervalHours *int                `yaml:"progress_interval_hours"`
	MaxIterations         int                 `yaml:"max_iterations"`
	ConvergenceTolerance  float64             `yaml:"convergence_tolerance"` // K
	SkyTempWeights        *SkyTempWeights     `yaml:"sky_temp_weights"`
	SurfaceSolver         SurfaceSolverConfig `yaml:"surface_solver"`
}

// SkyTempWeights weights the clear/cloudy sky temperature models.
type SkyTempWeights struct {
	EPWIR     float64 `yaml:"epw_ir"`
	Brunt     float64 `yaml:"brunt"`
	Brutsaert float64 `yaml:"brutsaert"`
	Swinbank  float64 `yaml:"swinbank"`
}

type SurfaceSolverConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Relaxation    float64 `yaml:"relaxation"`
	Tolerance     float64 `yaml:"tolerance"` // K
}

type BuildingConfig struct {
	Constructions []ConstructionConfig `yaml:"constructions"`
	Zones         []ZoneConfig         `yaml:"zones"`
}

type ConstructionConfig struct {
	Name               string        `yaml:"name"`
	SolarTransmittance *float64      `yaml:"solar_transmittance"`
	Layers             []LayerConfig `yaml:"layers"`
}

// LayerConfig names a catalog material, or describes one inline.
// Inline properties override the catalog values.
type LayerConfig struct {
	Material         string   `yaml:"material"`
	Thickness        float64  `yaml:"thickness"` // m
	Conductivity     *float64 `yaml:"conductivity"`
	Density          *float64 `yaml:"density"`
	SpecificHeat     *float64 `yaml:"specific_heat"`
	SolarAbsorptance *float64 `yaml:"solar_absorptance"`
	Emissivity       *float64 `yaml:"emissivity"`
}

type ZoneConfig struct {
	Name             string          `yaml:"name"`
	Volume           float64         `yaml:"volume"`            // m3
	Area             *float64        `yaml:"area"`              // m2
	OccupancyDensity *float64        `yaml:"occupancy_density"` // person/m2
	EquipmentLoad    *float64        `yaml:"equipment_load"`    // W/m2
	LightingLoad     *float64        `yaml:"lighting_load"`     // W/m2
	Surfaces         []SurfaceConfig `yaml:"surfaces"`
}

type SurfaceConfig struct {
	Name             string   `yaml:"name"`
	Area             float64  `yaml:"area"` // m2
	Orientation      string   `yaml:"orientation"`
	Construction     string   `yaml:"construction"`
	SolarAbsorptance *float64 `yaml:"solar_absorptance"`
	Emissivity       *float64 `yaml:"emissivity"`
}

// HVACConfig holds temperatures in degree C; they are converted to K on use.
type HVACConfig struct {
	System             string   `yaml:"system"`
	CoolingSetpoint    *float64 `yaml:"cooling_setpoint"`
	HeatingSetpoint    *float64 `yaml:"heating_setpoint"`
	HumiditySetpoint   *float64 `yaml:"humidity_setpoint"`
	COPCooling         *float64 `yaml:"cop_cooling"`
	COPHeating         *float64 `yaml:"cop_heating"`
	COPRefTemp         *float64 `yaml:"cop_ref_temp"`
	PLRCoeffA          *float64 `yaml:"plr_coeff_a"`
	PLRCoeffB          *float64 `yaml:"plr_coeff_b"`
	CoolingCapacity    *float64 `yaml:"max_cooling_capacity"` // W
	HeatingCapacity    *float64 `yaml:"max_heating_capacity"` // W
	AirMassFlow        *float64 `yaml:"air_mass_flow"`    // kg/s
	VentilationACH     *float64 `yaml:"ventilation_ach"`  // 1/h
	LatentHeatOfVapour *float64 `yaml:"latent_heat"`      // J/kg
}

// ComfortConfig describes the occupant used for PMV/PPD.
type ComfortConfig struct {
	Clo      *float64 `yaml:"clo"`
	Met      *float64 `yaml:"met"`
	AirSpeed *float64 `yaml:"air_speed"` // m/s
	Method   string   `yaml:"method"`    // constant | convergence
}

type WeatherConfig struct {
	EPWFile       string `yaml:"epw_file"`
	ReferenceYear *int   `yaml:"reference_year"`
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func ptr[T any](v T) *T {
	return &v
}

// LoadConfig reads a YAML (or JSON) configuration file and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("cloning config: %w", err)
	}
	var out Config
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("cloning config: %w", err)
	}
	return &out, nil
}

/*
Validate checks every section and reports all problems at once.

	Notes:
	    The weather file is checked separately by RequireWeatherFile:
	    the engine itself accepts any WeatherProvider.
*/
func (c *Config) Validate() error {
	var errs []error

	s := c.Simulation
	if _, err := IntervalFromString(s.Timestep); err != nil {
		errs = append(errs, configErr("simulation", "timestep", "%v", err))
	}
	if s.WarmupDays != nil && *s.WarmupDays < 0 {
		errs = append(errs, configErr("simulation", "warmup_days", "must be >= 0, got %d", *s.WarmupDays))
	}
	if s.ProgressIntervalHours != nil && *s.ProgressIntervalHours < 0 {
		errs = append(errs, configErr("simulation", "progress_interval_hours", "must be >= 0"))
	}
	if s.MaxIterations < 0 {
		errs = append(errs, configErr("simulation", "max_iterations", "must be >= 0"))
	}
	if s.ConvergenceTolerance < 0 {
		errs = append(errs, configErr("simulation", "convergence_tolerance", "must be >= 0"))
	}
	for key, v := range map[string]int{"start_month": s.StartMonth, "end_month": s.EndMonth} {
		if v < 0 || v > 12 {
			errs = append(errs, configErr("simulation", key, "must be 1..12, got %d", v))
		}
	}
	for key, v := range map[string]int{"start_day": s.StartDay, "end_day": s.EndDay} {
		if v < 0 || v > 31 {
			errs = append(errs, configErr("simulation", key, "must be 1..31, got %d", v))
		}
	}
	if r := s.SurfaceSolver.Relaxation; r < 0 || r > 1 {
		errs = append(errs, configErr("simulation", "surface_solver.relaxation", "must be in [0, 1], got %g", r))
	}

	if len(c.Building.Zones) == 0 {
		errs = append(errs, configErr("building", "zones", "%v", ErrNoZones))
	}
	known := DefaultConstructions()
	for i, cc := range c.Building.Constructions {
		if cc.Name == "" {
			errs = append(errs, configErr("building", fmt.Sprintf("constructions[%d].name", i), "is required"))
		}
		if len(cc.Layers) == 0 {
			errs = append(errs, configErr("building", fmt.Sprintf("constructions[%d].layers", i), "%v", ErrEmptyConstruction))
		}
		known[cc.Name] = nil
	}
	for i, z := range c.Building.Zones {
		key := fmt.Sprintf("zones[%d]", i)
		if z.Name == "" {
			errs = append(errs, configErr("building", key+".name", "is required"))
		}
		if z.Volume <= 0 {
			errs = append(errs, configErr("building", key+".volume", "must be > 0, got %g", z.Volume))
		}
		if z.Area != nil && *z.Area <= 0 {
			errs = append(errs, configErr("building", key+".area", "must be > 0, got %g", *z.Area))
		}
		if len(z.Surfaces) == 0 {
			errs = append(errs, configErr("building", key+".surfaces", "%v", ErrNoSurfaces))
		}
		for j, sc := range z.Surfaces {
			skey := fmt.Sprintf("%s.surfaces[%d]", key, j)
			if sc.Area <= 0 {
				errs = append(errs, configErr("building", skey+".area", "must be > 0, got %g", sc.Area))
			}
			if _, err := DirectionFromString(sc.Orientation); err != nil {
				errs = append(errs, configErr("building", skey+".orientation", "%v", err))
			}
			if _, ok := known[sc.Construction]; !ok {
				errs = append(errs, configErr("building", skey+".construction", "%v: %q", ErrUnknownConstruction, sc.Construction))
			}
		}
	}

	if _, err := SystemKindFromString(c.HVAC.System); err != nil {
		errs = append(errs, configErr("hvac", "system", "%v", err))
	}
	if c.HVAC.CoolingSetpoint != nil && c.HVAC.HeatingSetpoint != nil &&
		*c.HVAC.HeatingSetpoint > *c.HVAC.CoolingSetpoint {
		errs = append(errs, configErr("hvac", "heating_setpoint", "must not exceed cooling_setpoint"))
	}

	cf := c.Comfort
	if _, err := HeatTransferMethodFromString(cf.Method); err != nil {
		errs = append(errs, configErr("comfort", "method", "%v", err))
	}
	if cf.Clo != nil && *cf.Clo < 0 {
		errs = append(errs, configErr("comfort", "clo", "must be >= 0, got %g", *cf.Clo))
	}
	if cf.Met != nil && *cf.Met <= 0 {
		errs = append(errs, configErr("comfort", "met", "must be > 0, got %g", *cf.Met))
	}
	if cf.AirSpeed != nil && *cf.AirSpeed < 0 {
		errs = append(errs, configErr("comfort", "air_speed", "must be >= 0, got %g", *cf.AirSpeed))
	}

	return errors.Join(errs...)
}

// RequireWeatherFile checks the weather section for file-driven runs.
func (c *Config) RequireWeatherFile() error {
	if c.Weather.EPWFile == "" {
		return configErr("weather", "epw_file", "is required")
	}
	return nil
}

// DefaultConfig is the single-zone office used by the material comparison.
func DefaultConfig(epwFile string) *Config {
	wall := func(name, orientation string, area float64) SurfaceConfig {
		return SurfaceConfig{Name: name, Area: area, Orientation: orientation, Construction: "Wall_Standard"}
	}
	return &Config{
		Simulation: SimulationConfig{
			StartMonth: 1, StartDay: 1, EndMonth: 12, EndDay: 31,
			Timestep:   string(IntervalH1),
			WarmupDays: ptr(7),
		},
		Building: BuildingConfig{
			Zones: []ZoneConfig{{
				Name:             "Zone1",
				Volume:           500,
				Area:             ptr(100.0),
				OccupancyDensity: ptr(0.05),
				EquipmentLoad:    ptr(10.0),
				LightingLoad:     ptr(5.0),
				Surfaces: []SurfaceConfig{
					wall("South_Wall", "South", 100),
					wall("North_Wall", "North", 100),
					wall("East_Wall", "East", 80),
					wall("West_Wall", "West", 80),
					{Name: "Roof", Area: 150, Orientation: "Roof", Construction: "Roof_Standard"},
					{Name: "Floor", Area: 150, Orientation: "Floor", Construction: "Floor_Standard"},
				},
			}},
		},
		HVAC:    HVACConfig{System: string(SystemStandard), CoolingSetpoint: ptr(26.0), HeatingSetpoint: ptr(20.0)},
		Weather: WeatherConfig{EPWFile: epwFile},
	}
}
