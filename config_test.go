package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
simulation:
  start_month: 7
  start_day: 1
  end_month: 7
  end_day: 31
  timestep: 30m
  warmup_days: 3
  use_epw_dates: false
building:
  constructions:
    - name: Cool_Roof
      layers:
        - material: Concrete
          thickness: 0.15
          solar_absorptance: 0.1
          emissivity: 0.95
  zones:
    - name: Office
      volume: 300
      area: 100
      surfaces:
        - {name: South, area: 30, orientation: South, construction: Wall_Standard}
        - {name: Roof, area: 100, orientation: Roof, construction: Cool_Roof}
hvac:
  system: vrf
  cooling_setpoint: 27
  heating_setpoint: 19
comfort:
  clo: 0.5
  method: convergence
weather:
  epw_file: tokyo.epw
  reference_year: 2010
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "30m", cfg.Simulation.Timestep)
	require.NotNil(t, cfg.Simulation.WarmupDays)
	assert.Equal(t, 3, *cfg.Simulation.WarmupDays)
	require.Len(t, cfg.Building.Zones, 1)
	assert.Len(t, cfg.Building.Zones[0].Surfaces, 2)
	assert.Equal(t, "vrf", cfg.HVAC.System)
	assert.InDelta(t, 27.0, *cfg.HVAC.CoolingSetpoint, 1e-12)
	assert.Equal(t, "tokyo.epw", cfg.Weather.EPWFile)
	assert.Equal(t, 2010, *cfg.Weather.ReferenceYear)
	assert.Equal(t, "convergence", cfg.Comfort.Method)
	assert.NoError(t, cfg.RequireWeatherFile())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Office", cfg.Building.Zones[0].Name)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseConfig_JSON(t *testing.T) {
	doc := `{"building": {"zones": [{"name": "Z", "volume": 50, "surfaces": [{"name": "N", "area": 10, "orientation": "North", "construction": "Wall_Standard"}]}]}}`
	cfg, err := ParseConfig([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Z", cfg.Building.Zones[0].Name)
	assert.Error(t, cfg.RequireWeatherFile())
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := DefaultConfig("x.epw")
	cfg.Simulation.Timestep = "7m"
	cfg.Simulation.WarmupDays = ptr(-1)
	cfg.Building.Zones[0].Volume = 0
	cfg.Building.Zones[0].Area = ptr(0.0)
	cfg.Building.Zones[0].Surfaces[0].Construction = "Wall_Paper"
	cfg.Building.Zones[0].Surfaces[1].Orientation = "Up"
	cfg.HVAC.HeatingSetpoint = ptr(30.0)
	cfg.Comfort.Met = ptr(0.0)

	err := cfg.Validate()
	require.Error(t, err)

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	keys := map[string]bool{}
	for _, e := range joined.Unwrap() {
		var c *ConfigError
		require.True(t, errors.As(e, &c))
		keys[c.Section+"."+c.Key] = true
	}
	for _, want := range []string{
		"simulation.timestep",
		"simulation.warmup_days",
		"building.zones[0].volume",
		"building.zones[0].area",
		"building.zones[0].surfaces[0].construction",
		"building.zones[0].surfaces[1].orientation",
		"hvac.heating_setpoint",
		"comfort.met",
	} {
		assert.True(t, keys[want], want)
	}
}

func TestValidate_ZoneArea(t *testing.T) {
	for _, tc := range []struct {
		name string
		area *float64
		ok   bool
	}{
		{"default", nil, true},
		{"positive", ptr(42.0), true},
		{"zero", ptr(0.0), false},
		{"negative", ptr(-10.0), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig("")
			cfg.Building.Zones[0].Area = tc.area
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "zones[0].area", cerr.Key)
		})
	}
}

func TestValidate_DeclaredConstructionIsKnown(t *testing.T) {
	cfg := DefaultConfig("")
	cfg.Building.Constructions = []ConstructionConfig{{
		Name:   "Green_Roof",
		Layers: []LayerConfig{{Material: "Soil", Thickness: 0.3}},
	}}
	cfg.Building.Zones[0].Surfaces[4].Construction = "Green_Roof"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NoZones(t *testing.T) {
	err := (&Config{}).Validate()
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), ErrNoZones.Error())
}

func TestConfig_CloneIsDeep(t *testing.T) {
	cfg := DefaultConfig("a.epw")
	cp, err := cfg.Clone()
	require.NoError(t, err)

	*cp.HVAC.CoolingSetpoint = 24
	cp.Building.Zones[0].Surfaces[0].Area = 1
	cp.Weather.EPWFile = "b.epw"

	assert.InDelta(t, 26.0, *cfg.HVAC.CoolingSetpoint, 1e-12)
	assert.InDelta(t, 100.0, cfg.Building.Zones[0].Surfaces[0].Area, 1e-12)
	assert.Equal(t, "a.epw", cfg.Weather.EPWFile)
}

func TestConfigError_Message(t *testing.T) {
	assert.Equal(t, "config: hvac.system: bad", configErr("hvac", "system", "bad").Error())
	assert.Equal(t, `config: section "weather": none`, configErr("weather", "", "none").Error())
}
