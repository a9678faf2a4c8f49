package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectWeatherFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.epw", "a.EPW", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	files, err := collectWeatherFiles(nil, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.EPW"), filepath.Join(dir, "b.epw")}, files)

	files, err = collectWeatherFiles([]string{"x.epw"}, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.epw"}, files)

	files, err = collectWeatherFiles(nil, filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

const compareConfig = `
simulation: {start_month: 7, start_day: 1, end_month: 7, end_day: 1, warmup_days: 0, use_epw_dates: false}
building:
  zones:
    - name: Office
      volume: 300
      area: 100
      surfaces:
        - {name: South, area: 30, orientation: South, construction: Wall_Standard}
        - {name: Roof, area: 100, orientation: Roof, construction: Roof_Standard}
        - {name: Floor, area: 100, orientation: Floor, construction: Floor_Standard}
`

func TestCompareCmd_SyntheticWeather(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(compareConfig), 0o644))
	out := filepath.Join(dir, "out")
	metricsPath := filepath.Join(dir, "batch.prom")

	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{
		"compare", "--log", "error",
		"-c", cfgPath,
		"--weather-dir", filepath.Join(dir, "none"),
		"-o", out,
		"--metrics-file", metricsPath,
	})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "3 succeeded, 0 failed")
	assert.FileExists(t, filepath.Join(out, "synthetic_radiative_cooling_comparison.csv"))
	assert.FileExists(t, filepath.Join(out, "material_radiative_cooling_comparison_all.csv"))

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `simulation_tasks_total{status="ok"} 3`)
}

func TestSimulateCmd_RequiresWeatherFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(compareConfig), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"simulate", "--log", "error", "-c", cfgPath})
	assert.Error(t, cmd.Execute())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("verbose")
	assert.Error(t, err)
}
