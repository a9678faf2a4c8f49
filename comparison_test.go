package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskResult(weather, scenario string, coolKWh, heatKWh float64) TaskResult {
	return TaskResult{
		Weather:   weather,
		Scenario:  MaterialScenario{Name: scenario, Description: scenario + " desc"},
		FloorArea: 100,
		Summary: RunSummary{
			TotalCoolingEnergyKWh: coolKWh,
			TotalHeatingEnergyKWh: heatKWh,
			TotalHVACEnergyKWh:    coolKWh + heatKWh,
		},
	}
}

func testReport() *BatchReport {
	return &BatchReport{
		Scenarios: DefaultScenarios(),
		Results: []TaskResult{
			taskResult("w/tokyo.epw", "Baseline", 800, 200),
			taskResult("w/tokyo.epw", "HighReflect_HighEmit", 600, 300),
			taskResult("w/tokyo.epw", "HighAbsorb_HighEmit", 1000, 100),
			taskResult("w/osaka.epw", "HighReflect_HighEmit", 500, 100),
			taskResult("w/osaka.epw", "HighAbsorb_HighEmit", 700, 50),
			taskResult("w/sapporo.epw", "Baseline", 0, 0),
			taskResult("w/sapporo.epw", "HighReflect_HighEmit", 0, 10),
		},
	}
}

func TestBuildComparisonTables_BaselineDelta(t *testing.T) {
	tables := BuildComparisonTables(testReport())
	require.Len(t, tables.PerWeather, 3)

	tokyo := tables.PerWeather[0]
	assert.Equal(t, "w/tokyo.epw", tokyo.Weather)
	require.Len(t, tokyo.Rows, 3)
	for _, r := range tokyo.Rows {
		require.NotNil(t, r.DeltaEnergyKWh)
		require.NotNil(t, r.SavingPercent)
	}
	assert.Equal(t, "tokyo", tokyo.Rows[0].EPW)
	assert.InDelta(t, 0.0, *tokyo.Rows[0].DeltaEnergyKWh, 1e-9)
	assert.InDelta(t, -100.0, *tokyo.Rows[1].DeltaEnergyKWh, 1e-9)
	assert.InDelta(t, 10.0, *tokyo.Rows[1].SavingPercent, 1e-9)
	assert.InDelta(t, -10.0, *tokyo.Rows[2].SavingPercent, 1e-9)
	assert.InDelta(t, 28.8, tokyo.Rows[0].TotalCoolingMJPerM2, 1e-9)
	assert.InDelta(t, 36.0, tokyo.Rows[0].TotalHVACMJPerM2, 1e-9)
}

func TestBuildComparisonTables_MissingBaseline(t *testing.T) {
	tables := BuildComparisonTables(testReport())
	osaka := tables.PerWeather[1]
	require.Len(t, osaka.Rows, 2)
	for _, r := range osaka.Rows {
		assert.Nil(t, r.DeltaEnergyKWh)
		assert.Nil(t, r.SavingPercent)
	}

	// cross-weather savings are taken against the first row instead
	var rows []SavingRow
	for _, r := range tables.All {
		if r.EPW == "osaka" {
			rows = append(rows, r)
		}
	}
	require.Len(t, rows, 2)
	assert.InDelta(t, 0.0, rows[0].SavingCoolingEnergyMJPerM2, 1e-9)
	assert.InDelta(t, 18.0-25.2, rows[1].SavingCoolingEnergyMJPerM2, 1e-9)
	assert.InDelta(t, 3.6-1.8, rows[1].SavingHeatingEnergyMJPerM2, 1e-9)
}

func TestBuildComparisonTables_ZeroBaseline(t *testing.T) {
	tables := BuildComparisonTables(testReport())
	sapporo := tables.PerWeather[2]
	require.Len(t, sapporo.Rows, 2)
	require.NotNil(t, sapporo.Rows[1].DeltaEnergyKWh)
	assert.InDelta(t, 10.0, *sapporo.Rows[1].DeltaEnergyKWh, 1e-9)
	assert.Nil(t, sapporo.Rows[1].SavingPercent)
}

func TestBuildComparisonTables_AllRows(t *testing.T) {
	tables := BuildComparisonTables(testReport())
	require.Len(t, tables.All, 7)
	assert.Equal(t, "HighReflect_HighEmit", tables.All[1].Scenario)
	assert.InDelta(t, 28.8-21.6, tables.All[1].SavingCoolingEnergyMJPerM2, 1e-9)
	assert.InDelta(t, 7.2-10.8, tables.All[1].SavingHeatingEnergyMJPerM2, 1e-9)
}

func TestBuildComparisonTables_Empty(t *testing.T) {
	assert.Empty(t, BuildComparisonTables(nil).PerWeather)
	assert.Empty(t, BuildComparisonTables(&BatchReport{Scenarios: DefaultScenarios()}).All)
}

func TestComparisonTables_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	written, err := BuildComparisonTables(testReport()).Export(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "tokyo_radiative_cooling_comparison.csv"),
		filepath.Join(dir, "osaka_radiative_cooling_comparison.csv"),
		filepath.Join(dir, "sapporo_radiative_cooling_comparison.csv"),
		filepath.Join(dir, "material_radiative_cooling_comparison_all.csv"),
	}, written)

	f, err := os.Open(written[0])
	require.NoError(t, err)
	defer f.Close()
	sc := bufio.NewScanner(f)
	require.True(t, sc.Scan())
	header := strings.Split(sc.Text(), ",")
	assert.Equal(t, "EPW", header[0])
	assert.Contains(t, header, "Delta_Energy_kWh")
	assert.Contains(t, header, "Saving_%")

	lines := 1
	for sc.Scan() {
		lines++
	}
	assert.Equal(t, 4, lines)
}
