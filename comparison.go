package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// ComparisonRow is one scenario of the per-weather comparison table.
type ComparisonRow struct {
	EPW                   string   `csv:"EPW"`
	Scenario              string   `csv:"Scenario"`
	Desc                  string   `csv:"Desc"`
	WallAlpha             float64  `csv:"Wall_Alpha"`
	WallEps               float64  `csv:"Wall_Eps"`
	WallLambda            float64  `csv:"Wall_Lambda_WmK"`
	RoofAlpha             float64  `csv:"Roof_Alpha"`
	RoofEps               float64  `csv:"Roof_Eps"`
	RoofLambda            float64  `csv:"Roof_Lambda_WmK"`
	TotalCoolingEnergyKWh float64  `csv:"Total_Cooling_Energy_kWh"`
	TotalHeatingEnergyKWh float64  `csv:"Total_Heating_Energy_kWh"`
	TotalHVACEnergyKWh    float64  `csv:"Total_HVAC_Energy_kWh"`
	TotalCoolingMJPerM2   float64  `csv:"Total_Cooling_MJ_per_m2"`
	TotalHeatingMJPerM2   float64  `csv:"Total_Heating_MJ_per_m2"`
	TotalHVACMJPerM2      float64  `csv:"Total_HVAC_MJ_per_m2"`
	FloorArea             float64  `csv:"Floor_Area_m2"`
	PeakCoolingLoadKW     float64  `csv:"Peak_Cooling_Load_kW"`
	PeakHeatingLoadKW     float64  `csv:"Peak_Heating_Load_kW"`
	DeltaEnergyKWh        *float64 `csv:"Delta_Energy_kWh"`
	SavingPercent         *float64 `csv:"Saving_%"`
}

// SavingRow is one (weather, scenario) line of the cross-weather table.
type SavingRow struct {
	EPW                        string  `csv:"EPW"`
	Scenario                   string  `csv:"Scenario"`
	Desc                       string  `csv:"Desc"`
	WallAlpha                  float64 `csv:"Wall_Alpha"`
	WallEps                    float64 `csv:"Wall_Eps"`
	WallLambda                 float64 `csv:"Wall_Lambda_WmK"`
	RoofAlpha                  float64 `csv:"Roof_Alpha"`
	RoofEps                    float64 `csv:"Roof_Eps"`
	RoofLambda                 float64 `csv:"Roof_Lambda_WmK"`
	TotalHVACEnergyKWh         float64 `csv:"Total_HVAC_Energy_kWh"`
	TotalCoolingMJPerM2        float64 `csv:"Total_Cooling_MJ_per_m2"`
	TotalHeatingMJPerM2        float64 `csv:"Total_Heating_MJ_per_m2"`
	TotalHVACMJPerM2           float64 `csv:"Total_HVAC_MJ_per_m2"`
	FloorArea                  float64 `csv:"Floor_Area_m2"`
	PeakCoolingLoadKW          float64 `csv:"Peak_Cooling_Load_kW"`
	PeakHeatingLoadKW          float64 `csv:"Peak_Heating_Load_kW"`
	SavingCoolingEnergyMJPerM2 float64 `csv:"Saving_cooling_energy_MJ_per_m2"`
	SavingHeatingEnergyMJPerM2 float64 `csv:"Saving_heating_energy_MJ_per_m2"`
}

// WeatherComparison is the comparison table of one weather file.
type WeatherComparison struct {
	Weather string
	Rows    []ComparisonRow
}

type ComparisonTables struct {
	PerWeather []WeatherComparison
	All        []SavingRow
}

func comparisonRowOf(r TaskResult) ComparisonRow {
	area := max(r.FloorArea, 1e-6)
	s := r.Summary
	return ComparisonRow{
		EPW:                   r.WeatherName(),
		Scenario:              r.Scenario.Name,
		Desc:                  r.Scenario.Description,
		WallAlpha:             r.Outer.WallAlpha,
		WallEps:               r.Outer.WallEps,
		WallLambda:            r.Outer.WallLambda,
		RoofAlpha:             r.Outer.RoofAlpha,
		RoofEps:               r.Outer.RoofEps,
		RoofLambda:            r.Outer.RoofLambda,
		TotalCoolingEnergyKWh: s.TotalCoolingEnergyKWh,
		TotalHeatingEnergyKWh: s.TotalHeatingEnergyKWh,
		TotalHVACEnergyKWh:    s.TotalHVACEnergyKWh,
		TotalCoolingMJPerM2:   s.TotalCoolingEnergyKWh * kWhToMJ / area,
		TotalHeatingMJPerM2:   s.TotalHeatingEnergyKWh * kWhToMJ / area,
		TotalHVACMJPerM2:      s.TotalHVACEnergyKWh * kWhToMJ / area,
		FloorArea:             area,
		PeakCoolingLoadKW:     s.PeakCoolingLoadKW,
		PeakHeatingLoadKW:     s.PeakHeatingLoadKW,
	}
}

/*
Assemble the comparison tables of a batch.

	Notes:
	    Rows follow the declared scenario order. The baseline is the
	    first declared scenario. Delta_Energy_kWh and Saving_% stay
	    empty when the baseline failed for that weather file, Saving_%
	    also when the baseline energy is zero. The cross-weather
	    savings fall back to the first row of the weather file when the
	    baseline is missing.
*/
func BuildComparisonTables(report *BatchReport) ComparisonTables {
	var tables ComparisonTables
	if report == nil || len(report.Scenarios) == 0 {
		return tables
	}
	baseline := report.Scenarios[0].Name

	// Results are already in weather order, then scenario order.
	var groups []WeatherComparison
	for _, r := range report.Results {
		if n := len(groups); n == 0 || groups[n-1].Weather != r.Weather {
			groups = append(groups, WeatherComparison{Weather: r.Weather})
		}
		g := &groups[len(groups)-1]
		g.Rows = append(g.Rows, comparisonRowOf(r))
	}

	for gi := range groups {
		rows := groups[gi].Rows
		var base *ComparisonRow
		for i := range rows {
			if rows[i].Scenario == baseline {
				base = &rows[i]
				break
			}
		}

		if base != nil {
			b := base.TotalHVACEnergyKWh
			for i := range rows {
				rows[i].DeltaEnergyKWh = ptr(rows[i].TotalHVACEnergyKWh - b)
				if b > 0 {
					rows[i].SavingPercent = ptr((b - rows[i].TotalHVACEnergyKWh) / b * 100.0)
				}
			}
		}

		ref := base
		if ref == nil {
			ref = &rows[0]
		}
		baseCool, baseHeat := ref.TotalCoolingMJPerM2, ref.TotalHeatingMJPerM2
		for _, row := range rows {
			tables.All = append(tables.All, SavingRow{
				EPW:                        row.EPW,
				Scenario:                   row.Scenario,
				Desc:                       row.Desc,
				WallAlpha:                  row.WallAlpha,
				WallEps:                    row.WallEps,
				WallLambda:                 row.WallLambda,
				RoofAlpha:                  row.RoofAlpha,
				RoofEps:                    row.RoofEps,
				RoofLambda:                 row.RoofLambda,
				TotalHVACEnergyKWh:         row.TotalHVACEnergyKWh,
				TotalCoolingMJPerM2:        row.TotalCoolingMJPerM2,
				TotalHeatingMJPerM2:        row.TotalHeatingMJPerM2,
				TotalHVACMJPerM2:           row.TotalHVACMJPerM2,
				FloorArea:                  row.FloorArea,
				PeakCoolingLoadKW:          row.PeakCoolingLoadKW,
				PeakHeatingLoadKW:          row.PeakHeatingLoadKW,
				SavingCoolingEnergyMJPerM2: baseCool - row.TotalCoolingMJPerM2,
				SavingHeatingEnergyMJPerM2: baseHeat - row.TotalHeatingMJPerM2,
			})
		}
	}
	tables.PerWeather = groups
	return tables
}

/*
Write the comparison tables.

	Returns:
	    paths of the written files

	Notes:
	    <weather>_radiative_cooling_comparison.csv per weather file and
	    material_radiative_cooling_comparison_all.csv
*/
func (t ComparisonTables) Export(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	var written []string
	for _, g := range t.PerWeather {
		path := filepath.Join(dir, weatherName(g.Weather)+"_radiative_cooling_comparison.csv")
		rows := g.Rows
		if err := writeCSV(path, &rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if len(t.All) > 0 {
		path := filepath.Join(dir, "material_radiative_cooling_comparison_all.csv")
		rows := t.All
		if err := writeCSV(path, &rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
