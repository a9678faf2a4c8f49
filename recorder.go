package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	jPerKWh  = 3.6e6
	kWhToMJ  = 3.6
	kWhToGJ  = 0.0036
	dateTime = "2006-01-02 15:04:05"
)

type HourlyLoadRow struct {
	Hour                  float64 `csv:"Hour"`
	DateTime              string  `csv:"DateTime"`
	Zone                  string  `csv:"Zone"`
	Mode                  string  `csv:"Mode"`
	CoolingLoadKW         float64 `csv:"Cooling_Load_kW"`
	HeatingLoadKW         float64 `csv:"Heating_Load_kW"`
	LatentLoadKW          float64 `csv:"Latent_Load_kW"`
	CoolingEnergyKWh      float64 `csv:"Cooling_Energy_kWh"`
	HeatingEnergyKWh      float64 `csv:"Heating_Energy_kWh"`
	CoolingEnergyKWhPerM2 float64 `csv:"Cooling_Energy_kWh_per_m2"`
	HeatingEnergyKWhPerM2 float64 `csv:"Heating_Energy_kWh_per_m2"`
	CoolingEnergyMJPerM2  float64 `csv:"Cooling_Energy_MJ_per_m2"`
	HeatingEnergyMJPerM2  float64 `csv:"Heating_Energy_MJ_per_m2"`
	HVACEnergyMJPerM2     float64 `csv:"HVAC_Energy_MJ_per_m2"`
}

type ZoneTemperatureRow struct {
	Hour       float64 `csv:"Hour"`
	DateTime   string  `csv:"DateTime"`
	Zone       string  `csv:"Zone"`
	IndoorTemp float64 `csv:"Indoor_Temp_C"`
	MRT        float64 `csv:"MRT_C"`
	Operative  float64 `csv:"Operative_Temp_C"`
	PMV        float64 `csv:"PMV"`
	PPD        float64 `csv:"PPD_%"`
	NeutralOT  float64 `csv:"Neutral_OT_C"`
	Iterations int     `csv:"Iterations"`
	Residual   float64 `csv:"Residual_K"`
}

type SurfaceTemperatureRow struct {
	Hour        float64 `csv:"Hour"`
	DateTime    string  `csv:"DateTime"`
	Zone        string  `csv:"Zone"`
	Surface     string  `csv:"Surface"`
	Temperature float64 `csv:"Temperature_C"`
}

// SimulationResults collects the recorded steps of one run. Rows are only appended.
type SimulationResults struct {
	HourlyLoads         []HourlyLoadRow
	ZoneTemperatures    []ZoneTemperatureRow
	SurfaceTemperatures []SurfaceTemperatureRow

	itv        Interval
	zones      []string
	floorAreas map[string]float64 // m2
	steps      map[string]int
}

func newSimulationResults(b *BuildingModel, itv Interval) *SimulationResults {
	r := &SimulationResults{
		itv:        itv,
		floorAreas: make(map[string]float64, len(b.Zones)),
		steps:      make(map[string]int, len(b.Zones)),
	}
	for _, z := range b.Zones {
		r.zones = append(r.zones, z.Name)
		r.floorAreas[z.Name] = math.Max(z.Area, 1e-6)
	}
	return r
}

// record appends the current state of a zone.
func (r *SimulationResults) record(t time.Time, z *Zone) {
	hour := float64(r.steps[z.Name]) * r.itv.Hours()
	r.steps[z.Name]++
	stamp := t.Format(dateTime)
	area := r.floorAreas[z.Name]

	coolKWh := z.CoolingEnergy / jPerKWh
	heatKWh := z.HeatingEnergy / jPerKWh

	r.HourlyLoads = append(r.HourlyLoads, HourlyLoadRow{
		Hour:                  hour,
		DateTime:              stamp,
		Zone:                  z.Name,
		Mode:                  getOperationMode(z.CoolingLoad, z.HeatingLoad).String(),
		CoolingLoadKW:         z.CoolingLoad / 1000.0,
		HeatingLoadKW:         z.HeatingLoad / 1000.0,
		LatentLoadKW:          z.LatentLoad / 1000.0,
		CoolingEnergyKWh:      coolKWh,
		HeatingEnergyKWh:      heatKWh,
		CoolingEnergyKWhPerM2: coolKWh / area,
		HeatingEnergyKWhPerM2: heatKWh / area,
		CoolingEnergyMJPerM2:  coolKWh * kWhToMJ / area,
		HeatingEnergyMJPerM2:  heatKWh * kWhToMJ / area,
		HVACEnergyMJPerM2:     (coolKWh + heatKWh) * kWhToMJ / area,
	})

	r.ZoneTemperatures = append(r.ZoneTemperatures, ZoneTemperatureRow{
		Hour:       hour,
		DateTime:   stamp,
		Zone:       z.Name,
		IndoorTemp: kelvinToCelsius(z.Temperature),
		MRT:        z.Comfort.MRT,
		Operative:  z.Comfort.Operative,
		PMV:        z.Comfort.PMV,
		PPD:        z.Comfort.PPD,
		NeutralOT:  z.Comfort.Neutral,
		Iterations: z.Iterations,
		Residual:   z.Residual,
	})

	for _, s := range z.Surfaces {
		r.SurfaceTemperatures = append(r.SurfaceTemperatures, SurfaceTemperatureRow{
			Hour:        hour,
			DateTime:    stamp,
			Zone:        z.Name,
			Surface:     s.Name,
			Temperature: kelvinToCelsius(z.SurfaceTemperatures[s.Name]),
		})
	}
}

// AnnualStatistics summarizes the recorded steps of one zone.
type AnnualStatistics struct {
	Zone                      string  `csv:"Zone"`
	TotalCoolingEnergyGJ      float64 `csv:"Total_Cooling_Energy_GJ"`
	TotalHeatingEnergyGJ      float64 `csv:"Total_Heating_Energy_GJ"`
	TotalHVACEnergyGJ         float64 `csv:"Total_HVAC_Energy_GJ"`
	TotalCoolingEnergyMJPerM2 float64 `csv:"Total_Cooling_Energy_MJ_per_m2"`
	TotalHeatingEnergyMJPerM2 float64 `csv:"Total_Heating_Energy_MJ_per_m2"`
	TotalHVACEnergyMJPerM2    float64 `csv:"Total_HVAC_Energy_MJ_per_m2"`
	FloorArea                 float64 `csv:"Floor_Area_m2"`
	PeakCoolingLoadKW         float64 `csv:"Peak_Cooling_Load_kW"`
	PeakHeatingLoadKW         float64 `csv:"Peak_Heating_Load_kW"`
	AverageCoolingLoadKW      float64 `csv:"Average_Cooling_Load_kW"`
	AverageHeatingLoadKW      float64 `csv:"Average_Heating_Load_kW"`
}

// zoneColumns pulls the load and energy columns of one zone.
func (r *SimulationResults) zoneColumns(zone string) (coolKW, heatKW, coolKWh, heatKWh []float64) {
	for _, row := range r.HourlyLoads {
		if row.Zone != zone {
			continue
		}
		coolKW = append(coolKW, row.CoolingLoadKW)
		heatKW = append(heatKW, row.HeatingLoadKW)
		coolKWh = append(coolKWh, row.CoolingEnergyKWh)
		heatKWh = append(heatKWh, row.HeatingEnergyKWh)
	}
	return
}

func maxOrZero(v []float64) float64 {
	if len(v) == 0 {
		return 0.0
	}
	return floats.Max(v)
}

func meanOrZero(v []float64) float64 {
	if len(v) == 0 {
		return 0.0
	}
	return stat.Mean(v, nil)
}

/*
Per-zone totals, intensities and peaks.

	Returns:
	    one entry per zone in model order

	Notes:
	    intensities are normalized by the zone floor area
*/
func (r *SimulationResults) AnnualStatistics() []AnnualStatistics {
	out := make([]AnnualStatistics, 0, len(r.zones))
	for _, zone := range r.zones {
		coolKW, heatKW, coolKWh, heatKWh := r.zoneColumns(zone)
		area := r.floorAreas[zone]
		cool := floats.Sum(coolKWh)
		heat := floats.Sum(heatKWh)

		out = append(out, AnnualStatistics{
			Zone:                      zone,
			TotalCoolingEnergyGJ:      cool * kWhToGJ,
			TotalHeatingEnergyGJ:      heat * kWhToGJ,
			TotalHVACEnergyGJ:         (cool + heat) * kWhToGJ,
			TotalCoolingEnergyMJPerM2: cool * kWhToMJ / area,
			TotalHeatingEnergyMJPerM2: heat * kWhToMJ / area,
			TotalHVACEnergyMJPerM2:    (cool + heat) * kWhToMJ / area,
			FloorArea:                 area,
			PeakCoolingLoadKW:         maxOrZero(coolKW),
			PeakHeatingLoadKW:         maxOrZero(heatKW),
			AverageCoolingLoadKW:      meanOrZero(coolKW),
			AverageHeatingLoadKW:      meanOrZero(heatKW),
		})
	}
	return out
}

// RunSummary is the headline of a finished run.
type RunSummary struct {
	Period                string
	RecordedHours         float64
	Zones                 int
	TotalCoolingEnergyKWh float64
	TotalHeatingEnergyKWh float64
	TotalHVACEnergyKWh    float64
	PeakCoolingLoadKW     float64
	PeakHeatingLoadKW     float64
}

func (r *SimulationResults) Summary(start, end time.Time) RunSummary {
	s := RunSummary{
		Period: fmt.Sprintf("%s - %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
		Zones:  len(r.zones),
	}
	if len(r.zones) > 0 {
		s.RecordedHours = float64(r.steps[r.zones[0]]) * r.itv.Hours()
	}
	for _, zone := range r.zones {
		coolKW, heatKW, coolKWh, heatKWh := r.zoneColumns(zone)
		s.TotalCoolingEnergyKWh += floats.Sum(coolKWh)
		s.TotalHeatingEnergyKWh += floats.Sum(heatKWh)
		s.PeakCoolingLoadKW = math.Max(s.PeakCoolingLoadKW, maxOrZero(coolKW))
		s.PeakHeatingLoadKW = math.Max(s.PeakHeatingLoadKW, maxOrZero(heatKW))
	}
	s.TotalHVACEnergyKWh = s.TotalCoolingEnergyKWh + s.TotalHeatingEnergyKWh
	return s
}

// TotalFloorArea of the recorded zones, m2
func (r *SimulationResults) TotalFloorArea() float64 {
	var a float64
	for _, zone := range r.zones {
		a += r.floorAreas[zone]
	}
	return a
}

/*
Write the result tables into a directory.

	Notes:
	    hourly_loads.csv, zone_temperature.csv, surface_temperature.csv
	    and annual_energy.csv; the directory is created when missing.
*/
func (r *SimulationResults) Export(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	stats := r.AnnualStatistics()
	tables := []struct {
		name string
		rows any
	}{
		{"hourly_loads.csv", &r.HourlyLoads},
		{"zone_temperature.csv", &r.ZoneTemperatures},
		{"surface_temperature.csv", &r.SurfaceTemperatures},
		{"annual_energy.csv", &stats},
	}
	for _, tbl := range tables {
		if err := writeCSV(filepath.Join(dir, tbl.name), tbl.rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
