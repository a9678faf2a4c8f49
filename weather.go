package main

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// WeatherRecord is the weather state at one timestamp.
type WeatherRecord struct {
	Datetime      time.Time
	Month         int
	Temperature   float64 // dry bulb, degree C
	Humidity      float64 // relative humidity, 0..1
	Pressure      float64 // Pa
	WindSpeed     float64 // m/s
	WindDirection float64 // deg
	GHI           float64 // global horizontal irradiance, W/m2
	DNI           float64 // direct normal irradiance, W/m2
	DHI           float64 // diffuse horizontal irradiance, W/m2
	Albedo        float64 // ground reflectance, -

	// Optional inputs; nil when the source does not provide them.
	Infrared              *float64 // horizontal infrared radiation from sky, W/m2
	DewPoint              *float64 // degree C
	TotalSkyCover         *float64 // tenths
	AnnualMeanTemperature *float64 // degree C

	Site *Site
}

// WeatherProvider supplies hourly weather to the simulation engine.
type WeatherProvider interface {
	// HourlyData returns the record nearest to t.
	HourlyData(t time.Time) WeatherRecord
	// Period returns the first and last timestamps.
	Period() (start, end time.Time)
	// Years lists the distinct calendar years, ascending.
	Years() []int
}

// WeatherData is an immutable, time-sorted weather year.
type WeatherData struct {
	Source          string
	Site            *Site
	Records         []WeatherRecord
	ReferenceYear   int  // year all rows were mapped onto, 0 if not unified
	Synthetic       bool // generated because the file could not be read
	annualMeanTempC *float64
	years           []int
}

/*
Wrap time-ordered records.

	Args:
	    source: file path or label
	    site: station location, may be nil
	    records: hourly records

	Notes:
	    records are sorted by time and the annual mean temperature is
	    attached to every record.
*/
func NewWeatherData(source string, site *Site, records []WeatherRecord) *WeatherData {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Datetime.Before(records[j].Datetime)
	})

	w := &WeatherData{Source: source, Site: site, Records: records}

	if len(records) > 0 {
		temps := make([]float64, len(records))
		for i, r := range records {
			temps[i] = r.Temperature
		}
		mean := stat.Mean(temps, nil)
		w.annualMeanTempC = &mean
	}

	seen := map[int]bool{}
	for i := range records {
		records[i].Site = site
		records[i].AnnualMeanTemperature = w.annualMeanTempC
		if records[i].Month == 0 {
			records[i].Month = int(records[i].Datetime.Month())
		}
		y := records[i].Datetime.Year()
		if !seen[y] {
			seen[y] = true
			w.years = append(w.years, y)
		}
	}
	sort.Ints(w.years)
	return w
}

func (w *WeatherData) Period() (start, end time.Time) {
	if len(w.Records) == 0 {
		return time.Time{}, time.Time{}
	}
	return w.Records[0].Datetime, w.Records[len(w.Records)-1].Datetime
}

func (w *WeatherData) Years() []int {
	return w.years
}

// AnnualMeanTemperature of the dry bulb temperature, degree C
func (w *WeatherData) AnnualMeanTemperature() (float64, bool) {
	if w.annualMeanTempC == nil {
		return 0, false
	}
	return *w.annualMeanTempC, true
}

/*
Record nearest to the requested time.

	Args:
	    t: requested time

	Returns:
	    the record whose timestamp is closest to t; ties resolve to the
	    earlier record. Empty data yields a zero record.
*/
func (w *WeatherData) HourlyData(t time.Time) WeatherRecord {
	n := len(w.Records)
	if n == 0 {
		return WeatherRecord{Datetime: t, Humidity: 0.5, Pressure: getPAtm(), Albedo: 0.2}
	}
	i := sort.Search(n, func(i int) bool { return !w.Records[i].Datetime.Before(t) })
	switch {
	case i == 0:
		return w.Records[0]
	case i == n:
		return w.Records[n-1]
	}
	before, after := w.Records[i-1], w.Records[i]
	if t.Sub(before.Datetime) <= after.Datetime.Sub(t) {
		return before
	}
	return after
}

/*
Generate the synthetic weather year used when a file cannot be read.

	Notes:
	    year 2023, hourly, site latitude 30 / longitude 120 / UTC+8.
	    T = 15 + 10 sin(2π(doy-80)/365) + 5 sin(2π h/24)
	    solar = max(0, 800 sin(π(h-6)/12)), DNI = 0.8 solar, DHI = 0.2 solar
	    RH = 50 + 20 sin(2π(doy-1)/365) %
*/
func NewSyntheticWeather() *WeatherData {
	const year = 2023
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	records := make([]WeatherRecord, 0, 8760)
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		doy := float64(t.YearDay())
		h := float64(t.Hour())

		temp := 15.0 + 10.0*math.Sin(2*math.Pi*(doy-80)/365) + 5.0*math.Sin(2*math.Pi*h/24)
		solar := math.Max(0, 800.0*math.Sin(math.Pi*(h-6)/12))
		rh := 50.0 + 20.0*math.Sin(2*math.Pi*(doy-1)/365)
		wind := 3.0 + math.Sin(2*math.Pi*(doy*24+h)/(24*7))

		records = append(records, WeatherRecord{
			Datetime:    t,
			Month:       int(t.Month()),
			Temperature: temp,
			Humidity:    rh / 100.0,
			Pressure:    getPAtm(),
			WindSpeed:   wind,
			GHI:         solar,
			DNI:         solar * 0.8,
			DHI:         solar * 0.2,
			Albedo:      0.2,
		})
	}

	w := NewWeatherData("synthetic", syntheticSite(), records)
	w.Synthetic = true
	return w
}
