package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEPWLocation = "LOCATION,Tokyo,-,JPN,IWEC Data,476620,35.68,139.77,9.0,35.0"

type epwTestRow struct {
	year, month, day, hour int
	dbt, dpt, rh, pres, ir float64
}

func (r epwTestRow) line() string {
	return fmt.Sprintf("%d,%d,%d,%d,60,?,%g,%g,%g,%g,0,0,%g,300,200,100,0,0,0,0,180,2.5,5,5,20,7777,9,999999999,10,0.1,0,88,0.2,0,0",
		r.year, r.month, r.day, r.hour, r.dbt, r.dpt, r.rh, r.pres, r.ir)
}

func row(year, month, day, hour int, dbt float64) epwTestRow {
	return epwTestRow{year: year, month: month, day: day, hour: hour, dbt: dbt, dpt: 5, rh: 60, pres: 101000, ir: 320}
}

func writeEPW(t *testing.T, name string, rows ...epwTestRow) string {
	t.Helper()
	lines := []string{testEPWLocation}
	for i := 1; i < epwHeaderLines; i++ {
		lines = append(lines, fmt.Sprintf("HEADER%d,placeholder", i))
	}
	for _, r := range rows {
		lines = append(lines, r.line())
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestReadEPW_SingleYear(t *testing.T) {
	path := writeEPW(t, "tokyo.epw",
		row(2010, 1, 1, 1, 3.0),
		row(2010, 1, 1, 2, 2.5),
		row(2010, 1, 1, 3, 2.0),
	)
	w, err := ReadEPW(path, nil, nil)
	require.NoError(t, err)

	require.Len(t, w.Records, 3)
	assert.Equal(t, 0, w.ReferenceYear)
	assert.Equal(t, []int{2010}, w.Years())
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), w.Records[0].Datetime)
	assert.Equal(t, time.Date(2010, 1, 1, 2, 0, 0, 0, time.UTC), w.Records[2].Datetime)

	r := w.Records[0]
	assert.InDelta(t, 3.0, r.Temperature, 1e-12)
	assert.InDelta(t, 0.6, r.Humidity, 1e-12)
	assert.InDelta(t, 101000, r.Pressure, 1e-9)
	assert.InDelta(t, 2.5, r.WindSpeed, 1e-12)
	assert.InDelta(t, 300, r.GHI, 1e-12)
	assert.InDelta(t, 200, r.DNI, 1e-12)
	assert.InDelta(t, 100, r.DHI, 1e-12)
	require.NotNil(t, r.Infrared)
	assert.InDelta(t, 320, *r.Infrared, 1e-12)
	require.NotNil(t, r.DewPoint)
	require.NotNil(t, r.TotalSkyCover)
	require.NotNil(t, r.AnnualMeanTemperature)
	assert.InDelta(t, 2.5, *r.AnnualMeanTemperature, 1e-12)

	require.NotNil(t, w.Site)
	assert.Equal(t, "Tokyo", w.Site.Name)
	assert.InDelta(t, 35.68, w.Site.Latitude, 1e-12)
	assert.InDelta(t, 9.0, w.Site.TimeZone, 1e-12)
	assert.Same(t, w.Site, r.Site)
}

func TestReadEPW_MultiYearIsUnified(t *testing.T) {
	path := writeEPW(t, "tmy.epw",
		row(1999, 1, 1, 1, 1.0),
		row(1996, 2, 29, 1, 2.0),
		row(2003, 7, 1, 1, 25.0),
	)
	w, err := ReadEPW(path, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, defaultUnifiedYear, w.ReferenceYear)
	assert.Equal(t, []int{defaultUnifiedYear}, w.Years())
	// leap day clamped onto the non-leap target year
	assert.Equal(t, time.Date(2005, 2, 28, 0, 0, 0, 0, time.UTC), w.Records[1].Datetime)
	assert.Equal(t, 7, w.Records[2].Month)
}

func TestReadEPW_ReferenceYear(t *testing.T) {
	path := writeEPW(t, "site.epw", row(2015, 3, 1, 1, 10.0))
	w, err := ReadEPW(path, ptr(2020), nil)
	require.NoError(t, err)
	assert.Equal(t, 2020, w.ReferenceYear)
	assert.Equal(t, 2020, w.Records[0].Datetime.Year())
}

func TestReadEPW_SWERAIsUnified(t *testing.T) {
	path := writeEPW(t, "CHN_Shanghai_SWERA.epw", row(2002, 3, 1, 1, 10.0))
	w, err := ReadEPW(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultUnifiedYear, w.Records[0].Datetime.Year())
}

func TestReadEPW_MissingCodes(t *testing.T) {
	missing := row(2010, 1, 1, 2, 99.9)
	missing.ir = 9999
	missing.dpt = 99.9
	missing.pres = 999999

	path := writeEPW(t, "gaps.epw", row(2010, 1, 1, 1, 12.5), missing)
	w, err := ReadEPW(path, nil, nil)
	require.NoError(t, err)
	require.Len(t, w.Records, 2)

	r := w.Records[1]
	assert.InDelta(t, 12.5, r.Temperature, 1e-12)
	assert.Nil(t, r.Infrared)
	assert.Nil(t, r.DewPoint)
	assert.InDelta(t, getPAtm(), r.Pressure, 1e-9)
}

func TestReadEPW_MissingFirstTemperature(t *testing.T) {
	path := writeEPW(t, "gaps.epw", row(2010, 1, 1, 1, 99.9))
	w, err := ReadEPW(path, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, w.Records[0].Temperature, 1e-12)
}

func TestReadEPW_NoData(t *testing.T) {
	path := writeEPW(t, "empty.epw")
	_, err := ReadEPW(path, nil, nil)
	assert.Error(t, err)

	_, err = ReadEPW(filepath.Join(t.TempDir(), "absent.epw"), nil, nil)
	assert.Error(t, err)
}

func TestLoadWeather_FallsBackToSynthetic(t *testing.T) {
	w := LoadWeather(filepath.Join(t.TempDir(), "absent.epw"), nil, nil)
	require.NotNil(t, w)
	assert.True(t, w.Synthetic)
	assert.Len(t, w.Records, 8760)
	assert.Equal(t, []int{2023}, w.Years())
	require.NotNil(t, w.Site)
}

func TestWeatherData_HourlyDataNearest(t *testing.T) {
	base := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	w := NewWeatherData("mem", nil, []WeatherRecord{
		{Datetime: base.Add(2 * time.Hour), Temperature: 2},
		{Datetime: base, Temperature: 0},
		{Datetime: base.Add(time.Hour), Temperature: 1},
	})

	assert.Equal(t, 0.0, w.HourlyData(base.Add(-5*time.Hour)).Temperature)
	assert.Equal(t, 1.0, w.HourlyData(base.Add(70*time.Minute)).Temperature)
	// ties go to the earlier record
	assert.Equal(t, 0.0, w.HourlyData(base.Add(30*time.Minute)).Temperature)
	assert.Equal(t, 2.0, w.HourlyData(base.Add(48*time.Hour)).Temperature)

	mean, ok := w.AnnualMeanTemperature()
	assert.True(t, ok)
	assert.InDelta(t, 1.0, mean, 1e-12)

	start, end := w.Period()
	assert.Equal(t, base, start)
	assert.Equal(t, base.Add(2*time.Hour), end)
}

func TestWeatherData_Empty(t *testing.T) {
	w := NewWeatherData("mem", nil, nil)
	r := w.HourlyData(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.InDelta(t, 0.5, r.Humidity, 1e-12)
	start, end := w.Period()
	assert.True(t, start.IsZero())
	assert.True(t, end.IsZero())
	_, ok := w.AnnualMeanTemperature()
	assert.False(t, ok)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 28, daysIn(2001, time.February))
	assert.Equal(t, 29, daysIn(2004, time.February))
	assert.Equal(t, 31, daysIn(2001, time.December))
}
