package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

// number of header lines preceding the hourly data in an EPW file
const epwHeaderLines = 8

// year rows are mapped onto when a multi-year file is unified
const defaultUnifiedYear = 2005

// year used for rows whose year column is not positive
const fallbackYear = 2001

// epwValue parses a numeric EPW column; anything unparseable becomes NaN.
type epwValue float64

func (v *epwValue) UnmarshalCSV(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		f = math.NaN()
	}
	*v = epwValue(f)
	return nil
}

func (v epwValue) valid() bool {
	return !math.IsNaN(float64(v))
}

// optional returns nil for NaN or for the EPW "missing" code.
func (v epwValue) optional(missing float64) *float64 {
	f := float64(v)
	if math.IsNaN(f) || f >= missing {
		return nil
	}
	return &f
}

func (v epwValue) or(def float64) float64 {
	if !v.valid() {
		return def
	}
	return float64(v)
}

// epwRow mirrors the 35 positional columns of an EPW data line.
type epwRow struct {
	Year                epwValue `csv:"Year"`
	Month               epwValue `csv:"Month"`
	Day                 epwValue `csv:"Day"`
	Hour                epwValue `csv:"Hour"`
	Minute              epwValue `csv:"Minute"`
	Source              string   `csv:"Source"`
	DBT                 epwValue `csv:"DBT"`           // degree C
	DPT                 epwValue `csv:"DPT"`           // degree C
	RH                  epwValue `csv:"RH"`            // %
	AtmPres             epwValue `csv:"AtmPres"`       // Pa
	ExtHorzRad          epwValue `csv:"ExtHorzRad"`    // Wh/m2
	ExtDirRad           epwValue `csv:"ExtDirRad"`     // Wh/m2
	HorzIRSky           epwValue `csv:"HorzIRSky"`     // Wh/m2
	GloHorzRad          epwValue `csv:"GloHorzRad"`    // Wh/m2
	DirNormRad          epwValue `csv:"DirNormRad"`    // Wh/m2
	DifHorzRad          epwValue `csv:"DifHorzRad"`    // Wh/m2
	GloHorzIllum        epwValue `csv:"GloHorzIllum"`  // lux
	DirNormIllum        epwValue `csv:"DirNormIllum"`  // lux
	DifHorzIllum        epwValue `csv:"DifHorzIllum"`  // lux
	ZenLum              epwValue `csv:"ZenLum"`        // Cd/m2
	WindDir             epwValue `csv:"WindDir"`       // deg
	WindSpd             epwValue `csv:"WindSpd"`       // m/s
	TotSkyCvr           epwValue `csv:"TotSkyCvr"`     // tenths
	OpaqSkyCvr          epwValue `csv:"OpaqSkyCvr"`    // tenths
	Visibility          epwValue `csv:"Visibility"`    // km
	CeilingHgt          epwValue `csv:"CeilingHgt"`    // m
	PresWeathObs        epwValue `csv:"PresWeathObs"`  // -
	PresWeathCodes      string   `csv:"PresWeathCodes"`
	PrecipWtr           epwValue `csv:"PrecipWtr"`     // mm
	AerosolOptDepth     epwValue `csv:"AerosolOptDepth"`
	SnowDepth           epwValue `csv:"SnowDepth"`     // cm
	DaysSinceLastSnow   epwValue `csv:"DaysSinceLastSnow"`
	Albedo              epwValue `csv:"Albedo"`
	LiquidPrecipDepth   epwValue `csv:"LiquidPrecipDepth"` // mm
	LiquidPrecipQuantit epwValue `csv:"LiquidPrecipQuantity"`
}

// number of columns of an EPW data line
const epwColumnCount = 35

// epwColumns trims data lines to the EPW column count.
type epwColumns struct {
	r *csv.Reader
}

func (c epwColumns) Read() ([]string, error) {
	rec, err := c.r.Read()
	if len(rec) > epwColumnCount {
		rec = rec[:epwColumnCount]
	}
	return rec, err
}

func (c epwColumns) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		rec, err := c.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

/*
Parse the LOCATION header line.

	Notes:
	    LOCATION,city,state,country,source,WMO,lat,lon,tz,elevation
*/
func parseEPWLocation(line string) *Site {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < 10 {
		return nil
	}
	num := func(i int) (float64, bool) {
		f, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		return f, err == nil
	}
	lat, ok1 := num(6)
	lon, ok2 := num(7)
	tz, ok3 := num(8)
	elev, _ := num(9)
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	return &Site{Name: strings.TrimSpace(fields[1]), Latitude: lat, Longitude: lon, TimeZone: tz, Elevation: elev}
}

/*
Read an EPW file.

	Args:
	    path: EPW file path
	    referenceYear: year to unify rows onto, nil for automatic

	Returns:
	    weather data sorted by time

	Notes:
	    Rows are mapped onto one calendar year when the file name contains
	    "SWERA", a reference year is given, or the file spans several years.
	    The timestamp is the start of the EPW hour (Hour - 1).
*/
func ReadEPW(path string, referenceYear *int, logger *zap.Logger) (*WeatherData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening weather file: %w", err)
	}
	defer f.Close()
	return readEPW(f, path, referenceYear, logger)
}

func readEPW(r io.Reader, path string, referenceYear *int, logger *zap.Logger) (*WeatherData, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	br := bufio.NewReader(r)

	var site *Site
	for i := 0; i < epwHeaderLines; i++ {
		line, err := br.ReadString('\n')
		if i == 0 {
			site = parseEPWLocation(line)
		}
		if err != nil {
			return nil, fmt.Errorf("reading EPW header line %d: %w", i+1, err)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows []epwRow
	if err := gocsv.UnmarshalCSVWithoutHeaders(epwColumns{cr}, &rows); err != nil {
		return nil, fmt.Errorf("parsing EPW data: %w", err)
	}

	valid := rows[:0]
	for _, row := range rows {
		if row.Year.valid() && row.Month.valid() && row.Day.valid() && row.Hour.valid() {
			valid = append(valid, row)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("EPW file %s has no hourly data", path)
	}

	distinct := map[int]bool{}
	for _, row := range valid {
		distinct[int(row.Year)] = true
	}
	unify := strings.Contains(strings.ToUpper(filepath.Base(path)), "SWERA") ||
		referenceYear != nil || len(distinct) > 1
	targetYear := 0
	if unify {
		targetYear = intOr(referenceYear, defaultUnifiedYear)
	}

	records := make([]WeatherRecord, 0, len(valid))
	var missingTemp, missingIR, missingDew int
	lastTemp := math.NaN()
	for _, row := range valid {
		year := int(row.Year)
		switch {
		case unify:
			year = targetYear
		case year <= 0:
			year = fallbackYear
		}
		month := int(clip(float64(row.Month), 1, 12))
		day := int(clip(float64(row.Day), 1, float64(daysIn(year, time.Month(month)))))
		hour := int(clip(float64(row.Hour)-1, 0, 23))
		t := time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)

		temp := float64(row.DBT)
		if !row.DBT.valid() || temp >= 99.9 {
			missingTemp++
			temp = lastTemp
			if math.IsNaN(temp) {
				temp = 20.0
			}
		}
		lastTemp = temp

		ir := row.HorzIRSky.optional(9999)
		if ir == nil {
			missingIR++
		}
		dew := row.DPT.optional(99.9)
		if dew == nil {
			missingDew++
		}

		records = append(records, WeatherRecord{
			Datetime:      t,
			Month:         month,
			Temperature:   temp,
			Humidity:      clip(row.RH.or(50.0), 0, 100) / 100.0,
			Pressure:      pressureOr(row.AtmPres),
			WindSpeed:     math.Max(0, row.WindSpd.or(0.0)),
			WindDirection: row.WindDir.or(0.0),
			GHI:           math.Max(0, row.GloHorzRad.or(0.0)),
			DNI:           math.Max(0, row.DirNormRad.or(0.0)),
			DHI:           math.Max(0, row.DifHorzRad.or(0.0)),
			Albedo:        albedoOr(row.Albedo),
			Infrared:      ir,
			DewPoint:      dew,
			TotalSkyCover: row.TotSkyCvr.optional(99),
		})
	}

	if missingTemp > 0 || missingIR > 0 || missingDew > 0 {
		logger.Warn("weather data quality",
			zap.String("file", path),
			zap.Int("missing_dry_bulb", missingTemp),
			zap.Int("missing_infrared", missingIR),
			zap.Int("missing_dew_point", missingDew),
		)
	}

	w := NewWeatherData(path, site, records)
	w.ReferenceYear = targetYear
	start, end := w.Period()
	logger.Info("weather loaded",
		zap.String("file", path),
		zap.Int("rows", len(w.Records)),
		zap.Ints("years", w.Years()),
		zap.Int("unified_year", targetYear),
		zap.Time("start", start),
		zap.Time("end", end),
	)
	return w, nil
}

func pressureOr(v epwValue) float64 {
	p := float64(v)
	if !v.valid() || p <= 0 || p >= 999999 {
		return getPAtm()
	}
	return p
}

func albedoOr(v epwValue) float64 {
	a := float64(v)
	if !v.valid() || a >= 999 || a < 0 {
		return 0.2
	}
	return a
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

/*
Load weather for a run.

	Notes:
	    A file that cannot be read never aborts the run: the failure is
	    logged and the synthetic weather year is returned instead.
*/
func LoadWeather(path string, referenceYear *int, logger *zap.Logger) *WeatherData {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := ReadEPW(path, referenceYear, logger)
	if err != nil {
		logger.Warn("falling back to synthetic weather", zap.String("file", path), zap.Error(err))
		return NewSyntheticWeather()
	}
	return w
}
