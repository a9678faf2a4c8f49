package main

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testSite = &Site{Name: "test", Latitude: 35.0, Longitude: 135.0, TimeZone: 9.0}

func TestISrf_FloorReceivesNothing(t *testing.T) {
	noon := time.Date(2001, 6, 21, 12, 0, 0, 0, time.UTC)
	for _, w := range []WeatherRecord{
		{GHI: 900, DNI: 800, DHI: 100, Month: 6},
		{GHI: 900, DNI: 800, DHI: 100, Month: 6, Datetime: noon, Site: testSite, Albedo: 0.2},
	} {
		assert.Equal(t, 0.0, getISrf(DirectionFloor, w))
	}
}

func TestISrf_SeasonalFallback(t *testing.T) {
	w := WeatherRecord{GHI: 500, Month: 1}
	assert.InDelta(t, 750, getISrf(DirectionS, w), 1e-9)
	assert.InDelta(t, 50, getISrf(DirectionN, w), 1e-9)
	assert.InDelta(t, 300, getISrf(DirectionRoof, w), 1e-9)

	w.Month = 7
	assert.InDelta(t, 650, getISrf(DirectionRoof, w), 1e-9)
}

func TestISrf_SummerNoonRoofBeatsNorth(t *testing.T) {
	w := WeatherRecord{
		Datetime: time.Date(2001, 6, 21, 12, 0, 0, 0, time.UTC),
		Month:    6,
		GHI:      900, DNI: 750, DHI: 150,
		Albedo: 0.2,
		Site:   testSite,
	}
	roof := getISrf(DirectionRoof, w)
	north := getISrf(DirectionN, w)
	south := getISrf(DirectionS, w)
	assert.Greater(t, roof, south)
	assert.Greater(t, south, north)
	for _, d := range allDirections {
		assert.GreaterOrEqual(t, getISrf(d, w), 0.0)
	}
}

func TestISrf_NightOnlyDiffuse(t *testing.T) {
	w := WeatherRecord{
		Datetime: time.Date(2001, 6, 21, 0, 0, 0, 0, time.UTC),
		Month:    6,
		DNI:      300, DHI: 10,
		Site: testSite,
	}
	// beam is dropped below the horizon
	assert.InDelta(t, 10, getISrf(DirectionRoof, w), 1e-9)
	assert.InDelta(t, 5, getISrf(DirectionS, w), 1e-9)
}

func TestFSky(t *testing.T) {
	assert.InDelta(t, 1.0, getFSky(0), 1e-12)
	assert.InDelta(t, 0.5, getFSky(math.Pi/2), 1e-12)
	assert.InDelta(t, 0.0, getFSky(math.Pi), 1e-12)
	assert.InDelta(t, 0.5, getFGnd(0.5), 1e-12)
}

func TestSolarPosition_EquinoxNoon(t *testing.T) {
	pos := calcSolarPosition(*testSite, time.Date(2001, 3, 21, 12, 0, 0, 0, time.UTC))
	deg := 180.0 / math.Pi
	assert.InDelta(t, 55.0, pos.Altitude*deg, 2.0)
	assert.InDelta(t, 180.0, pos.Azimuth*deg, 5.0)

	night := calcSolarPosition(*testSite, time.Date(2001, 3, 21, 0, 0, 0, 0, time.UTC))
	assert.Less(t, night.Altitude, 0.0)
}

func TestSolarPosition_AfternoonSunIsWest(t *testing.T) {
	morning := calcSolarPosition(*testSite, time.Date(2023, 6, 21, 9, 0, 0, 0, time.UTC))
	afternoon := calcSolarPosition(*testSite, time.Date(2023, 6, 21, 15, 0, 0, 0, time.UTC))

	assert.Greater(t, morning.Azimuth, 0.0)
	assert.Less(t, morning.Azimuth, math.Pi)
	assert.Greater(t, afternoon.Azimuth, math.Pi)
	assert.Less(t, afternoon.Azimuth, 2*math.Pi)
}
