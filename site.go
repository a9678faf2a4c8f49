package main

import "math"

// Site is the geographic location of a weather station.
type Site struct {
	Name      string
	Latitude  float64 // deg, north positive
	Longitude float64 // deg, east positive
	TimeZone  float64 // h from UTC
	Elevation float64 // m
}

// latitude and longitude, rad
func (s Site) phiLambda() (phiLoc, lambdaLoc float64) {
	const toRad = math.Pi / 180
	return s.Latitude * toRad, s.Longitude * toRad
}

// standard meridian of the site time zone, deg
func (s Site) standardMeridian() float64 {
	return 15.0 * s.TimeZone
}

// site used by the synthetic weather year
func syntheticSite() *Site {
	return &Site{Name: "synthetic", Latitude: 30.0, Longitude: 120.0, TimeZone: 8.0}
}
