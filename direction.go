package main

import (
	"fmt"
	"math"
	"strings"
)

// Direction is the orientation of a building surface.
type Direction string

const (
	DirectionN     Direction = "North"
	DirectionE     Direction = "East"
	DirectionS     Direction = "South"
	DirectionW     Direction = "West"
	DirectionRoof  Direction = "Roof"
	DirectionFloor Direction = "Floor"
)

func DirectionFromString(str string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "north", "n":
		return DirectionN, nil
	case "east", "e":
		return DirectionE, nil
	case "south", "s":
		return DirectionS, nil
	case "west", "w":
		return DirectionW, nil
	case "roof", "top":
		return DirectionRoof, nil
	case "floor", "bottom":
		return DirectionFloor, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrientation, str)
	}
}

/*
Azimuth of the surface normal.

	Returns:
	    azimuth measured from north, clockwise, rad

	Notes:
	    Roof and Floor have no meaningful azimuth and return 0.
	    Unknown values fall back to South.
*/
func (d Direction) Azimuth() float64 {
	switch d {
	case DirectionN, DirectionRoof, DirectionFloor:
		return 0.0
	case DirectionE:
		return math.Pi * 90.0 / 180.0
	case DirectionW:
		return math.Pi * 270.0 / 180.0
	default:
		return math.Pi
	}
}

/*
Tilt of the surface.

	Returns:
	    tilt angle, rad (0 = facing up, π/2 = vertical, π = facing down)
*/
func (d Direction) Tilt() float64 {
	switch d {
	case DirectionRoof:
		return 0.0
	case DirectionFloor:
		return math.Pi
	default:
		return math.Pi / 2.0
	}
}

// IsWall reports whether the surface is vertical.
func (d Direction) IsWall() bool {
	return d != DirectionRoof && d != DirectionFloor
}

/*
View factor of the surface to the sky.

	Notes:
	    F_sky = (1 + cos β) / 2
*/
func (d Direction) FSky() float64 {
	return getFSky(d.Tilt())
}
