package main

import (
	"fmt"
	"time"
)

// Interval is the simulation timestep.
type Interval string

const (
	IntervalH1  Interval = "1h"
	IntervalM30 Interval = "30m"
	IntervalM15 Interval = "15m"
)

func IntervalFromString(str string) (Interval, error) {
	switch str {
	case "", "1h":
		return IntervalH1, nil
	case "30m":
		return IntervalM30, nil
	case "15m":
		return IntervalM15, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidInterval, str)
	}
}

/*
Number of steps one hour is divided into.

	Notes:
	    1h: 1
	    30m: 2
	    15m: 4
*/
func (i Interval) StepsPerHour() int {
	switch i {
	case IntervalM30:
		return 2
	case IntervalM15:
		return 4
	default:
		return 1
	}
}

// StepsPerDay is the number of timesteps in one simulated day.
func (i Interval) StepsPerDay() int {
	return 24 * i.StepsPerHour()
}

// Duration of one step.
func (i Interval) Duration() time.Duration {
	return time.Hour / time.Duration(i.StepsPerHour())
}

// DeltaT returns the step length, s
func (i Interval) DeltaT() float64 {
	return i.Duration().Seconds()
}

// Hours returns the step length, h
func (i Interval) Hours() float64 {
	return 1.0 / float64(i.StepsPerHour())
}
