package main

import (
	"errors"
	"fmt"
)

var (
	ErrNoZones             = errors.New("building has no zones")
	ErrNoSurfaces          = errors.New("zone has no surfaces")
	ErrUnknownConstruction = errors.New("unknown construction")
	ErrUnknownMaterial     = errors.New("unknown material")
	ErrEmptyConstruction   = errors.New("construction has no layers")
	ErrInvalidOrientation  = errors.New("invalid orientation")
	ErrInvalidInterval     = errors.New("invalid interval")
	ErrUnknownSystem       = errors.New("unknown hvac system")
	ErrNoScenarios         = errors.New("no scenarios")
	ErrNoWeatherFiles      = errors.New("no weather files")
	ErrTaskTimeout         = errors.New("task timed out")
)

// ConfigError points at the configuration key that failed validation.
type ConfigError struct {
	Section string
	Key     string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: section %q: %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("config: %s.%s: %s", e.Section, e.Key, e.Reason)
}

func configErr(section, key, format string, args ...any) error {
	return &ConfigError{Section: section, Key: key, Reason: fmt.Sprintf(format, args...)}
}
