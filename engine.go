package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// EngineState is the life cycle stage of a simulation run.
type EngineState string

const (
	StateInitialized  EngineState = "INITIALIZED"
	StateWarmup       EngineState = "WARMUP"
	StateAccumulating EngineState = "ACCUMULATING"
	StateDone         EngineState = "DONE"
)

// Progress is reported every progress_interval_hours recorded hours.
type Progress struct {
	Time          time.Time
	RecordedHours int
	State         EngineState
}

type ProgressFunc func(Progress)

type EngineOption func(*SimulationEngine)

func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *SimulationEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithProgress(fn ProgressFunc) EngineOption {
	return func(e *SimulationEngine) {
		e.progress = fn
	}
}

// SimulationEngine runs the step-by-step heat balance of a building.
type SimulationEngine struct {
	cfg         *Config
	weather     WeatherProvider
	building    *BuildingModel
	heatBalance *HeatBalance
	hvac        *HVACSystem
	comfort     *ComfortModel
	itv         Interval

	startDate     time.Time
	endDate       time.Time
	warmupDays    int
	maxIterations int
	tolerance     float64 // K
	progressHours int

	state    EngineState
	results  *SimulationResults
	logger   *zap.Logger
	progress ProgressFunc
}

/*
Build an engine for one configuration and weather source.

	Args:
	    cfg: validated configuration
	    weather: hourly weather provider
	    opts: engine options

	Returns:
	    engine in the INITIALIZED state

	Notes:
	    Configuration problems fail here, before any step runs.
*/
func NewSimulationEngine(cfg *Config, weather WeatherProvider, opts ...EngineOption) (*SimulationEngine, error) {
	if cfg == nil {
		return nil, configErr("config", "", "is required")
	}
	if weather == nil {
		return nil, configErr("weather", "", "no weather provider")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	itv, err := IntervalFromString(cfg.Simulation.Timestep)
	if err != nil {
		return nil, err
	}

	building, err := NewBuildingModel(cfg.Building)
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}

	hvac, err := NewHVACSystem(cfg.HVAC)
	if err != nil {
		return nil, fmt.Errorf("hvac: %w", err)
	}

	comfort, err := NewComfortModel(cfg.Comfort, hvac.HumiditySetpoint)
	if err != nil {
		return nil, fmt.Errorf("comfort: %w", err)
	}

	sim := cfg.Simulation
	settings := DefaultHeatBalanceSettings()
	settings.VentilationACH = floatOr(cfg.HVAC.VentilationACH, DefaultVentilationACH)
	if sim.SkyTempWeights != nil {
		settings.SkyTempWeights = *sim.SkyTempWeights
	}
	settings.MaxIterations = sim.SurfaceSolver.MaxIterations
	settings.Relaxation = sim.SurfaceSolver.Relaxation
	settings.Tolerance = sim.SurfaceSolver.Tolerance

	e := &SimulationEngine{
		cfg:           cfg,
		weather:       weather,
		building:      building,
		heatBalance:   NewHeatBalance(settings),
		hvac:          hvac,
		comfort:       comfort,
		itv:           itv,
		warmupDays:    intOr(sim.WarmupDays, 7),
		maxIterations: sim.MaxIterations,
		tolerance:     sim.ConvergenceTolerance,
		progressHours: intOr(sim.ProgressIntervalHours, 168),
		state:         StateInitialized,
		logger:        zap.NewNop(),
	}
	if e.maxIterations <= 0 {
		e.maxIterations = 10
	}
	if e.tolerance <= 0 {
		e.tolerance = 0.01
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.resolvePeriod(); err != nil {
		return nil, err
	}

	e.logger.Info("simulation engine initialized",
		zap.Time("start", e.startDate),
		zap.Time("end", e.endDate),
		zap.Int("warmup_days", e.warmupDays),
		zap.String("interval", string(e.itv)),
		zap.Int("zones", len(building.Zones)),
		zap.String("system", string(hvac.Kind)),
	)
	for _, c := range building.Summary() {
		e.logger.Debug("construction",
			zap.String("name", c.Name),
			zap.Int("layers", c.Layers),
			zap.Float64("u_value", c.UValue),
			zap.Float64("heat_capacity", c.HeatCapacity),
		)
	}
	return e, nil
}

/*
Resolve the first and last simulated days.

	Notes:
	    use_epw_dates (default) takes the native range of the weather data;
	    otherwise the configured month/day pairs are placed in the first
	    year of the weather data (2001 when it has none).
*/
func (e *SimulationEngine) resolvePeriod() error {
	sim := e.cfg.Simulation
	wStart, wEnd := e.weather.Period()

	if (sim.UseEPWDates == nil || *sim.UseEPWDates) && !wStart.IsZero() && !wEnd.IsZero() {
		e.startDate = truncateDay(wStart)
		e.endDate = truncateDay(wEnd)
	} else {
		year := 2001
		if years := e.weather.Years(); len(years) > 0 {
			year = years[0]
		}
		month := func(m, def int) time.Month {
			if m <= 0 {
				return time.Month(def)
			}
			return time.Month(m)
		}
		day := func(m time.Month, d, def int) int {
			if d <= 0 {
				d = def
			}
			return int(math.Min(float64(d), float64(daysIn(year, m))))
		}
		sm := month(sim.StartMonth, 1)
		em := month(sim.EndMonth, 12)
		e.startDate = time.Date(year, sm, day(sm, sim.StartDay, 1), 0, 0, 0, 0, time.UTC)
		e.endDate = time.Date(year, em, day(em, sim.EndDay, 31), 0, 0, 0, 0, time.UTC)
	}

	if e.endDate.Before(e.startDate) {
		return configErr("simulation", "end_month", "end date %s precedes start date %s",
			e.endDate.Format("01-02"), e.startDate.Format("01-02"))
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (e *SimulationEngine) State() EngineState {
	return e.state
}

func (e *SimulationEngine) Building() *BuildingModel {
	return e.building
}

func (e *SimulationEngine) Period() (start, end time.Time) {
	return e.startDate, e.endDate
}

func (e *SimulationEngine) Results() *SimulationResults {
	return e.results
}

/*
Run the simulation over the resolved period.

	Args:
	    ctx: checked at every day boundary

	Returns:
	    recorded results; nil with the context error when cancelled

	Notes:
	    Warm-up days run the full computation without recording.
*/
func (e *SimulationEngine) Run(ctx context.Context) (*SimulationResults, error) {
	for _, z := range e.building.Zones {
		initializeZoneConditions(z)
	}
	e.results = newSimulationResults(e.building, e.itv)
	e.state = StateWarmup

	recordFrom := e.startDate.AddDate(0, 0, e.warmupDays)
	stepsPerHour := e.itv.StepsPerHour()
	stepsPerDay := e.itv.StepsPerDay()
	began := time.Now()

	e.logger.Info("simulation started",
		zap.Time("start", e.startDate),
		zap.Time("end", e.endDate),
		zap.Time("record_from", recordFrom),
	)

	recorded := 0
	for day := e.startDate; !day.After(e.endDate); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("simulation cancelled", zap.Time("day", day), zap.Error(err))
			return nil, err
		}

		recording := !day.Before(recordFrom)
		if recording && e.state == StateWarmup {
			e.state = StateAccumulating
			e.logger.Debug("warm-up finished", zap.Time("day", day))
		}

		for k := 0; k < stepsPerDay; k++ {
			t := day.Add(time.Duration(k) * e.itv.Duration())
			e.step(t, recording)
			if !recording {
				continue
			}
			recorded++
			if recorded%stepsPerHour == 0 {
				e.reportProgress(t, recorded/stepsPerHour)
			}
		}
	}

	e.state = StateDone
	summary := e.results.Summary(e.startDate, e.endDate)
	e.logger.Info("simulation finished",
		zap.Int("recorded_hours", recorded/stepsPerHour),
		zap.Float64("cooling_kwh", summary.TotalCoolingEnergyKWh),
		zap.Float64("heating_kwh", summary.TotalHeatingEnergyKWh),
		zap.Duration("elapsed", time.Since(began)),
	)
	return e.results, nil
}

func (e *SimulationEngine) reportProgress(t time.Time, hours int) {
	if e.progressHours <= 0 || hours%e.progressHours != 0 {
		return
	}
	e.logger.Info("progress", zap.Time("time", t), zap.Int("recorded_hours", hours))
	if e.progress != nil {
		e.progress(Progress{Time: t, RecordedHours: hours, State: e.state})
	}
}

/*
One timestep for every zone.

	Notes:
	    1. radiant gains are spread over the interior faces
	    2. surfaces and zone air iterate to a free-float state
	    3. surface temperatures are snapshotted
	    4. loads are the sensible balances at the setpoints
	    5. latent load and delivered energy follow
	    6. recorded steps also evaluate occupant comfort
*/
func (e *SimulationEngine) step(t time.Time, record bool) {
	w := e.weather.HourlyData(t)
	tOut := celsiusToKelvin(w.Temperature)
	dt := e.itv.DeltaT()

	for _, z := range e.building.Zones {
		e.heatBalance.DistributeRadiantGains(z, w)
		e.converge(z, w, dt)
		snapshotSurfaceTemperatures(z)

		qCool := e.heatBalance.ComputeSensibleBalance(z, w, e.hvac.CoolingSetpoint).Total
		qHeat := e.heatBalance.ComputeSensibleBalance(z, w, e.hvac.HeatingSetpoint).Total

		z.CoolingLoad = math.Max(0.0, qCool)
		z.HeatingLoad = math.Max(0.0, -qHeat)
		z.LatentLoad = math.Max(0.0, e.hvac.CalculateLatentLoad(w.Humidity))

		z.CoolingEnergy = e.hvac.CalculateEnergy(z.CoolingLoad, COOLING, dt, tOut)
		z.HeatingEnergy = e.hvac.CalculateEnergy(z.HeatingLoad, HEATING, dt, tOut)

		if record {
			z.Comfort = e.comfort.Evaluate(z)
			e.results.record(t, z)
		}
	}
}

// converge iterates surfaces and zone air until the air temperature settles.
func (e *SimulationEngine) converge(z *Zone, w WeatherRecord, dt float64) {
	z.Iterations = 0
	z.Residual = 0.0
	for i := 0; i < e.maxIterations; i++ {
		for _, s := range z.Surfaces {
			e.heatBalance.CalculateSurfaceTemperature(s, w, z.Temperature)
		}
		prev := z.Temperature
		e.heatBalance.CalculateZoneTemperature(z, w, dt)

		z.Iterations = i + 1
		z.Residual = math.Abs(z.Temperature - prev)
		if z.Residual < e.tolerance {
			break
		}
	}
}
