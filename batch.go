package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTaskTimeout is the wall clock budget of one batch task.
const DefaultTaskTimeout = 24000 * time.Second

// Granularity selects what one batch task covers.
type Granularity string

const (
	// GranularityPair runs one (weather, scenario) pair per task.
	GranularityPair Granularity = "pair"
	// GranularityWeather runs every scenario of one weather file per task.
	GranularityWeather Granularity = "weather"
)

func GranularityFromString(str string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "", "pair":
		return GranularityPair, nil
	case "weather", "epw":
		return GranularityWeather, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", str)
	}
}

// TaskResult is the outcome of one successful (weather, scenario) simulation.
type TaskResult struct {
	TaskID    string
	Weather   string // file path
	Scenario  MaterialScenario
	Summary   RunSummary
	FloorArea float64 // m2
	Outer     OuterLayerParams
}

// WeatherName is the weather file name without directory and extension.
func (r TaskResult) WeatherName() string {
	return weatherName(r.Weather)
}

func weatherName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TaskFailure records a pair that failed its first run and its retry.
type TaskFailure struct {
	TaskID   string
	Weather  string
	Scenario string
	Err      error
	Attempts int
}

func (f TaskFailure) Error() string {
	return fmt.Sprintf("%s | %s: %v", weatherName(f.Weather), f.Scenario, f.Err)
}

// BatchReport collects every pair of one batch run.
type BatchReport struct {
	RunID     string
	Scenarios []MaterialScenario
	Results   []TaskResult  // weather order, then scenario order
	Failures  []TaskFailure // weather order, then scenario order
	Elapsed   time.Duration
}

func (r *BatchReport) Succeeded() int { return len(r.Results) }
func (r *BatchReport) Failed() int    { return len(r.Failures) }

// ScenarioRunner simulates one scenario against one weather file.
type ScenarioRunner interface {
	RunScenario(ctx context.Context, weatherPath string, sc MaterialScenario) (TaskResult, error)
}

// engineRunner builds a fresh engine from the template for every call.
type engineRunner struct {
	template *Config
	loader   WeatherLoader
	logger   *zap.Logger
}

func NewEngineRunner(template *Config, loader WeatherLoader, logger *zap.Logger) ScenarioRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loader == nil {
		loader = NewDirectLoader(logger)
	}
	return &engineRunner{template: template, loader: loader, logger: logger}
}

func (r *engineRunner) RunScenario(ctx context.Context, weatherPath string, sc MaterialScenario) (TaskResult, error) {
	cfg, err := r.template.Clone()
	if err != nil {
		return TaskResult{}, err
	}
	cfg.Weather.EPWFile = weatherPath
	if err := sc.Apply(cfg); err != nil {
		return TaskResult{}, err
	}

	weather := r.loader.Load(weatherPath, cfg.Weather.ReferenceYear)
	engine, err := NewSimulationEngine(cfg, weather,
		WithLogger(r.logger.With(zap.String("weather", weatherName(weatherPath)), zap.String("scenario", sc.Name))))
	if err != nil {
		return TaskResult{}, err
	}
	res, err := engine.Run(ctx)
	if err != nil {
		return TaskResult{}, err
	}

	start, end := engine.Period()
	return TaskResult{
		Weather:   weatherPath,
		Scenario:  sc,
		Summary:   res.Summary(start, end),
		FloorArea: res.TotalFloorArea(),
		Outer:     outerLayerParams(engine.Building()),
	}, nil
}

// ComparisonDriver runs weather × scenario simulations on a worker pool.
type ComparisonDriver struct {
	runner      ScenarioRunner
	workers     int
	timeout     time.Duration
	granularity Granularity
	logger      *zap.Logger
	metrics     *Metrics
}

type DriverOption func(*ComparisonDriver)

// WithWorkers overrides the pool size; values <= 0 keep the default.
func WithWorkers(n int) DriverOption {
	return func(d *ComparisonDriver) { d.workers = n }
}

func WithTaskTimeout(timeout time.Duration) DriverOption {
	return func(d *ComparisonDriver) { d.timeout = timeout }
}

func WithGranularity(g Granularity) DriverOption {
	return func(d *ComparisonDriver) { d.granularity = g }
}

func WithDriverLogger(logger *zap.Logger) DriverOption {
	return func(d *ComparisonDriver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) DriverOption {
	return func(d *ComparisonDriver) { d.metrics = m }
}

func NewComparisonDriver(runner ScenarioRunner, opts ...DriverOption) *ComparisonDriver {
	d := &ComparisonDriver{
		runner:      runner,
		timeout:     DefaultTaskTimeout,
		granularity: GranularityPair,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTaskTimeout
	}
	if d.metrics == nil {
		d.metrics = NewMetrics()
	}
	return d
}

func (d *ComparisonDriver) Metrics() *Metrics {
	return d.metrics
}

// poolSize is min(weather files, CPUs) unless overridden.
func (d *ComparisonDriver) poolSize(nWeather int) int {
	if d.workers > 0 {
		return d.workers
	}
	return max(1, min(nWeather, runtime.NumCPU()))
}

// pair addresses one (weather, scenario) slot of the batch.
type pair struct {
	wi, si int
}

type outcome struct {
	taskID   string
	result   TaskResult
	err      error
	attempts int
	done     bool
}

// job is one unit of work handed to the pool.
type job struct {
	pairs []pair
}

/*
Run every weather file against every scenario.

	Args:
	    ctx: cancels the whole batch
	    weatherFiles: weather file paths
	    scenarios: scenarios, the first one is the baseline

	Returns:
	    report of succeeded and failed pairs; an error only when the
	    inputs are empty

	Notes:
	    Failed and timed-out pairs are retried once, one pair per task.
	    A pair that fails again is reported and never aborts the batch.
*/
func (d *ComparisonDriver) Run(ctx context.Context, weatherFiles []string, scenarios []MaterialScenario) (*BatchReport, error) {
	if len(weatherFiles) == 0 {
		return nil, ErrNoWeatherFiles
	}
	if len(scenarios) == 0 {
		return nil, ErrNoScenarios
	}

	report := &BatchReport{RunID: uuid.NewString(), Scenarios: scenarios}
	began := time.Now()
	workers := d.poolSize(len(weatherFiles))
	log := d.logger.With(zap.String("run_id", report.RunID))
	log.Info("batch started",
		zap.Int("weather_files", len(weatherFiles)),
		zap.Int("scenarios", len(scenarios)),
		zap.Int("tasks", len(weatherFiles)*len(scenarios)),
		zap.Int("workers", workers),
		zap.String("granularity", string(d.granularity)),
		zap.Duration("timeout", d.timeout),
	)

	outcomes := make([]outcome, len(weatherFiles)*len(scenarios))
	slot := func(p pair) *outcome { return &outcomes[p.wi*len(scenarios)+p.si] }

	var jobs []job
	for wi := range weatherFiles {
		if d.granularity == GranularityWeather {
			j := job{}
			for si := range scenarios {
				j.pairs = append(j.pairs, pair{wi, si})
			}
			jobs = append(jobs, j)
			continue
		}
		for si := range scenarios {
			jobs = append(jobs, job{pairs: []pair{{wi, si}}})
		}
	}

	d.runPool(ctx, log, workers, jobs, weatherFiles, scenarios, slot)

	var retry []job
	for wi := range weatherFiles {
		for si := range scenarios {
			if o := slot(pair{wi, si}); !o.done {
				retry = append(retry, job{pairs: []pair{{wi, si}}})
			}
		}
	}
	if len(retry) > 0 && ctx.Err() == nil {
		log.Info("retrying failed tasks", zap.Int("tasks", len(retry)))
		for range retry {
			d.metrics.IncRetry()
		}
		d.runPool(ctx, log, workers, retry, weatherFiles, scenarios, slot)
	}

	for wi, path := range weatherFiles {
		for si, sc := range scenarios {
			o := slot(pair{wi, si})
			if o.done {
				report.Results = append(report.Results, o.result)
				continue
			}
			err := o.err
			if err == nil {
				err = ctx.Err()
			}
			report.Failures = append(report.Failures, TaskFailure{
				TaskID:   o.taskID,
				Weather:  path,
				Scenario: sc.Name,
				Err:      err,
				Attempts: o.attempts,
			})
		}
	}

	report.Elapsed = time.Since(began)
	log.Info("batch finished",
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// runPool executes jobs with at most workers in flight.
func (d *ComparisonDriver) runPool(
	ctx context.Context,
	log *zap.Logger,
	workers int,
	jobs []job,
	weatherFiles []string,
	scenarios []MaterialScenario,
	slot func(pair) *outcome,
) {
	var (
		g         errgroup.Group
		mu        sync.Mutex
		completed int
	)
	g.SetLimit(workers)

	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			taskCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			for _, p := range j.pairs {
				path, sc := weatherFiles[p.wi], scenarios[p.si]
				taskID := uuid.NewString()
				began := time.Now()
				res, err := d.runOne(taskCtx, path, sc)
				elapsed := time.Since(began)

				mu.Lock()
				o := slot(p)
				o.taskID = taskID
				o.attempts++
				completed++
				n, attempt := completed, o.attempts
				if err == nil {
					res.TaskID = taskID
					o.result, o.err, o.done = res, nil, true
				} else {
					o.err = err
				}
				mu.Unlock()

				fields := []zap.Field{
					zap.String("task_id", taskID),
					zap.String("weather", weatherName(path)),
					zap.String("scenario", sc.Name),
					zap.Int("attempt", attempt),
					zap.Int("completed", n),
					zap.Duration("elapsed", elapsed),
				}
				switch {
				case err == nil:
					d.metrics.ObserveTask(statusOK, elapsed)
					log.Info("task OK", fields...)
				case errors.Is(err, ErrTaskTimeout):
					d.metrics.ObserveTask(statusTimeout, elapsed)
					log.Warn("task TIMEOUT", fields...)
				default:
					d.metrics.ObserveTask(statusFailed, elapsed)
					log.Warn("task FAIL", append(fields, zap.Error(err))...)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

/*
Run one pair under the task context.

	Notes:
	    The runner executes in its own goroutine so that the wall clock
	    limit holds even for a runner that ignores its context; its late
	    result is discarded. Panics become task errors.
*/
func (d *ComparisonDriver) runOne(ctx context.Context, path string, sc MaterialScenario) (TaskResult, error) {
	if err := ctx.Err(); err != nil {
		return TaskResult{}, taskErr(err)
	}

	type reply struct {
		res TaskResult
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := d.runner.RunScenario(ctx, path, sc)
		ch <- reply{res: res, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return TaskResult{}, taskErr(r.err)
		}
		return r.res, nil
	case <-ctx.Done():
		return TaskResult{}, taskErr(ctx.Err())
	}
}

// taskErr maps a deadline to ErrTaskTimeout.
func taskErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTaskTimeout, err)
	}
	return err
}
