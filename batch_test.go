package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner counts calls per pair and delegates the outcome to fn.
type fakeRunner struct {
	mu    sync.Mutex
	calls map[string]int
	order []string
	fn    func(ctx context.Context, call int, weather string, sc MaterialScenario) (TaskResult, error)
}

func newFakeRunner(fn func(ctx context.Context, call int, weather string, sc MaterialScenario) (TaskResult, error)) *fakeRunner {
	return &fakeRunner{calls: make(map[string]int), fn: fn}
}

func (f *fakeRunner) RunScenario(ctx context.Context, weather string, sc MaterialScenario) (TaskResult, error) {
	key := weather + "|" + sc.Name
	f.mu.Lock()
	f.calls[key]++
	call := f.calls[key]
	f.order = append(f.order, key)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, call, weather, sc)
	}
	return okResult(weather, sc), nil
}

func (f *fakeRunner) Calls(weather, scenario string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[weather+"|"+scenario]
}

func okResult(weather string, sc MaterialScenario) TaskResult {
	return TaskResult{
		Weather:   weather,
		Scenario:  sc,
		FloorArea: 100,
		Summary:   RunSummary{TotalHVACEnergyKWh: 1000},
	}
}

var testWeatherFiles = []string{"weather/tokyo.epw", "weather/osaka.epw"}

func TestComparisonDriver_RetriesAndReportsFailures(t *testing.T) {
	boom := errors.New("boom")
	runner := newFakeRunner(func(_ context.Context, _ int, weather string, sc MaterialScenario) (TaskResult, error) {
		if weather == "weather/osaka.epw" && sc.Name == "HighReflect_HighEmit" {
			return TaskResult{}, boom
		}
		return okResult(weather, sc), nil
	})
	metrics := NewMetrics()
	d := NewComparisonDriver(runner, WithWorkers(3), WithMetrics(metrics))

	report, err := d.Run(context.Background(), testWeatherFiles, DefaultScenarios())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.Succeeded())
	require.Equal(t, 1, report.Failed())

	f := report.Failures[0]
	assert.Equal(t, "weather/osaka.epw", f.Weather)
	assert.Equal(t, "HighReflect_HighEmit", f.Scenario)
	assert.Equal(t, 2, f.Attempts)
	assert.ErrorIs(t, f.Err, boom)
	assert.Equal(t, "osaka | HighReflect_HighEmit: boom", f.Error())
	assert.Equal(t, 2, runner.Calls("weather/osaka.epw", "HighReflect_HighEmit"))
	assert.Equal(t, 1, runner.Calls("weather/tokyo.epw", "Baseline"))

	var got []string
	for _, r := range report.Results {
		assert.NotEmpty(t, r.TaskID)
		got = append(got, r.WeatherName()+"/"+r.Scenario.Name)
	}
	assert.Equal(t, []string{
		"tokyo/Baseline", "tokyo/HighReflect_HighEmit", "tokyo/HighAbsorb_HighEmit",
		"osaka/Baseline", "osaka/HighAbsorb_HighEmit",
	}, got)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.retriesTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.tasksTotal.WithLabelValues(statusOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.tasksTotal.WithLabelValues(statusFailed)))
}

func TestComparisonDriver_RetrySucceeds(t *testing.T) {
	runner := newFakeRunner(func(_ context.Context, call int, weather string, sc MaterialScenario) (TaskResult, error) {
		if sc.Name == "Baseline" && call == 1 {
			return TaskResult{}, errors.New("transient")
		}
		return okResult(weather, sc), nil
	})
	d := NewComparisonDriver(runner)

	report, err := d.Run(context.Background(), testWeatherFiles, DefaultScenarios())
	require.NoError(t, err)
	assert.Equal(t, 6, report.Succeeded())
	assert.Zero(t, report.Failed())
	assert.Equal(t, 2, runner.Calls("weather/tokyo.epw", "Baseline"))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics().retriesTotal))
}

func TestComparisonDriver_RecoversPanics(t *testing.T) {
	runner := newFakeRunner(func(_ context.Context, _ int, weather string, sc MaterialScenario) (TaskResult, error) {
		if sc.Name == "HighAbsorb_HighEmit" {
			panic("index out of range")
		}
		return okResult(weather, sc), nil
	})
	d := NewComparisonDriver(runner)

	report, err := d.Run(context.Background(), testWeatherFiles[:1], DefaultScenarios())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded())
	require.Equal(t, 1, report.Failed())
	assert.Contains(t, report.Failures[0].Err.Error(), "panic: index out of range")
}

func TestComparisonDriver_TaskTimeout(t *testing.T) {
	runner := newFakeRunner(func(ctx context.Context, _ int, weather string, sc MaterialScenario) (TaskResult, error) {
		if sc.Name == "Baseline" {
			<-ctx.Done()
			return TaskResult{}, ctx.Err()
		}
		return okResult(weather, sc), nil
	})
	metrics := NewMetrics()
	d := NewComparisonDriver(runner, WithTaskTimeout(20*time.Millisecond), WithMetrics(metrics))

	report, err := d.Run(context.Background(), testWeatherFiles[:1], DefaultScenarios())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded())
	require.Equal(t, 1, report.Failed())
	assert.ErrorIs(t, report.Failures[0].Err, ErrTaskTimeout)
	assert.Equal(t, 2, report.Failures[0].Attempts)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.tasksTotal.WithLabelValues(statusTimeout)))
}

func TestComparisonDriver_TimeoutIgnoredContext(t *testing.T) {
	runner := newFakeRunner(func(_ context.Context, _ int, weather string, sc MaterialScenario) (TaskResult, error) {
		time.Sleep(500 * time.Millisecond)
		return okResult(weather, sc), nil
	})
	d := NewComparisonDriver(runner, WithTaskTimeout(20*time.Millisecond))

	began := time.Now()
	report, err := d.Run(context.Background(), testWeatherFiles[:1], DefaultScenarios()[:1])
	require.NoError(t, err)
	assert.Less(t, time.Since(began), 400*time.Millisecond)
	require.Equal(t, 1, report.Failed())
	assert.ErrorIs(t, report.Failures[0].Err, ErrTaskTimeout)
}

func TestComparisonDriver_CancelledBatch(t *testing.T) {
	runner := newFakeRunner(nil)
	d := NewComparisonDriver(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := d.Run(ctx, testWeatherFiles, DefaultScenarios())
	require.NoError(t, err)
	assert.Zero(t, report.Succeeded())
	require.Equal(t, 6, report.Failed())
	for _, f := range report.Failures {
		assert.ErrorIs(t, f.Err, context.Canceled)
		assert.Zero(t, f.Attempts)
	}
	assert.Empty(t, runner.order)
	assert.Equal(t, 0.0, testutil.ToFloat64(d.Metrics().retriesTotal))
}

func TestComparisonDriver_WeatherGranularity(t *testing.T) {
	runner := newFakeRunner(nil)
	d := NewComparisonDriver(runner, WithWorkers(1), WithGranularity(GranularityWeather))

	report, err := d.Run(context.Background(), testWeatherFiles, DefaultScenarios())
	require.NoError(t, err)
	assert.Equal(t, 6, report.Succeeded())

	var want []string
	for _, w := range testWeatherFiles {
		for _, sc := range DefaultScenarios() {
			want = append(want, w+"|"+sc.Name)
		}
	}
	assert.Equal(t, want, runner.order)
}

func TestComparisonDriver_EmptyInputs(t *testing.T) {
	d := NewComparisonDriver(newFakeRunner(nil))

	_, err := d.Run(context.Background(), nil, DefaultScenarios())
	assert.ErrorIs(t, err, ErrNoWeatherFiles)

	_, err = d.Run(context.Background(), testWeatherFiles, nil)
	assert.ErrorIs(t, err, ErrNoScenarios)
}

func TestComparisonDriver_PoolSize(t *testing.T) {
	d := NewComparisonDriver(newFakeRunner(nil))
	assert.Equal(t, 1, d.poolSize(1))
	assert.GreaterOrEqual(t, d.poolSize(64), 1)
	assert.LessOrEqual(t, d.poolSize(2), 2)

	d = NewComparisonDriver(newFakeRunner(nil), WithWorkers(7), WithTaskTimeout(-time.Second))
	assert.Equal(t, 7, d.poolSize(1))
	assert.Equal(t, DefaultTaskTimeout, d.timeout)
}

func TestGranularityFromString(t *testing.T) {
	for in, want := range map[string]Granularity{
		"":        GranularityPair,
		"pair":    GranularityPair,
		" Pair ":  GranularityPair,
		"weather": GranularityWeather,
		"EPW":     GranularityWeather,
	} {
		g, err := GranularityFromString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, g, in)
	}
	_, err := GranularityFromString("zone")
	assert.Error(t, err)
}

func TestEngineRunner_RunScenario(t *testing.T) {
	template := DefaultConfig("")
	template.Simulation.StartMonth, template.Simulation.StartDay = 7, 1
	template.Simulation.EndMonth, template.Simulation.EndDay = 7, 2
	template.Simulation.WarmupDays = ptr(0)

	runner := NewEngineRunner(template, nil, nil)
	sc := DefaultScenarios()[1]
	res, err := runner.RunScenario(context.Background(), "missing/nowhere.epw", sc)
	require.NoError(t, err)

	assert.Equal(t, "nowhere", res.WeatherName())
	assert.Equal(t, sc.Name, res.Scenario.Name)
	assert.InDelta(t, 100.0, res.FloorArea, 1e-9)
	assert.InDelta(t, 0.1, res.Outer.WallAlpha, 1e-12)
	assert.InDelta(t, 0.95, res.Outer.RoofEps, 1e-12)
	assert.InDelta(t, 48.0, res.Summary.RecordedHours, 1e-9)
	assert.Greater(t, res.Summary.TotalHVACEnergyKWh, 0.0)

	// the template is shared between tasks and must stay untouched
	assert.Empty(t, template.Building.Constructions)
	assert.Empty(t, template.Weather.EPWFile)
}

func TestEngineRunner_ScenarioError(t *testing.T) {
	template := DefaultConfig("")
	template.Building.Zones[0].Surfaces[0].Orientation = "Sideways"

	runner := NewEngineRunner(template, nil, nil)
	_, err := runner.RunScenario(context.Background(), "missing.epw", DefaultScenarios()[1])
	assert.Error(t, err)
}

func ExampleTaskFailure_Error() {
	f := TaskFailure{Weather: "weather/tokyo.epw", Scenario: "Baseline", Err: ErrTaskTimeout}
	fmt.Println(f.Error())
	// Output: tokyo | Baseline: task timed out
}
