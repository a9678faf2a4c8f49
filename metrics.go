package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// batch task outcomes
const (
	statusOK      = "ok"
	statusFailed  = "failed"
	statusTimeout = "timeout"
)

// Metrics instruments the batch driver and the weather cache. Each instance
// owns its registry so that concurrent drivers and tests never collide.
type Metrics struct {
	registry     *prometheus.Registry
	tasksTotal   *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
	retriesTotal prometheus.Counter
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_tasks_total",
			Help: "Total simulation tasks by outcome.",
		}, []string{"status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simulation_task_duration_seconds",
			Help:    "Wall clock duration of simulation tasks.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 14),
		}, []string{"status"}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulation_task_retries_total",
			Help: "Total simulation tasks submitted to the retry pass.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_cache_hits_total",
			Help: "Weather loads served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_cache_misses_total",
			Help: "Weather loads that parsed the file.",
		}),
	}

	m.registry.MustRegister(
		m.tasksTotal,
		m.taskDuration,
		m.retriesTotal,
		m.cacheHits,
		m.cacheMisses,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveTask(status string, elapsed time.Duration) {
	m.tasksTotal.WithLabelValues(status).Inc()
	m.taskDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *Metrics) IncRetry() {
	m.retriesTotal.Inc()
}

func (m *Metrics) IncCacheHit() {
	m.cacheHits.Inc()
}

func (m *Metrics) IncCacheMiss() {
	m.cacheMisses.Inc()
}

// WriteToTextfile dumps the metrics in the Prometheus text format.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics %s: %w", path, err)
	}
	return nil
}
