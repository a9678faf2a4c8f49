package main

import (
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// WeatherLoader hands out weather data by file path.
type WeatherLoader interface {
	Load(path string, referenceYear *int) *WeatherData
}

// directLoader parses the file on every call.
type directLoader struct {
	logger *zap.Logger
}

func NewDirectLoader(logger *zap.Logger) WeatherLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return directLoader{logger: logger}
}

func (l directLoader) Load(path string, referenceYear *int) *WeatherData {
	return LoadWeather(path, referenceYear, l.logger)
}

/*
WeatherCache shares parsed weather between the tasks of one process.

	Notes:
	    Entries are written once per key and only read afterwards.
	    Concurrent first loads of the same key are collapsed into a
	    single parse. WeatherData is never mutated after loading, so
	    sharing one instance between engines is safe.
*/
type WeatherCache struct {
	mu      sync.RWMutex
	entries map[string]*WeatherData
	group   singleflight.Group
	logger  *zap.Logger
	metrics *Metrics
}

func NewWeatherCache(logger *zap.Logger, metrics *Metrics) *WeatherCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherCache{
		entries: make(map[string]*WeatherData),
		logger:  logger,
		metrics: metrics,
	}
}

func cacheKey(path string, referenceYear *int) string {
	if referenceYear == nil {
		return path
	}
	return path + "#" + strconv.Itoa(*referenceYear)
}

func (c *WeatherCache) Load(path string, referenceYear *int) *WeatherData {
	key := cacheKey(path, referenceYear)

	c.mu.RLock()
	w, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.logger.Debug("weather cache hit", zap.String("file", path))
		if c.metrics != nil {
			c.metrics.IncCacheHit()
		}
		return w
	}

	v, _, shared := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		w, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return w, nil
		}
		w = LoadWeather(path, referenceYear, c.logger)
		c.mu.Lock()
		c.entries[key] = w
		c.mu.Unlock()
		return w, nil
	})
	c.logger.Debug("weather cache miss", zap.String("file", path), zap.Bool("shared", shared))
	if c.metrics != nil {
		c.metrics.IncCacheMiss()
	}
	return v.(*WeatherData)
}

// Len is the number of cached entries.
func (c *WeatherCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
