package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "building_energy_calc",
		Short:         "Hourly building heat balance and HVAC energy simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&logLevel, "log", "info", "log level (debug|info|warn|error)")

	loggerOf := func() (*zap.Logger, error) {
		return NewLogger(logLevel)
	}
	root.AddCommand(newSimulateCmd(loggerOf), newCompareCmd(loggerOf))
	return root
}

func newSimulateCmd(loggerOf func() (*zap.Logger, error)) *cobra.Command {
	var (
		configPath string
		outputDir  string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one simulation and write the result tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerOf()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.RequireWeatherFile(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			start := time.Now()
			weather := LoadWeather(cfg.Weather.EPWFile, cfg.Weather.ReferenceYear, logger)
			engine, err := NewSimulationEngine(cfg, weather, WithLogger(logger))
			if err != nil {
				return err
			}
			res, err := engine.Run(ctx)
			if err != nil {
				return err
			}
			if err := res.Export(outputDir); err != nil {
				return err
			}
			logger.Info("results written", zap.String("dir", outputDir))

			printSummary(cmd, res.Summary(engine.Period()))
			logger.Info("elapsed", zap.Duration("elapsed", time.Since(start)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (YAML or JSON)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", filepath.Join("output", "results"), "output directory")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func printSummary(cmd *cobra.Command, s RunSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "==================================================")
	fmt.Fprintln(out, "Simulation finished - annual energy")
	fmt.Fprintln(out, "==================================================")
	fmt.Fprintf(out, "period: %s\n", s.Period)
	fmt.Fprintf(out, "recorded_hours: %.0f\n", s.RecordedHours)
	fmt.Fprintf(out, "zones: %d\n", s.Zones)
	fmt.Fprintf(out, "total_cooling_energy_kWh: %.2f\n", s.TotalCoolingEnergyKWh)
	fmt.Fprintf(out, "total_heating_energy_kWh: %.2f\n", s.TotalHeatingEnergyKWh)
	fmt.Fprintf(out, "total_hvac_energy_kWh: %.2f\n", s.TotalHVACEnergyKWh)
	fmt.Fprintf(out, "peak_cooling_load_kW: %.2f\n", s.PeakCoolingLoadKW)
	fmt.Fprintf(out, "peak_heating_load_kW: %.2f\n", s.PeakHeatingLoadKW)
	fmt.Fprintln(out, "==================================================")
}

func newCompareCmd(loggerOf func() (*zap.Logger, error)) *cobra.Command {
	var (
		configPath   string
		weatherFiles []string
		weatherDir   string
		scenarioPath string
		workers      int
		timeout      time.Duration
		granularity  string
		outputDir    string
		metricsFile  string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare envelope material scenarios across weather files",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerOf()
			if err != nil {
				return err
			}
			defer logger.Sync()

			template := DefaultConfig("")
			if configPath != "" {
				if template, err = LoadConfig(configPath); err != nil {
					return err
				}
			}

			scenarios := DefaultScenarios()
			if scenarioPath != "" {
				if scenarios, err = LoadScenarios(scenarioPath); err != nil {
					return err
				}
			}

			g, err := GranularityFromString(granularity)
			if err != nil {
				return err
			}

			files, err := collectWeatherFiles(weatherFiles, weatherDir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				logger.Warn("no weather files found, running once on synthetic weather")
				files = []string{"synthetic.epw"}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			metrics := NewMetrics()
			cache := NewWeatherCache(logger, metrics)
			driver := NewComparisonDriver(
				NewEngineRunner(template, cache, logger),
				WithWorkers(workers),
				WithTaskTimeout(timeout),
				WithGranularity(g),
				WithDriverLogger(logger),
				WithMetrics(metrics),
			)
			report, err := driver.Run(ctx, files, scenarios)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nsimulations finished: %d succeeded, %d failed\n", report.Succeeded(), report.Failed())
			for _, f := range report.Failures {
				fmt.Fprintf(out, "  [FAIL] %s (attempts: %d)\n", f.Error(), f.Attempts)
			}

			written, err := BuildComparisonTables(report).Export(outputDir)
			for _, p := range written {
				fmt.Fprintf(out, "  [OK] %s\n", p)
			}
			if err != nil {
				logger.Error("writing comparison tables", zap.Error(err))
			}

			if metricsFile != "" {
				if err := metrics.WriteToTextfile(metricsFile); err != nil {
					logger.Error("writing metrics", zap.Error(err))
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "template configuration (default: single-zone office)")
	f.StringSliceVar(&weatherFiles, "weather", nil, "EPW weather file (repeatable)")
	f.StringVar(&weatherDir, "weather-dir", "weather", "directory searched for *.epw when --weather is not given")
	f.StringVar(&scenarioPath, "scenarios", "", "scenario file (YAML)")
	f.IntVar(&workers, "workers", 0, "worker pool size (default: min(weather files, CPUs))")
	f.DurationVar(&timeout, "timeout", DefaultTaskTimeout, "wall clock limit per task")
	f.StringVar(&granularity, "granularity", string(GranularityPair), "task granularity (pair|weather)")
	f.StringVarP(&outputDir, "output", "o", "output", "output directory")
	f.StringVar(&metricsFile, "metrics-file", "", "write batch metrics in Prometheus text format")
	return cmd
}

// collectWeatherFiles prefers explicit files over the directory scan.
func collectWeatherFiles(files []string, dir string) ([]string, error) {
	if len(files) > 0 {
		return files, nil
	}
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.epw"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	upper, err := filepath.Glob(filepath.Join(dir, "*.EPW"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	seen := make(map[string]bool)
	var out []string
	for _, m := range append(matches, upper...) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}
